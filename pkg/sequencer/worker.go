package sequencer

import (
	"fmt"
	"os/exec"
	"strconv"
)

// Worker performs one capture for one camera.
type Worker interface {
	// Capture takes one shot labelled with the rotation stage and plant
	// count, returning whatever output the capture produced.
	Capture(label string, count int) (string, error)
}

// CaptureWorker invokes the capture binary as a subprocess, one process
// per shot. The isolation is deliberate: a wedged vendor SDK call takes
// down the worker, not the long-lived coordinator. Exit status and
// combined output are the only result channel.
type CaptureWorker struct {
	Name   string // "red" or "green", for logs
	Binary string
	Serial string
	// Dir is where the worker runs, and so where its artifacts land.
	// Empty means the coordinator's working directory.
	Dir string
	// Filtered asks the worker for the extra cleaned-up depth artifacts.
	Filtered bool
}

var _ Worker = (*CaptureWorker)(nil)

func (w *CaptureWorker) Capture(label string, count int) (string, error) {
	argv := []string{label, strconv.Itoa(count), "--serial", w.Serial}
	if w.Filtered {
		argv = append(argv, "--filtered")
	}
	cmd := exec.Command(w.Binary, argv...)
	cmd.Dir = w.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s capture worker: %w", w.Name, err)
	}
	return string(out), nil
}
