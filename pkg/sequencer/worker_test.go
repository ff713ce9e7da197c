package sequencer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCaptureWorkerPassesArgs(t *testing.T) {
	w := &CaptureWorker{
		Name:   "red",
		Binary: writeScript(t, `echo "$1 $2 $3 $4"`),
		Serial: "006158144547",
	}

	out, err := w.Capture("180_degrees", 4)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if got := strings.TrimSpace(out); got != "180_degrees 4 --serial 006158144547" {
		t.Errorf("worker args: got %q", got)
	}
}

func TestCaptureWorkerNonZeroExit(t *testing.T) {
	w := &CaptureWorker{
		Name:   "green",
		Binary: writeScript(t, `echo "no device found" >&2; exit 3`),
		Serial: "X",
	}

	out, err := w.Capture("0_degrees", 1)
	if err == nil {
		t.Fatal("Capture should fail on non-zero exit")
	}
	// Combined output carries the worker's stderr back to the caller.
	if !strings.Contains(out, "no device found") {
		t.Errorf("captured output missing stderr: %q", out)
	}
}

func TestCaptureWorkerFilteredFlag(t *testing.T) {
	w := &CaptureWorker{
		Name:     "red",
		Binary:   writeScript(t, `echo "$5"`),
		Serial:   "X",
		Filtered: true,
	}
	out, err := w.Capture("0_degrees", 1)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if got := strings.TrimSpace(out); got != "--filtered" {
		t.Errorf("expected --filtered as fifth arg, got %q", got)
	}
}

func TestCaptureWorkerRunsInDir(t *testing.T) {
	dir := t.TempDir()
	w := &CaptureWorker{
		Name:   "green",
		Binary: writeScript(t, `pwd`),
		Serial: "X",
		Dir:    dir,
	}
	out, err := w.Capture("0_degrees", 1)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	want, _ := filepath.EvalSymlinks(dir)
	if got := strings.TrimSpace(out); got != want {
		t.Errorf("worker cwd: got %q, want %q", got, want)
	}
}

func TestCaptureWorkerMissingBinary(t *testing.T) {
	w := &CaptureWorker{
		Name:   "red",
		Binary: filepath.Join(t.TempDir(), "nope"),
		Serial: "X",
	}
	if _, err := w.Capture("0_degrees", 1); err == nil {
		t.Fatal("Capture should fail when the worker binary is missing")
	}
}
