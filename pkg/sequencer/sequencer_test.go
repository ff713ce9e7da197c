package sequencer

import (
	"errors"
	"testing"

	"github.com/plantlab/turntable-rig/pkg/arduino"
)

type fakeSender struct {
	sent []arduino.Command
	err  error
}

func (f *fakeSender) Send(cmd arduino.Command) error {
	f.sent = append(f.sent, cmd)
	return f.err
}

type shot struct {
	label string
	count int
}

type fakeWorker struct {
	shots      []shot
	failOnCall int // 1-based; 0 means never fail
}

func (f *fakeWorker) Capture(label string, count int) (string, error) {
	f.shots = append(f.shots, shot{label, count})
	if f.failOnCall != 0 && len(f.shots) == f.failOnCall {
		return "device exploded", errors.New("capture failed")
	}
	return "saved", nil
}

func newTestSequencer(table *fakeSender, red, green *fakeWorker) *Sequencer {
	return New(table, red, green, 0)
}

func TestFullCycle(t *testing.T) {
	table := &fakeSender{}
	red := &fakeWorker{}
	green := &fakeWorker{}
	seq := newTestSequencer(table, red, green)

	if err := seq.RunCycle(); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if seq.State() != Home {
		t.Errorf("end state: got %s, want HOME", seq.State())
	}
	if seq.PlantCount() != 2 {
		t.Errorf("plant count: got %d, want 2", seq.PlantCount())
	}

	wantRed := []shot{{Label180, 1}, {Label270, 1}}
	wantGreen := []shot{{Label0, 1}, {Label90, 1}}
	assertShots(t, "red", red.shots, wantRed)
	assertShots(t, "green", green.shots, wantGreen)

	wantCmds := []arduino.Command{arduino.Forward, arduino.Stop, arduino.Reverse, arduino.Stop}
	if len(table.sent) != len(wantCmds) {
		t.Fatalf("commands sent: got %v, want %v", table.sent, wantCmds)
	}
	for i, cmd := range wantCmds {
		if table.sent[i] != cmd {
			t.Errorf("command %d: got %c, want %c", i, table.sent[i], cmd)
		}
	}
}

func TestTwoCyclesAdvanceCount(t *testing.T) {
	seq := newTestSequencer(&fakeSender{}, &fakeWorker{}, &fakeWorker{})
	for i := 0; i < 2; i++ {
		if err := seq.RunCycle(); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}
	if seq.PlantCount() != 3 {
		t.Errorf("plant count after two cycles: got %d, want 3", seq.PlantCount())
	}
}

func TestRedFailureSkipsGreen(t *testing.T) {
	table := &fakeSender{}
	red := &fakeWorker{failOnCall: 1}
	green := &fakeWorker{}
	seq := newTestSequencer(table, red, green)

	if err := seq.RunCycle(); err == nil {
		t.Fatal("RunCycle should fail when red fails")
	}
	if len(green.shots) != 0 {
		t.Errorf("green was invoked %d times after red failed", len(green.shots))
	}
	if len(table.sent) != 0 {
		t.Errorf("turntable was rotated after stage A failure: %v", table.sent)
	}
	if seq.PlantCount() != 1 {
		t.Errorf("plant count advanced on failure: %d", seq.PlantCount())
	}
	if seq.State() != Home {
		t.Errorf("end state: got %s, want HOME", seq.State())
	}
}

func TestStageBFailureStillRotatesHome(t *testing.T) {
	table := &fakeSender{}
	red := &fakeWorker{failOnCall: 2}
	green := &fakeWorker{}
	seq := newTestSequencer(table, red, green)

	if err := seq.RunCycle(); err == nil {
		t.Fatal("RunCycle should fail when stage B capture fails")
	}

	// Forward+stop then reverse+stop: the table must be driven back home
	// even though the second capture failed.
	wantCmds := []arduino.Command{arduino.Forward, arduino.Stop, arduino.Reverse, arduino.Stop}
	if len(table.sent) != len(wantCmds) {
		t.Fatalf("commands sent: got %v, want %v", table.sent, wantCmds)
	}
	if seq.PlantCount() != 1 {
		t.Errorf("plant count advanced on failure: %d", seq.PlantCount())
	}
	if seq.State() != Home {
		t.Errorf("end state: got %s, want HOME", seq.State())
	}
}

func TestSerialFailureDoesNotAbortCycle(t *testing.T) {
	// A disabled serial channel degrades rotation, but captures carry on
	// and the cycle still completes.
	table := &fakeSender{err: arduino.ErrNotConnected}
	seq := newTestSequencer(table, &fakeWorker{}, &fakeWorker{})

	if err := seq.RunCycle(); err != nil {
		t.Fatalf("RunCycle with dead serial: %v", err)
	}
	if seq.PlantCount() != 2 {
		t.Errorf("plant count: got %d, want 2", seq.PlantCount())
	}
}

func TestSingleCaptures(t *testing.T) {
	red := &fakeWorker{}
	green := &fakeWorker{}
	seq := newTestSequencer(&fakeSender{}, red, green)

	if err := seq.CaptureRed(Label180); err != nil {
		t.Fatalf("CaptureRed: %v", err)
	}
	if err := seq.CaptureGreen(Label0); err != nil {
		t.Fatalf("CaptureGreen: %v", err)
	}
	assertShots(t, "red", red.shots, []shot{{Label180, 1}})
	assertShots(t, "green", green.shots, []shot{{Label0, 1}})
}

func assertShots(t *testing.T, name string, got, want []shot) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("%s shots: got %v, want %v", name, got, want)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s shot %d: got %+v, want %+v", name, i, got[i], want[i])
		}
	}
}
