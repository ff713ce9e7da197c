// Package sequencer drives the turntable through its four-stage capture
// choreography: shoot both cameras, rotate 90 degrees, shoot again, rotate
// back home. Rotation is open loop; there is no encoder, so each rotate
// command is followed by a fixed delay assumed long enough for 90 degrees.
package sequencer

import (
	"fmt"
	"log"
	"time"

	"github.com/plantlab/turntable-rig/pkg/arduino"
)

// Rotation-stage labels baked into the artifact filenames. The red camera
// faces the 180-degree side of the rig, green the 0-degree side, so one
// stage yields two opposing views.
const (
	Label0   = "0_degrees"
	Label90  = "90_degrees"
	Label180 = "180_degrees"
	Label270 = "270_degrees"
)

type State int

const (
	Home State = iota
	StageA
	Rotated
	StageB
)

func (s State) String() string {
	switch s {
	case Home:
		return "HOME"
	case StageA:
		return "STAGE_A"
	case Rotated:
		return "ROTATED"
	case StageB:
		return "STAGE_B"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Sequencer owns the choreography state and the plant counter. The counter
// identifies the subject being imaged, increments once per successful full
// cycle and lives only in process memory.
type Sequencer struct {
	Table arduino.Sender
	Red   Worker
	Green Worker

	// RotateDuration is how long a 90-degree turn is assumed to take.
	// Empirical, with no feedback confirming the angle reached.
	RotateDuration time.Duration

	state      State
	plantCount int
}

func New(table arduino.Sender, red, green Worker, rotate time.Duration) *Sequencer {
	return &Sequencer{
		Table:          table,
		Red:            red,
		Green:          green,
		RotateDuration: rotate,
		state:          Home,
		plantCount:     1,
	}
}

func (s *Sequencer) State() State    { return s.state }
func (s *Sequencer) PlantCount() int { return s.plantCount }

// RunCycle runs one full capture cycle. On success the turntable is back
// home and the plant counter has advanced. A capture failure aborts the
// cycle without rolling back artifacts already on disk; if the table has
// already been rotated it is still driven back home so the next cycle
// starts from a known orientation.
func (s *Sequencer) RunCycle() error {
	if s.state != Home {
		return fmt.Errorf("cannot start a cycle from state %s", s.state)
	}

	// Capture 0 and 180 degrees.
	s.state = StageA
	if err := s.captureBoth(Label0, Label180); err != nil {
		s.state = Home
		return err
	}

	// Rotate anti-clockwise 90 degrees.
	s.rotate(arduino.Forward)
	s.state = Rotated

	// Capture 90 and 270 degrees.
	s.state = StageB
	captureErr := s.captureBoth(Label90, Label270)

	// Rotate back to home base regardless, so a failed capture doesn't
	// leave the table misaligned for the next cycle.
	s.rotate(arduino.Reverse)
	s.state = Home

	if captureErr != nil {
		return captureErr
	}
	s.plantCount++
	log.Println("Full capture process completed successfully")
	return nil
}

// CaptureStage shoots both cameras at the current orientation: red first,
// green only if red succeeded.
func (s *Sequencer) CaptureStage(greenLabel, redLabel string) error {
	return s.captureBoth(greenLabel, redLabel)
}

// CaptureRed takes a single shot with the red camera.
func (s *Sequencer) CaptureRed(label string) error {
	return s.runWorker("red", s.Red, label)
}

// CaptureGreen takes a single shot with the green camera.
func (s *Sequencer) CaptureGreen(label string) error {
	return s.runWorker("green", s.Green, label)
}

func (s *Sequencer) captureBoth(greenLabel, redLabel string) error {
	if err := s.runWorker("red", s.Red, redLabel); err != nil {
		return fmt.Errorf("red capture failed, skipping green: %w", err)
	}
	if err := s.runWorker("green", s.Green, greenLabel); err != nil {
		// Red's artifacts stay on disk; there is no rollback.
		return fmt.Errorf("red capture succeeded but green failed: %w", err)
	}
	log.Println("Both camera captures completed successfully")
	return nil
}

func (s *Sequencer) runWorker(name string, w Worker, label string) error {
	log.Printf("Running %s camera capture (%s, plant %d)...", name, label, s.plantCount)
	out, err := w.Capture(label, s.plantCount)
	if out != "" {
		log.Printf("Capture output: %s", out)
	}
	if err != nil {
		return err
	}
	log.Printf("%s camera capture completed", name)
	return nil
}

// rotate issues the command, waits out the assumed travel time, then stops
// the motor. Serial failures are logged and swallowed: a dead channel must
// not take down the coordinator's command loop.
func (s *Sequencer) rotate(cmd arduino.Command) {
	if err := s.Table.Send(cmd); err != nil {
		log.Printf("Failed to send '%c' to turntable: %v", cmd, err)
	}
	time.Sleep(s.RotateDuration)
	if err := s.Table.Send(arduino.Stop); err != nil {
		log.Printf("Failed to send stop to turntable: %v", err)
	}
}
