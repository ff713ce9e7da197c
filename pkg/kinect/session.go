package kinect

import (
	"errors"
	"fmt"
	"log"
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateOpen
	stateStreaming
	stateStopped
)

func (s sessionState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateOpen:
		return "open"
	case stateStreaming:
		return "streaming"
	case stateStopped:
		return "stopped"
	}
	return fmt.Sprintf("sessionState(%d)", int(s))
}

// Session owns one device for the life of a capture: Select, Start,
// CaptureOne, Stop. Transitions are checked, so capturing before Start or
// selecting twice is an error rather than undefined SDK behavior.
type Session struct {
	driver   Driver
	dev      Device
	state    sessionState
	degraded bool
}

func NewSession(driver Driver) *Session {
	return &Session{driver: driver}
}

// Select enumerates the driver's devices and opens the one whose serial
// number matches exactly. If the driver cannot enumerate, the first
// available device is opened instead and the session is flagged degraded;
// that mirrors a vendor-library variant which has no serial selection and
// is deliberate, not a failure.
func (s *Session) Select(serial string) error {
	if s.state != stateIdle {
		return fmt.Errorf("cannot select device in state %s", s.state)
	}

	serials, err := s.driver.ListDevices()
	if errors.Is(err, ErrEnumerationUnsupported) {
		log.Printf("Driver cannot select by serial; opening first device (wanted %s)", serial)
		dev, err := s.driver.OpenDefault()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoDevices, err)
		}
		s.dev = dev
		s.degraded = true
		s.state = stateOpen
		return nil
	}
	if err != nil {
		return fmt.Errorf("enumerating kinect devices: %w", err)
	}
	if len(serials) == 0 {
		return ErrNoDevices
	}

	found := false
	for _, got := range serials {
		log.Printf("Found kinect device %s", got)
		if got == serial {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %s (available: %v)", ErrDeviceNotFound, serial, serials)
	}

	dev, err := s.driver.Open(serial)
	if err != nil {
		return fmt.Errorf("opening kinect %s: %w", serial, err)
	}
	log.Printf("Opened kinect device %s", dev.SerialNumber())
	s.dev = dev
	s.state = stateOpen
	return nil
}

// Degraded reports whether Select had to fall back to the first available
// device without validating its identity.
func (s *Session) Degraded() bool {
	return s.degraded
}

// Start brings up the streams. A start call that merely returns false is
// tolerated with a warning: the hardware has been seen to stream fine
// despite the negative return.
func (s *Session) Start() error {
	if s.state != stateOpen {
		return fmt.Errorf("cannot start streams in state %s", s.state)
	}
	if err := s.dev.Start(); err != nil {
		if errors.Is(err, ErrStartReturnedFalse) {
			log.Printf("Warning: %v; continuing anyway", err)
		} else {
			return fmt.Errorf("%w: %v", ErrStartFailed, err)
		}
	}
	s.state = stateStreaming
	return nil
}

// CaptureOne blocks until one synchronized frame pair arrives and returns
// a copy that survives the listener's buffer reuse.
func (s *Session) CaptureOne() (*FramePair, error) {
	if s.state != stateStreaming {
		return nil, fmt.Errorf("cannot capture in state %s", s.state)
	}
	pair, err := s.dev.WaitForFrame()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFrame, err)
	}
	return pair, nil
}

// Stop stops the streams and releases the device. Idempotent: safe on an
// already-stopped or never-started session.
func (s *Session) Stop() {
	if s.dev == nil || s.state == stateStopped {
		return
	}
	if s.state == stateStreaming {
		if err := s.dev.Stop(); err != nil {
			log.Printf("Error stopping kinect streams: %v", err)
		}
	}
	s.dev.Close()
	s.state = stateStopped
}
