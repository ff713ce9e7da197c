package arduino

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestConnectMissingPort(t *testing.T) {
	ch := New(filepath.Join(t.TempDir(), "ttyACM9"), 9600)

	err := ch.Connect()
	if !errors.Is(err, ErrPortNotFound) {
		t.Fatalf("Connect to missing port: got %v, want ErrPortNotFound", err)
	}
	if ch.Connected() {
		t.Fatal("channel reports connected after failed connect")
	}
}

func TestSendAfterFailedConnectNeverBlocks(t *testing.T) {
	ch := New(filepath.Join(t.TempDir(), "ttyACM9"), 9600)
	if err := ch.Connect(); err == nil {
		t.Fatal("expected connect to fail")
	}

	for _, cmd := range []Command{Forward, Reverse, Stop} {
		start := time.Now()
		err := ch.Send(cmd)
		if !errors.Is(err, ErrNotConnected) {
			t.Errorf("Send(%c): got %v, want ErrNotConnected", cmd, err)
		}
		// Must fail fast: no send delay, no write attempt.
		if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
			t.Errorf("Send(%c) took %v, expected immediate failure", cmd, elapsed)
		}
	}
}

func TestSendWithoutConnect(t *testing.T) {
	ch := New("/dev/ttyACM0", 9600)
	if err := ch.Send(Stop); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Send on fresh channel: got %v, want ErrNotConnected", err)
	}
}

func TestCloseWithoutConnect(t *testing.T) {
	ch := New("/dev/ttyACM0", 9600)
	ch.Close() // must not panic
}
