// Package arduino talks to the turntable's Arduino over a serial port.
// The protocol is a single ASCII byte per command with no acknowledgement;
// the sketch on the other end just switches the motor driver.
package arduino

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"go.bug.st/serial"
)

// Command is one byte on the wire.
type Command byte

const (
	Forward Command = 'f'
	Reverse Command = 'r'
	Stop    Command = 's'
)

var (
	ErrPortNotFound = errors.New("serial port does not exist")
	ErrOpenFailed   = errors.New("failed to open serial port")
	ErrNotConnected = errors.New("arduino not connected")
	ErrWriteFailed  = errors.New("serial write failed")
)

// Sender is the bit of the channel the sequencer needs.
type Sender interface {
	Send(cmd Command) error
}

// Channel is a one-way serial link to the Arduino. Connect is attempted
// once at startup; if it fails the channel stays disabled for the life of
// the process and Send reports ErrNotConnected without blocking.
type Channel struct {
	Port string
	Baud int

	// SettleDelay is how long to wait after opening the port before the
	// board will accept input. Most Arduinos reset when the host opens
	// the serial connection.
	SettleDelay time.Duration

	// SendDelay gives the sketch time to act on a byte before the next
	// one arrives.
	SendDelay time.Duration

	conn serial.Port
}

func New(port string, baud int) *Channel {
	return &Channel{
		Port:        port,
		Baud:        baud,
		SettleDelay: 2 * time.Second,
		SendDelay:   100 * time.Millisecond,
	}
}

// Connect opens the port. A failure leaves the channel permanently
// disabled; there is no retry.
func (c *Channel) Connect() error {
	if _, err := os.Stat(c.Port); err != nil {
		return fmt.Errorf("%w: %s", ErrPortNotFound, c.Port)
	}
	conn, err := serial.Open(c.Port, &serial.Mode{BaudRate: c.Baud})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOpenFailed, c.Port, err)
	}
	c.conn = conn
	time.Sleep(c.SettleDelay)
	return nil
}

// Connected reports whether Connect ever succeeded.
func (c *Channel) Connected() bool {
	return c.conn != nil
}

// Send writes a single command byte. Success only means the byte was
// handed to the OS for transmission; nothing is read back.
func (c *Channel) Send(cmd Command) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	n, err := c.conn.Write([]byte{byte(cmd)})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if n == 0 {
		return ErrWriteFailed
	}
	log.Printf("Sent '%c' to Arduino", cmd)
	time.Sleep(c.SendDelay)
	return nil
}

// Close releases the port. Safe on a channel that never connected.
func (c *Channel) Close() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
