// Package config holds the rig configuration: which serial port the
// turntable Arduino is on, which Kinect serial belongs to which camera,
// and the timing constants for the open-loop rotation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	// Turntable serial link.
	SerialPort string `yaml:"serial-port"`
	BaudRate   int    `yaml:"baud-rate"`
	// SettleSecs is the wait after opening the port; the Arduino resets
	// on connect.
	SettleSecs int `yaml:"settle-secs"`

	// Camera identities.
	RedSerial   string `yaml:"red-serial"`
	GreenSerial string `yaml:"green-serial"`

	// RotateSecs is the assumed time for a 90-degree turn. Empirical;
	// there is no encoder to confirm the angle actually reached.
	RotateSecs int `yaml:"rotate-secs"`

	// SaveDir is where capture artifacts land. Empty means the current
	// working directory.
	SaveDir string `yaml:"save-dir"`

	// Worker binaries launched by the coordinator.
	CaptureBinary string `yaml:"capture-binary"`
	ViewerBinary  string `yaml:"viewer-binary"`

	// SaveFiltered additionally writes the cleaned-up depth artifacts.
	SaveFiltered bool `yaml:"save-filtered"`
}

func Default() *Config {
	return &Config{
		SerialPort:    "/dev/ttyACM0",
		BaudRate:      9600,
		SettleSecs:    2,
		RedSerial:     "006158144547",
		GreenSerial:   "501748344547",
		RotateSecs:    8,
		CaptureBinary: "turntable-capture",
		ViewerBinary:  "turntable-viewer",
	}
}

// Load reads a YAML config, filling in defaults for anything unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SerialPort == "" {
		return fmt.Errorf("serial-port is required")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("baud-rate must be positive, got %d", c.BaudRate)
	}
	if c.RotateSecs <= 0 {
		return fmt.Errorf("rotate-secs must be positive, got %d", c.RotateSecs)
	}
	if c.SettleSecs < 0 {
		return fmt.Errorf("settle-secs must not be negative, got %d", c.SettleSecs)
	}
	if c.RedSerial == "" || c.GreenSerial == "" {
		return fmt.Errorf("red-serial and green-serial are required")
	}
	return nil
}

func (c *Config) RotateDuration() time.Duration {
	return time.Duration(c.RotateSecs) * time.Second
}

func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleSecs) * time.Second
}
