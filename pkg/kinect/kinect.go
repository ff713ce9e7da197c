// Package kinect is the capture pipeline for the rig's depth cameras: it
// selects a device by serial number, pulls one synchronized RGB+depth frame
// pair and persists the capture artifacts. The vendor SDK sits behind the
// Driver/Device interfaces so the pipeline and its tests don't depend on
// real hardware.
package kinect

import "errors"

var (
	ErrDeviceNotFound = errors.New("no kinect with that serial number")
	ErrNoDevices      = errors.New("no kinect devices found")
	ErrStartFailed    = errors.New("failed to start kinect streams")
	ErrNoFrame        = errors.New("no frame received from kinect")

	// ErrEnumerationUnsupported is returned by drivers that cannot list
	// devices or select one by serial. The session falls back to opening
	// the first available device.
	ErrEnumerationUnsupported = errors.New("driver cannot enumerate devices")

	// ErrStartReturnedFalse marks the case where the SDK's start call
	// reports failure even though the device has been observed to stream
	// anyway. The session logs it and carries on.
	ErrStartReturnedFalse = errors.New("kinect start call returned false")
)

// Driver is one vendor-SDK variant.
type Driver interface {
	// ListDevices returns the serial numbers of the connected devices,
	// or ErrEnumerationUnsupported.
	ListDevices() ([]string, error)
	// Open opens the device with the given serial number.
	Open(serial string) (Device, error)
	// OpenDefault opens the first available device.
	OpenDefault() (Device, error)
}

// Device is one opened camera.
type Device interface {
	SerialNumber() string
	// Start brings up the color and depth streams and configures depth
	// registration onto the color pixel grid.
	Start() error
	// WaitForFrame blocks until a synchronized RGB+depth pair arrives.
	// There is no timeout: a stalled device stalls the caller.
	WaitForFrame() (*FramePair, error)
	Stop() error
	Close()
}

// Image8 is an 8-bit image, three channels (BGR byte order, as the SDK and
// OpenCV both use).
type Image8 struct {
	Width  int
	Height int
	Pix    []uint8 // len = Width*Height*3
}

// Image16 is a single-channel 16-bit image. For depth frames each sample
// is a distance in millimeters.
type Image16 struct {
	Width  int
	Height int
	Pix    []uint16 // len = Width*Height
}

// FramePair is one RGB image and one depth image captured at the same
// instant from a single device.
type FramePair struct {
	RGB   Image8
	Depth Image16
}
