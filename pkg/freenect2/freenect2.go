// Package freenect2 binds libfreenect2 (the Kinect v2 SDK) to the
// kinect.Driver interface through a small C shim. It needs the
// libfreenect2 headers and library installed at build time.
package freenect2

// #cgo CXXFLAGS: -std=c++11
// #cgo LDFLAGS: -lfreenect2
// #include <stdlib.h>
// #include "bridge.h"
import "C"

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/plantlab/turntable-rig/pkg/kinect"
)

const (
	colorWidth  = C.FN2_COLOR_WIDTH
	colorHeight = C.FN2_COLOR_HEIGHT
	depthWidth  = C.FN2_DEPTH_WIDTH
	depthHeight = C.FN2_DEPTH_HEIGHT
)

// startSettle is how long the device gets to finish initializing between
// starting the streams and reading its intrinsics for registration.
const startSettle = 2 * time.Second

type Driver struct {
	ctx C.fn2_context_t
}

var _ kinect.Driver = (*Driver)(nil)

func NewDriver() *Driver {
	return &Driver{ctx: C.fn2_context_new()}
}

func (d *Driver) ListDevices() ([]string, error) {
	n := int(C.fn2_enumerate(d.ctx))
	serials := make([]string, 0, n)
	for i := 0; i < n; i++ {
		var buf [128]C.char
		if C.fn2_get_serial(d.ctx, C.int(i), &buf[0], C.int(len(buf))) != 0 {
			return nil, fmt.Errorf("reading serial of device %d failed", i)
		}
		serials = append(serials, C.GoString(&buf[0]))
	}
	return serials, nil
}

func (d *Driver) Open(serial string) (kinect.Device, error) {
	cs := C.CString(serial)
	defer C.free(unsafe.Pointer(cs))
	h := C.fn2_open(d.ctx, cs)
	if h == nil {
		return nil, fmt.Errorf("libfreenect2 failed to open device %s", serial)
	}
	return newDevice(h), nil
}

func (d *Driver) OpenDefault() (kinect.Device, error) {
	h := C.fn2_open_default(d.ctx)
	if h == nil {
		return nil, fmt.Errorf("libfreenect2 failed to open default device")
	}
	return newDevice(h), nil
}

func (d *Driver) Close() {
	if d.ctx != nil {
		C.fn2_context_free(d.ctx)
		d.ctx = nil
	}
}

type device struct {
	h      C.fn2_device_t
	serial string
}

var _ kinect.Device = (*device)(nil)

func newDevice(h C.fn2_device_t) *device {
	var buf [128]C.char
	serial := ""
	if C.fn2_device_serial(h, &buf[0], C.int(len(buf))) == 0 {
		serial = C.GoString(&buf[0])
	}
	return &device{h: h, serial: serial}
}

func (d *device) SerialNumber() string {
	return d.serial
}

func (d *device) Start() error {
	rc := C.fn2_start(d.h)
	if rc < 0 {
		return fmt.Errorf("libfreenect2 start error")
	}
	// Let the device finish bringing up its streams before asking for
	// intrinsics; they are garbage straight after start.
	time.Sleep(startSettle)
	if C.fn2_setup_registration(d.h) != 0 {
		return fmt.Errorf("setting up depth registration failed")
	}
	if rc == 0 {
		return kinect.ErrStartReturnedFalse
	}
	return nil
}

func (d *device) WaitForFrame() (*kinect.FramePair, error) {
	pair := &kinect.FramePair{
		RGB: kinect.Image8{
			Width:  colorWidth,
			Height: colorHeight,
			Pix:    make([]uint8, colorWidth*colorHeight*3),
		},
		Depth: kinect.Image16{
			Width:  depthWidth,
			Height: depthHeight,
			Pix:    make([]uint16, depthWidth*depthHeight),
		},
	}
	rc := C.fn2_wait_frame(d.h,
		(*C.uchar)(unsafe.Pointer(&pair.RGB.Pix[0])),
		(*C.ushort)(unsafe.Pointer(&pair.Depth.Pix[0])))
	if rc != 0 {
		return nil, fmt.Errorf("listener returned an incomplete frame set")
	}
	return pair, nil
}

func (d *device) Stop() error {
	C.fn2_stop(d.h)
	return nil
}

func (d *device) Close() {
	if d.h != nil {
		C.fn2_close(d.h)
		d.h = nil
	}
}
