// Package transport supplies the duplex byte channels that satisfy
// wire.Device: a USB-bulk backend, which matches the device's fixed
// vendor/product ID, and a serial-port fallback, which matches device node
// names.
package transport

import (
	"context"
	"errors"
	"time"
)

// VendorID and ProductID identify the device during USB enumeration; serial
// discovery does not check them.
const (
	VendorID  = 0x32C9
	ProductID = 0x1000
)

// EndpointOut and EndpointIn are the USB bulk endpoint addresses.
const (
	EndpointOut = 0x01
	EndpointIn  = 0x81
)

// SerialBaud is the fixed baud rate used on the serial fallback, 8N1.
const SerialBaud = 115200

// Kind records which backend discovered a DevicePath.
type Kind string

const (
	KindUSB    Kind = "usb"
	KindSerial Kind = "serial"
)

// DevicePath names a discovered device independent of backend: a USB port
// path ("1.2.3") or a serial port name ("/dev/ttyUSB0", "COM3").
type DevicePath struct {
	Kind Kind
	Path string
}

func (p DevicePath) String() string { return string(p.Kind) + ":" + p.Path }

// Transport enumerates and opens devices of one backend kind.
type Transport interface {
	ListDevices() ([]DevicePath, error)
	OpenDevice(path DevicePath) (Device, error)
}

// Device is the duplex, timeout-based byte channel wire.CommandLayer drives.
type Device interface {
	Read(buf []byte, timeout time.Duration) (int, error)
	Write(buf []byte, timeout time.Duration) (int, error)
	Close() error
}

// ErrDeviceNotFound is returned by OpenFirst when no matching device is
// present. WaitForDevice keeps polling instead and, when it gives up,
// returns the context's error.
var ErrDeviceNotFound = errors.New("transport: no matching device found")

// OpenFirst opens the first device t discovers, or ErrDeviceNotFound if
// none is present.
func OpenFirst(t Transport) (Device, error) {
	paths, err := t.ListDevices()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrDeviceNotFound
	}
	return t.OpenDevice(paths[0])
}

// WaitForDevice polls t.ListDevices until a device appears, ctx is done, or
// timeout elapses (timeout <= 0 means no deadline beyond ctx). It opens and
// returns the first device found.
func WaitForDevice(ctx context.Context, t Transport, pollInterval, timeout time.Duration) (Device, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		dev, err := OpenFirst(t)
		if err == nil {
			return dev, nil
		}
		if !errors.Is(err, ErrDeviceNotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
