package transport

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/tarm/serial"
)

// serialPortGlobs lists the filesystem patterns checked when discovering
// serial candidates. tarm/serial has no VID/PID-aware enumeration (unlike
// USB's descriptor lookup), so discovery is name-pattern based; the caller
// is expected to disambiguate multiple matches if more than one concrete
// device is plugged in.
var serialPortGlobs = []string{
	"/dev/ttyUSB*",
	"/dev/ttyACM*",
}

// SerialTransport opens the device over a serial port at SerialBaud, 8N1.
// It is the fallback for hosts without a usable USB stack.
type SerialTransport struct{}

// ListDevices globs the usual USB-serial device node patterns. It cannot
// filter by VendorID/ProductID the way the USB backend can, since the
// serial link carries no descriptor to inspect before opening.
func (SerialTransport) ListDevices() ([]DevicePath, error) {
	var names []string
	for _, pattern := range serialPortGlobs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		names = append(names, matches...)
	}
	sort.Strings(names)

	paths := make([]DevicePath, len(names))
	for i, name := range names {
		paths[i] = DevicePath{Kind: KindSerial, Path: name}
	}
	return paths, nil
}

// OpenDevice opens path.Path at SerialBaud.
func (SerialTransport) OpenDevice(path DevicePath) (Device, error) {
	d := &serialDevice{name: path.Path}
	if err := d.reopen(0); err != nil {
		return nil, err
	}
	return d, nil
}

// serialDevice re-opens the underlying port whenever the caller requests a
// different read timeout, since tarm/serial only accepts a ReadTimeout at
// Config time rather than per read call.
type serialDevice struct {
	name    string
	port    *serial.Port
	timeout time.Duration
}

func (d *serialDevice) reopen(timeout time.Duration) error {
	if d.port != nil {
		_ = d.port.Close()
	}
	port, err := serial.OpenPort(&serial.Config{Name: d.name, Baud: SerialBaud, ReadTimeout: timeout})
	if err != nil {
		return &TransportOpenError{Cause: err}
	}
	d.port = port
	d.timeout = timeout
	return nil
}

func (d *serialDevice) Write(buf []byte, timeout time.Duration) (int, error) {
	n, err := d.port.Write(buf)
	if err != nil {
		return n, fmt.Errorf("serial write: %w", err)
	}
	return n, nil
}

func (d *serialDevice) Read(buf []byte, timeout time.Duration) (int, error) {
	if timeout != d.timeout {
		if err := d.reopen(timeout); err != nil {
			return 0, err
		}
	}
	n, err := d.port.Read(buf)
	if err != nil {
		return n, fmt.Errorf("serial read: %w", err)
	}
	return n, nil
}

func (d *serialDevice) Close() error {
	return d.port.Close()
}
