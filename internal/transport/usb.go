//go:build !mips && !mipsle
// +build !mips,!mipsle

package transport

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/gousb"
)

// USBTransport opens the device directly over USB bulk transfers via
// libusb. It is excluded on MIPS targets, where gousb's cgo/libusb
// dependency is unavailable.
type USBTransport struct{}

func matchesDevice(desc *gousb.DeviceDesc) bool {
	return desc.Vendor == gousb.ID(VendorID) && desc.Product == gousb.ID(ProductID)
}

func pathString(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ".")
}

// ListDevices enumerates every attached device matching VendorID/ProductID,
// identified by its USB port path.
func (USBTransport) ListDevices() ([]DevicePath, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devices, err := ctx.OpenDevices(matchesDevice)
	if err != nil {
		return nil, &TransportOpenError{Cause: err}
	}
	defer func() {
		for _, d := range devices {
			_ = d.Close()
		}
	}()

	paths := make([]DevicePath, len(devices))
	for i, d := range devices {
		paths[i] = DevicePath{Kind: KindUSB, Path: pathString(d.Desc.Path)}
	}
	return paths, nil
}

// OpenDevice claims the device at path's port path and opens its bulk
// endpoints.
func (USBTransport) OpenDevice(path DevicePath) (Device, error) {
	ctx := gousb.NewContext()

	var matched *gousb.Device
	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return matchesDevice(desc) && pathString(desc.Path) == path.Path
	})
	if err != nil {
		ctx.Close()
		return nil, &TransportOpenError{Cause: err}
	}
	for _, d := range devices {
		if matched == nil {
			matched = d
		} else {
			_ = d.Close()
		}
	}
	if matched == nil {
		ctx.Close()
		return nil, ErrDeviceNotFound
	}

	cfg, err := matched.Config(1)
	if err != nil {
		_ = matched.Close()
		ctx.Close()
		return nil, &TransportOpenError{Cause: fmt.Errorf("set config: %w", err)}
	}
	intf, err := cfg.Interface(0, 0)
	if err != nil {
		_ = cfg.Close()
		_ = matched.Close()
		ctx.Close()
		return nil, &TransportOpenError{Cause: fmt.Errorf("claim interface: %w", err)}
	}
	epOut, err := intf.OutEndpoint(EndpointOut)
	if err != nil {
		intf.Close()
		_ = cfg.Close()
		_ = matched.Close()
		ctx.Close()
		return nil, &TransportOpenError{Cause: fmt.Errorf("open out endpoint: %w", err)}
	}
	epIn, err := intf.InEndpoint(EndpointIn)
	if err != nil {
		intf.Close()
		_ = cfg.Close()
		_ = matched.Close()
		ctx.Close()
		return nil, &TransportOpenError{Cause: fmt.Errorf("open in endpoint: %w", err)}
	}

	return &usbDevice{
		ctx:    ctx,
		device: matched,
		config: cfg,
		intf:   intf,
		epOut:  epOut,
		epIn:   epIn,
	}, nil
}

type usbDevice struct {
	ctx    *gousb.Context
	device *gousb.Device
	config *gousb.Config
	intf   *gousb.Interface
	epOut  *gousb.OutEndpoint
	epIn   *gousb.InEndpoint
}

func (d *usbDevice) Write(buf []byte, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	n, err := d.epOut.WriteContext(ctx, buf)
	if err != nil {
		return n, fmt.Errorf("usb write: %w", err)
	}
	return n, nil
}

func (d *usbDevice) Read(buf []byte, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	n, err := d.epIn.ReadContext(ctx, buf)
	if err != nil {
		return n, fmt.Errorf("usb read: %w", err)
	}
	return n, nil
}

func (d *usbDevice) Close() error {
	d.intf.Close()
	_ = d.config.Close()
	err := d.device.Close()
	d.ctx.Close()
	return err
}

// TransportOpenError wraps a backend-specific open failure (libusb or
// serial-port error) so callers can test for it with errors.As without
// importing the backend package directly.
type TransportOpenError struct {
	Cause error
}

func (e *TransportOpenError) Error() string { return "transport: open device: " + e.Cause.Error() }
func (e *TransportOpenError) Unwrap() error  { return e.Cause }
