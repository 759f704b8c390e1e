// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: BSD-3-Clause

package libva

import (
	"errors"
	"fmt"
	"sync"
)

// Common display errors.
var (
	// ErrNoDriver is returned by Open when no registered driver is
	// available on this system.
	ErrNoDriver = errors.New("libva: no driver available")

	// ErrDriverNotAvailable is returned by Open when the requested driver
	// is not registered or reports itself unavailable.
	ErrDriverNotAvailable = errors.New("libva: driver not available")

	// ErrDisplayClosed is returned when operations are attempted on a
	// closed display.
	ErrDisplayClosed = errors.New("libva: display is closed")
)

// DisplayOption configures a Display during Open.
//
// Example:
//
//	// Best available driver:
//	dpy, err := libva.Open()
//
//	// Specific driver by name:
//	dpy, err := libva.Open(libva.WithDriverName("software"))
type DisplayOption func(*displayOptions)

// displayOptions holds optional configuration for Open.
type displayOptions struct {
	driverName string
	driver     Driver
}

// WithDriverName selects a registered driver by name instead of the best
// available one.
func WithDriverName(name string) DisplayOption {
	return func(o *displayOptions) {
		o.driverName = name
	}
}

// WithDriver injects a driver instance directly, bypassing the registry.
// Use this for dependency injection of custom or test drivers.
func WithDriver(d Driver) DisplayOption {
	return func(o *displayOptions) {
		o.driver = d
	}
}

// Display is an open connection to a hardware device through a Driver.
//
// A Display owns the native display handle and is the allocation root for
// configs, surfaces and contexts. It is shared read-only by the resources
// created from it; Close releases the native handle and must not be called
// while those resources are still in use.
type Display struct {
	driver Driver
	handle DisplayHandle
	closed bool

	formatsOnce sync.Once
	formats     []PixelFormat
	formatsErr  error
}

// Open connects to a device and returns a Display.
//
// With no options, the best available registered driver is selected
// (hardware drivers take priority over the software emulation).
func Open(opts ...DisplayOption) (*Display, error) {
	var o displayOptions
	for _, opt := range opts {
		opt(&o)
	}

	d := o.driver
	if d == nil && o.driverName != "" {
		d = driverByName(o.driverName)
		if d == nil {
			return nil, fmt.Errorf("%w: %q", ErrDriverNotAvailable, o.driverName)
		}
	}
	if d == nil {
		d = defaultDriver()
		if d == nil {
			return nil, ErrNoDriver
		}
	}

	propagateLogger(d)

	handle, st := d.Open()
	if err := checkStatus("vaInitialize", st); err != nil {
		return nil, err
	}

	Logger().Info("libva: display opened", "driver", d.Name())

	return &Display{driver: d, handle: handle}, nil
}

// Handle returns the native display handle.
func (d *Display) Handle() DisplayHandle {
	return d.handle
}

// DriverName returns the name of the driver backing this display.
func (d *Display) DriverName() string {
	return d.driver.Name()
}

// ImageFormats returns the pixel formats supported by CreateImage on this
// display. The driver is queried once; the result is cached.
func (d *Display) ImageFormats() ([]PixelFormat, error) {
	if d.closed {
		return nil, ErrDisplayClosed
	}
	d.formatsOnce.Do(func() {
		formats, st := d.driver.QueryImageFormats(d.handle)
		if d.formatsErr = checkStatus("vaQueryImageFormats", st); d.formatsErr == nil {
			d.formats = formats
		}
	})
	return d.formats, d.formatsErr
}

// CreateConfig creates a codec configuration for the given profile and
// entrypoint.
func (d *Display) CreateConfig(profile Profile, entrypoint Entrypoint) (*Config, error) {
	if d.closed {
		return nil, ErrDisplayClosed
	}
	id, st := d.driver.CreateConfig(d.handle, profile, entrypoint)
	if err := checkStatus("vaCreateConfig", st); err != nil {
		return nil, err
	}
	return &Config{display: d, id: id, profile: profile, entrypoint: entrypoint}, nil
}

// CreateSurfaces allocates count render target surfaces of the given chroma
// format and dimensions.
func (d *Display) CreateSurfaces(format RTFormat, width, height, count uint32) ([]*Surface, error) {
	if d.closed {
		return nil, ErrDisplayClosed
	}
	ids, st := d.driver.CreateSurfaces(d.handle, format, width, height, count)
	if err := checkStatus("vaCreateSurfaces", st); err != nil {
		return nil, err
	}
	surfaces := make([]*Surface, len(ids))
	for i, id := range ids {
		surfaces[i] = &Surface{display: d, id: id, width: width, height: height}
	}
	Logger().Debug("libva: surfaces created",
		"count", len(surfaces), "format", format, "width", width, "height", height)
	return surfaces, nil
}

// CreateContext creates an execution context bound to the given render
// targets. The targets slice may be nil if the driver does not require
// pre-binding.
func (d *Display) CreateContext(cfg *Config, width, height uint32, targets []*Surface) (*Context, error) {
	if d.closed {
		return nil, ErrDisplayClosed
	}
	ids := make([]SurfaceID, len(targets))
	for i, s := range targets {
		ids[i] = s.id
	}
	id, st := d.driver.CreateContext(d.handle, cfg.id, width, height, ids)
	if err := checkStatus("vaCreateContext", st); err != nil {
		return nil, err
	}
	return &Context{display: d, id: id, width: width, height: height}, nil
}

// Close releases the native display handle.
// After Close, the display and all resources created from it must not be
// used. Close is idempotent; multiple calls are safe.
func (d *Display) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return checkStatus("vaTerminate", d.driver.CloseDisplay(d.handle))
}
