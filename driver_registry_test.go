// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: MIT

package libva

import (
	"errors"
	"testing"
)

// fakeDriver wraps the software driver under a different registry identity.
type fakeDriver struct {
	*softwareDriver
	name string
}

func (d *fakeDriver) Name() string { return d.name }

func registerFake(t *testing.T, name string, priority int, available bool) {
	t.Helper()
	RegisterDriver(name, priority,
		func() Driver { return &fakeDriver{softwareDriver: newSoftwareDriver(), name: name} },
		func() bool { return available })
	t.Cleanup(func() { UnregisterDriver(name) })
}

func TestRegistryByName(t *testing.T) {
	registerFake(t, "testdrv", 50, true)

	d := driverByName("testdrv")
	if d == nil {
		t.Fatal("driverByName() returned nil for a registered driver")
	}
	if got := d.Name(); got != "testdrv" {
		t.Errorf("Name() = %q, want testdrv", got)
	}
	if d := driverByName("no-such-driver"); d != nil {
		t.Errorf("driverByName(unknown) = %v, want nil", d)
	}
}

func TestRegistryAvailability(t *testing.T) {
	registerFake(t, "absent", 200, false)

	if d := driverByName("absent"); d != nil {
		t.Error("driverByName() returned an unavailable driver")
	}

	// The unavailable high-priority driver must not win default selection.
	d := defaultDriver()
	if d == nil {
		t.Fatal("defaultDriver() returned nil with software registered")
	}
	if got := d.Name(); got == "absent" {
		t.Error("defaultDriver() selected an unavailable driver")
	}
}

func TestRegistryPriority(t *testing.T) {
	registerFake(t, "preferred", 90, true)

	d := defaultDriver()
	if d == nil {
		t.Fatal("defaultDriver() returned nil")
	}
	if got := d.Name(); got != "preferred" {
		t.Errorf("defaultDriver() = %q, want preferred (priority 90 over software 10)", got)
	}

	names := Drivers()
	if len(names) < 2 {
		t.Fatalf("Drivers() = %v, want at least preferred and software", names)
	}
	if names[0] != "preferred" {
		t.Errorf("Drivers()[0] = %q, want preferred first", names[0])
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(WithDriverName("no-such-driver")); !errors.Is(err, ErrDriverNotAvailable) {
		t.Errorf("Open(unknown driver) error = %v, want ErrDriverNotAvailable", err)
	}
}
