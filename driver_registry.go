// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: BSD-3-Clause

package libva

import (
	"sort"
	"sync"
)

// DriverFactory creates a new driver instance.
type DriverFactory func() Driver

// driverEntry represents a registered driver.
type driverEntry struct {
	name string

	// priority determines selection order (higher = preferred).
	// Standard priorities:
	//   - 100: hardware drivers (DRM render nodes)
	//   - 10: pure software emulation
	priority int

	factory DriverFactory

	// available reports if the driver can run on this system. Checked at
	// selection time, not registration time, so device hotplug is observed.
	available func() bool
}

// driverRegistry holds registered drivers.
var (
	registryMu sync.RWMutex
	drivers    = make(map[string]*driverEntry)
)

// RegisterDriver registers a driver factory under the given name.
// This is typically called from init() functions in driver packages.
// If a driver with the same name is already registered, it is replaced.
//
// available may be nil, meaning always available.
func RegisterDriver(name string, priority int, factory DriverFactory, available func() bool) {
	if available == nil {
		available = func() bool { return true }
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	drivers[name] = &driverEntry{
		name:      name,
		priority:  priority,
		factory:   factory,
		available: available,
	}
}

// UnregisterDriver removes a driver from the registry.
// This is useful for testing.
func UnregisterDriver(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(drivers, name)
}

// Drivers returns the names of all registered drivers, sorted by descending
// priority then name.
func Drivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	entries := make([]*driverEntry, 0, len(drivers))
	for _, e := range drivers {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority > entries[j].priority
		}
		return entries[i].name < entries[j].name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// driverByName returns a new instance of the named driver, or nil if the
// driver is not registered or not available.
func driverByName(name string) Driver {
	registryMu.RLock()
	defer registryMu.RUnlock()

	e, ok := drivers[name]
	if !ok || !e.available() {
		return nil
	}
	return e.factory()
}

// defaultDriver returns a new instance of the best available driver
// (highest priority wins), or nil if none is available.
func defaultDriver() Driver {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var best *driverEntry
	for _, e := range drivers {
		if !e.available() {
			continue
		}
		if best == nil || e.priority > best.priority ||
			(e.priority == best.priority && e.name < best.name) {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	return best.factory()
}
