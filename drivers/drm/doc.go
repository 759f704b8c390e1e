// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: MIT

// Package drm provides the hardware driver backed by the system libva
// through a DRM render node.
//
// The package registers itself on import:
//
//	import _ "github.com/rosetta-jpn/cros-libva/drivers/drm"
//
// Registration makes the driver the default on machines with a usable
// render node under /dev/dri; without one, driver selection falls back to
// lower-priority drivers. The driver requires cgo and the libva and
// libva-drm development headers at build time; build with -tags novadrm
// to skip the native bindings. Without them a stub is registered that
// reports itself unavailable.
package drm
