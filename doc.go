// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package libva wraps a VA-style hardware video render API in a protocol
// state machine that makes illegal call sequences unrepresentable.
//
// The hardware requires four calls per rendered picture in a strict order
// (begin, render, end, sync), and the render target surface may only be
// reused once that sequence has either not started or fully completed.
// Picture models the sequence as a chain of distinct types, one per state,
// each exposing exactly the next legal call:
//
//	pic := libva.NewPicture(42, ctx, surface)
//	pic.AddBuffer(buf)
//	begun, err := pic.Begin()
//	rendering, err := begun.Render()
//	ended, err := rendering.End()
//	synced, err := ended.Sync()
//	img, err := synced.DeriveImage(libva.Resolution{Width: 1920, Height: 1080})
//
// Surfaces may be shared between sibling pictures (both fields of an
// interlaced frame render into one frame buffer); the surface can be
// reclaimed for reuse only when every referencing picture is in a
// reclaimable state, enforced by reference counting through TakeSurface.
//
// The native call layer is pluggable: drivers register through
// RegisterDriver and are selected by Open. A pure-Go software driver is
// built in; the drivers/drm package provides the hardware path on Linux.
//
// The package produces no log output by default; see SetLogger.
package libva
