// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: BSD-3-Clause

package libva

import "sync/atomic"

// Surface is a hardware render target.
//
// A Surface may be referenced by more than one Picture at a time (sibling
// field pictures of an interlaced frame share one frame buffer). The
// reference count is maintained by the Picture machinery; the surface must
// not be destroyed or reused while any referencing Picture is in a
// non-reclaimable state. Sharing is tracked by the count alone; the library
// does not serialize concurrent submissions against a shared surface, the
// hardware command queue does.
type Surface struct {
	display *Display
	id      SurfaceID
	width   uint32
	height  uint32

	// refs counts the Pictures currently referencing this surface.
	// Zero for a surface not bound to any picture.
	refs atomic.Int32
}

// ID returns the native surface id.
func (s *Surface) ID() SurfaceID {
	return s.id
}

// Width returns the surface width in pixels.
func (s *Surface) Width() uint32 {
	return s.width
}

// Height returns the surface height in pixels.
func (s *Surface) Height() uint32 {
	return s.height
}

// Sync blocks until all pending hardware operations targeting this surface
// have completed. This is the only blocking call in the render protocol.
func (s *Surface) Sync() error {
	return checkStatus("vaSyncSurface", s.display.driver.SyncSurface(s.display.handle, s.id))
}

// Destroy releases the surface.
// The caller must ensure no Picture still references it; reclaim surfaces
// from pictures with TakeSurface before destroying them.
// Destroy is idempotent; multiple calls are safe.
func (s *Surface) Destroy() error {
	if s.id == invalidID {
		return nil
	}
	st := s.display.driver.DestroySurfaces(s.display.handle, []SurfaceID{s.id})
	s.id = invalidID
	return checkStatus("vaDestroySurfaces", st)
}

// retain adds a picture reference.
func (s *Surface) retain() {
	s.refs.Add(1)
}

// release drops a picture reference.
func (s *Surface) release() {
	s.refs.Add(-1)
}

// releaseExclusive drops the reference only if it is the sole one,
// reporting whether exclusive ownership was taken.
func (s *Surface) releaseExclusive() bool {
	return s.refs.CompareAndSwap(1, 0)
}
