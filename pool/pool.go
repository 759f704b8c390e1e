// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: MIT

// Package pool recycles render target surfaces across decode cycles.
//
// Creating and destroying surfaces on every frame is expensive on real
// drivers. A SurfacePool allocates a fixed set up front; the decode loop
// takes a surface with Get, renders into it through a picture chain, and
// hands the finished picture to Reclaim, which returns the surface to the
// pool once no sibling picture still references it.
package pool

import (
	"errors"
	"fmt"
	"sync"

	libva "github.com/rosetta-jpn/cros-libva"
)

var (
	// ErrPoolClosed is returned when operations are attempted on a
	// closed pool.
	ErrPoolClosed = errors.New("pool: pool is closed")

	// ErrExhausted is returned by Get when every surface is in use.
	ErrExhausted = errors.New("pool: no free surfaces")
)

// SurfacePool is a fixed-size set of same-format surfaces.
// It is safe for concurrent use.
type SurfacePool struct {
	mu     sync.Mutex
	free   []*libva.Surface
	total  int
	closed bool
}

// New allocates count surfaces of the given format and dimensions.
func New(dpy *libva.Display, format libva.RTFormat, width, height, count uint32) (*SurfacePool, error) {
	if count == 0 {
		return nil, errors.New("pool: count must be positive")
	}
	surfaces, err := dpy.CreateSurfaces(format, width, height, count)
	if err != nil {
		return nil, fmt.Errorf("pool: surface allocation failed: %w", err)
	}
	libva.Logger().Debug("pool: surfaces allocated",
		"count", len(surfaces), "width", width, "height", height)
	return &SurfacePool{free: surfaces, total: len(surfaces)}, nil
}

// Get removes a free surface from the pool. The caller owns the surface
// until it comes back through Put or Reclaim.
func (p *SurfacePool) Get() (*libva.Surface, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	if len(p.free) == 0 {
		return nil, ErrExhausted
	}
	s := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	return s, nil
}

// Put returns a surface obtained from Get. If the pool has been closed in
// the meantime the surface is destroyed instead.
func (p *SurfacePool) Put(s *libva.Surface) {
	if s == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = s.Destroy()
		return
	}
	p.free = append(p.free, s)
	p.mu.Unlock()
}

// Reclaim takes exclusive surface ownership from a finished picture and
// returns the surface to the pool. It reports false when another picture
// still shares the surface; the picture is left untouched and can be
// reclaimed again after its siblings are closed.
func (p *SurfacePool) Reclaim(pic libva.ReclaimablePicture) bool {
	s, ok := pic.TakeSurface()
	if !ok {
		return false
	}
	p.Put(s)
	return true
}

// Free returns the number of surfaces currently available.
func (p *SurfacePool) Free() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Total returns the pool capacity.
func (p *SurfacePool) Total() int {
	return p.total
}

// Close destroys all free surfaces. Surfaces still checked out are
// destroyed when they are put back. Close is idempotent.
func (p *SurfacePool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var firstErr error
	for _, s := range p.free {
		if err := s.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.free = nil
	return firstErr
}
