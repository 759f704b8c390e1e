// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: MIT

package pool

import (
	"errors"
	"testing"

	libva "github.com/rosetta-jpn/cros-libva"
)

func newTestDisplay(t *testing.T) *libva.Display {
	t.Helper()
	dpy, err := libva.Open(libva.WithDriverName(libva.DriverSoftware))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = dpy.Close() })
	return dpy
}

func newTestPool(t *testing.T, dpy *libva.Display, count uint32) *SurfacePool {
	t.Helper()
	p, err := New(dpy, libva.RTFormatYUV420, 16, 16, count)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestGetPut(t *testing.T) {
	dpy := newTestDisplay(t)
	p := newTestPool(t, dpy, 2)

	if p.Total() != 2 || p.Free() != 2 {
		t.Fatalf("Total()=%d Free()=%d, want 2 and 2", p.Total(), p.Free())
	}

	a, err := p.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	b, err := p.Get()
	if err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	if a.ID() == b.ID() {
		t.Error("Get() returned the same surface twice")
	}
	if p.Free() != 0 {
		t.Errorf("Free() = %d after draining, want 0", p.Free())
	}

	if _, err := p.Get(); !errors.Is(err, ErrExhausted) {
		t.Errorf("Get() on empty pool error = %v, want %v", err, ErrExhausted)
	}

	p.Put(a)
	if p.Free() != 1 {
		t.Errorf("Free() = %d after Put, want 1", p.Free())
	}
	p.Put(b)
}

func TestNewZeroCount(t *testing.T) {
	dpy := newTestDisplay(t)
	if _, err := New(dpy, libva.RTFormatYUV420, 16, 16, 0); err == nil {
		t.Error("New() with count 0 succeeded, want error")
	}
}

func TestReclaim(t *testing.T) {
	dpy := newTestDisplay(t)
	p := newTestPool(t, dpy, 1)

	surface, err := p.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	cfg, err := dpy.CreateConfig(libva.ProfileNone, libva.EntrypointVideoProc)
	if err != nil {
		t.Fatalf("CreateConfig() error = %v", err)
	}
	defer cfg.Destroy()
	ctx, err := dpy.CreateContext(cfg, 16, 16, []*libva.Surface{surface})
	if err != nil {
		t.Fatalf("CreateContext() error = %v", err)
	}
	defer ctx.Destroy()

	pic := libva.NewPicture(1, ctx, surface)
	begun, err := pic.Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	rendering, err := begun.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	ended, err := rendering.End()
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	synced, err := ended.Sync()
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	// A sibling keeps the surface shared, so the first reclaim must fail.
	sibling := libva.NewPictureFromSameSurface(2, synced)
	if p.Reclaim(synced) {
		t.Error("Reclaim() succeeded while a sibling exists")
	}
	if p.Free() != 0 {
		t.Errorf("Free() = %d after failed reclaim, want 0", p.Free())
	}

	if err := sibling.Close(); err != nil {
		t.Fatalf("sibling Close() error = %v", err)
	}
	if !p.Reclaim(synced) {
		t.Error("Reclaim() failed after sibling closed")
	}
	if p.Free() != 1 {
		t.Errorf("Free() = %d after reclaim, want 1", p.Free())
	}
}

func TestCloseDestroysOutstanding(t *testing.T) {
	dpy := newTestDisplay(t)
	p, err := New(dpy, libva.RTFormatYUV420, 16, 16, 2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s, err := p.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := p.Get(); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Get() after Close error = %v, want %v", err, ErrPoolClosed)
	}

	// A surface returned after Close is destroyed rather than pooled.
	p.Put(s)
	if p.Free() != 0 {
		t.Errorf("Free() = %d after Put on closed pool, want 0", p.Free())
	}
}
