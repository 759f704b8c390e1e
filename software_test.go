// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: MIT

package libva

import "testing"

// The software driver must satisfy the full native call boundary.
var _ Driver = (*softwareDriver)(nil)

// TestSoftwareProtocolEnforcement verifies that the driver itself rejects
// out-of-order protocol calls with a status code, independent of the
// type-level guarantees in Picture.
func TestSoftwareProtocolEnforcement(t *testing.T) {
	drv := newSoftwareDriver()
	dpy, st := drv.Open()
	if st != StatusSuccess {
		t.Fatalf("Open() status = %v", st)
	}

	cfg, st := drv.CreateConfig(dpy, ProfileNone, EntrypointVideoProc)
	if st != StatusSuccess {
		t.Fatalf("CreateConfig() status = %v", st)
	}
	surfaces, st := drv.CreateSurfaces(dpy, RTFormatYUV420, 16, 16, 1)
	if st != StatusSuccess {
		t.Fatalf("CreateSurfaces() status = %v", st)
	}
	ctx, st := drv.CreateContext(dpy, cfg, 16, 16, surfaces)
	if st != StatusSuccess {
		t.Fatalf("CreateContext() status = %v", st)
	}

	// Render and end before begin are protocol violations.
	if st := drv.RenderPicture(dpy, ctx, nil); st != StatusErrorOperationFailed {
		t.Errorf("RenderPicture() before begin status = %v, want operation failed", st)
	}
	if st := drv.EndPicture(dpy, ctx); st != StatusErrorOperationFailed {
		t.Errorf("EndPicture() before begin status = %v, want operation failed", st)
	}

	if st := drv.BeginPicture(dpy, ctx, surfaces[0]); st != StatusSuccess {
		t.Fatalf("BeginPicture() status = %v", st)
	}
	// A second begin on a busy context is rejected.
	if st := drv.BeginPicture(dpy, ctx, surfaces[0]); st != StatusErrorOperationFailed {
		t.Errorf("second BeginPicture() status = %v, want operation failed", st)
	}

	if st := drv.RenderPicture(dpy, ctx, nil); st != StatusSuccess {
		t.Fatalf("RenderPicture() status = %v", st)
	}
	if st := drv.EndPicture(dpy, ctx); st != StatusSuccess {
		t.Fatalf("EndPicture() status = %v", st)
	}

	// The context is idle again; a fresh sequence may begin.
	if st := drv.BeginPicture(dpy, ctx, surfaces[0]); st != StatusSuccess {
		t.Errorf("BeginPicture() after completed sequence status = %v", st)
	}
}

// TestSoftwareInvalidHandles verifies status codes for unknown resources.
func TestSoftwareInvalidHandles(t *testing.T) {
	drv := newSoftwareDriver()
	dpy, st := drv.Open()
	if st != StatusSuccess {
		t.Fatalf("Open() status = %v", st)
	}

	if st := drv.SyncSurface(dpy, 999); st != StatusErrorInvalidSurface {
		t.Errorf("SyncSurface(unknown) status = %v, want invalid surface", st)
	}
	if st := drv.BeginPicture(dpy, 999, 1); st != StatusErrorInvalidContext {
		t.Errorf("BeginPicture(unknown ctx) status = %v, want invalid context", st)
	}
	if st := drv.DestroyBuffer(dpy, 999); st != StatusErrorInvalidBuffer {
		t.Errorf("DestroyBuffer(unknown) status = %v, want invalid buffer", st)
	}
	if _, st := drv.CreateSurfaces(DisplayHandle(999), RTFormatYUV420, 16, 16, 1); st != StatusErrorInvalidDisplay {
		t.Errorf("CreateSurfaces(unknown dpy) status = %v, want invalid display", st)
	}
	if st := drv.CloseDisplay(dpy); st != StatusSuccess {
		t.Errorf("CloseDisplay() status = %v", st)
	}
	if st := drv.CloseDisplay(dpy); st != StatusErrorInvalidDisplay {
		t.Errorf("second CloseDisplay() status = %v, want invalid display", st)
	}
}

// TestImageLayout checks the computed plane layouts.
func TestImageLayout(t *testing.T) {
	tests := []struct {
		name     string
		format   PixelFormat
		w, h     uint32
		planes   uint32
		dataSize uint32
		uvOffset uint32
	}{
		{"NV12 even", PixelFormatNV12, 16, 16, 2, 16*16 + 2*8*8, 256},
		{"NV12 odd", PixelFormatNV12, 17, 17, 2, 17*17 + 2*9*9, 289},
		{"I420", PixelFormatI420, 16, 16, 3, 16*16 + 2*8*8, 256},
		{"RGBA", PixelFormatRGBA, 16, 16, 1, 4 * 16 * 16, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := imageLayout(tt.format, tt.w, tt.h)
			if info.NumPlanes != tt.planes {
				t.Errorf("NumPlanes = %d, want %d", info.NumPlanes, tt.planes)
			}
			if info.DataSize != tt.dataSize {
				t.Errorf("DataSize = %d, want %d", info.DataSize, tt.dataSize)
			}
			if info.NumPlanes > 1 && info.Offsets[1] != tt.uvOffset {
				t.Errorf("Offsets[1] = %d, want %d", info.Offsets[1], tt.uvOffset)
			}
		})
	}
}
