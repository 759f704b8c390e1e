// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: MIT

package libva

import (
	"bytes"
	"errors"
	"testing"
)

// renderPattern runs a full sequence submitting data as one slice buffer and
// returns the synced picture.
func renderPattern(t *testing.T, ctx *Context, s *Surface, data []byte) *PictureSynced {
	t.Helper()
	pic := NewPicture(1, ctx, s)
	b, err := ctx.CreateBuffer(BufferTypeSliceData, data)
	if err != nil {
		t.Fatalf("CreateBuffer() failed: %v", err)
	}
	if err := pic.AddBuffer(b); err != nil {
		t.Fatalf("AddBuffer() failed: %v", err)
	}
	return renderToSync(t, pic)
}

// TestDeriveImage verifies the zero-copy view: derived image data reflects
// the surface content without an intermediate copy.
func TestDeriveImage(t *testing.T) {
	_, _, ctx, surfaces := newTestPipeline(t, RTFormatRGB32, 2, 2, 1)

	// 2x2 RGBA pattern: red, green, blue, white.
	pattern := []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 255,
	}
	synced := renderPattern(t, ctx, surfaces[0], pattern)

	img, err := synced.DeriveImage(Resolution{Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("DeriveImage() failed: %v", err)
	}
	defer img.Destroy()

	if !img.IsDerived() {
		t.Error("IsDerived() = false for a derived image")
	}
	if got := img.Format(); got != PixelFormatRGBA {
		t.Errorf("Format() = %s, want RGBA", got)
	}
	data, err := img.Bytes()
	if err != nil {
		t.Fatalf("Bytes() failed: %v", err)
	}
	if !bytes.Equal(data, pattern) {
		t.Error("derived image data does not match surface content")
	}

	rgba, err := img.RGBA()
	if err != nil {
		t.Fatalf("RGBA() failed: %v", err)
	}
	if got := rgba.RGBAAt(0, 0); got.R != 255 || got.G != 0 || got.B != 0 {
		t.Errorf("pixel (0,0) = %v, want red", got)
	}
	if got := rgba.RGBAAt(1, 1); got.R != 255 || got.G != 255 || got.B != 255 {
		t.Errorf("pixel (1,1) = %v, want white", got)
	}
}

// TestDeriveImageUnsupported verifies that derive failure is surfaced as a
// normal error, leaving no image resource behind.
func TestDeriveImageUnsupported(t *testing.T) {
	drv, _, ctx, surfaces := newTestPipeline(t, RTFormatRGB32, 2, 2, 1)
	drv.noDerive = true

	synced := renderToSync(t, NewPicture(1, ctx, surfaces[0]))
	if _, err := synced.DeriveImage(Resolution{Width: 2, Height: 2}); err == nil {
		t.Fatal("DeriveImage() succeeded despite driver refusal")
	}
	if got := drv.liveImages(); got != 0 {
		t.Errorf("live images = %d after failed derive, want 0", got)
	}
}

// TestCreateImageCopy verifies the owned-copy path: the image holds an
// independent copy of the surface content.
func TestCreateImageCopy(t *testing.T) {
	drv, _, ctx, surfaces := newTestPipeline(t, RTFormatRGB32, 2, 2, 1)
	pattern := bytes.Repeat([]byte{0x5a}, 16)
	synced := renderPattern(t, ctx, surfaces[0], pattern)

	img, err := synced.CreateImage(PixelFormatRGBA, Resolution{Width: 2, Height: 2}, Resolution{Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("CreateImage() failed: %v", err)
	}
	if img.IsDerived() {
		t.Error("IsDerived() = true for a copied image")
	}
	data, err := img.Bytes()
	if err != nil {
		t.Fatalf("Bytes() failed: %v", err)
	}
	if !bytes.Equal(data, pattern) {
		t.Error("copied image data does not match surface content")
	}

	if err := img.Destroy(); err != nil {
		t.Fatalf("Destroy() failed: %v", err)
	}
	if err := img.Destroy(); err != nil {
		t.Errorf("second Destroy() failed: %v", err)
	}
	if _, err := img.Bytes(); !errors.Is(err, ErrImageDestroyed) {
		t.Errorf("Bytes() after Destroy error = %v, want ErrImageDestroyed", err)
	}
	if got := drv.liveImages(); got != 0 {
		t.Errorf("live images = %d after Destroy, want 0", got)
	}
}

// TestCreateImageInvalidFormat verifies that a rejected allocation leaks no
// image resource.
func TestCreateImageInvalidFormat(t *testing.T) {
	drv, _, ctx, surfaces := newTestPipeline(t, RTFormatRGB32, 2, 2, 1)
	synced := renderToSync(t, NewPicture(1, ctx, surfaces[0]))

	before := drv.liveImages()
	_, err := synced.CreateImage(FourCC('X', 'X', 'X', 'X'), Resolution{Width: 2, Height: 2}, Resolution{Width: 2, Height: 2})
	if err == nil {
		t.Fatal("CreateImage() succeeded with invalid format")
	}
	var vaErr *Error
	if !errors.As(err, &vaErr) || vaErr.Status != StatusErrorInvalidImageFormat {
		t.Errorf("CreateImage() error = %v, want invalid image format status", err)
	}
	if got := drv.liveImages(); got != before {
		t.Errorf("live images = %d after failed allocation, want %d", got, before)
	}
}

// TestCreateImageCopyFailureNoLeak verifies the failure path of the copy
// call: the freshly allocated image must be destroyed before the error
// propagates.
func TestCreateImageCopyFailureNoLeak(t *testing.T) {
	drv, _, ctx, surfaces := newTestPipeline(t, RTFormatRGB32, 2, 2, 1)
	synced := renderToSync(t, NewPicture(1, ctx, surfaces[0]))

	before := drv.liveImages()
	drv.failNextGet = StatusErrorOperationFailed
	if _, err := synced.CreateImage(PixelFormatRGBA, Resolution{Width: 2, Height: 2}, Resolution{Width: 2, Height: 2}); err == nil {
		t.Fatal("CreateImage() succeeded despite injected copy failure")
	}
	if got := drv.liveImages(); got != before {
		t.Errorf("live images = %d after failed copy, want %d", got, before)
	}
}

// TestImageNV12Conversion verifies the NV12 to RGBA conversion path on a
// uniform mid-gray frame.
func TestImageNV12Conversion(t *testing.T) {
	_, _, ctx, surfaces := newTestPipeline(t, RTFormatYUV420, 4, 4, 1)

	// NV12 4x4: 16 luma bytes at 0x80, 8 interleaved chroma bytes at 0x80.
	// Neutral chroma and mid luma decode to mid gray.
	frame := bytes.Repeat([]byte{0x80}, 16+8)
	synced := renderPattern(t, ctx, surfaces[0], frame)

	img, err := synced.DeriveImage(Resolution{Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("DeriveImage() failed: %v", err)
	}
	defer img.Destroy()

	rgba, err := img.RGBA()
	if err != nil {
		t.Fatalf("RGBA() failed: %v", err)
	}
	c := rgba.RGBAAt(2, 2)
	if c.R != c.G || c.G != c.B {
		t.Errorf("pixel (2,2) = %v, want gray", c)
	}
	if c.R < 0x70 || c.R > 0x90 {
		t.Errorf("pixel (2,2) luma = %d, want mid gray", c.R)
	}
}

// TestImageScaledRGBA verifies Catmull-Rom scaling of the visible region.
func TestImageScaledRGBA(t *testing.T) {
	_, _, ctx, surfaces := newTestPipeline(t, RTFormatRGB32, 2, 2, 1)
	pattern := bytes.Repeat([]byte{0x40, 0x80, 0xc0, 0xff}, 4)
	synced := renderPattern(t, ctx, surfaces[0], pattern)

	img, err := synced.DeriveImage(Resolution{Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("DeriveImage() failed: %v", err)
	}
	defer img.Destroy()

	scaled, err := img.ScaledRGBA(8, 8)
	if err != nil {
		t.Fatalf("ScaledRGBA() failed: %v", err)
	}
	if got := scaled.Bounds().Dx(); got != 8 {
		t.Errorf("scaled width = %d, want 8", got)
	}
	c := scaled.RGBAAt(4, 4)
	if c.R != 0x40 || c.G != 0x80 || c.B != 0xc0 {
		t.Errorf("scaled pixel = %v, want uniform source color", c)
	}
}

// TestImageOnConsumedPicture verifies that image production is rejected on a
// consumed synced handle.
func TestImageOnConsumedPicture(t *testing.T) {
	_, _, ctx, surfaces := newTestPipeline(t, RTFormatRGB32, 2, 2, 1)
	synced := renderToSync(t, NewPicture(1, ctx, surfaces[0]))

	if _, ok := synced.TakeSurface(); !ok {
		t.Fatal("TakeSurface() failed on sole referent")
	}
	if _, err := synced.DeriveImage(Resolution{Width: 2, Height: 2}); !errors.Is(err, ErrPictureConsumed) {
		t.Errorf("DeriveImage() error = %v, want ErrPictureConsumed", err)
	}
	if _, err := synced.CreateImage(PixelFormatRGBA, Resolution{Width: 2, Height: 2}, Resolution{Width: 2, Height: 2}); !errors.Is(err, ErrPictureConsumed) {
		t.Errorf("CreateImage() error = %v, want ErrPictureConsumed", err)
	}
}
