// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: BSD-3-Clause

package libva

import (
	"errors"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// Image errors.
var (
	// ErrImageDestroyed is returned when operating on a destroyed image.
	ErrImageDestroyed = errors.New("libva: image has been destroyed")

	// ErrUnsupportedConversion is returned by RGBA and ScaledRGBA when the
	// image's pixel format has no CPU conversion path.
	ErrUnsupportedConversion = errors.New("libva: no conversion path for pixel format")
)

// Image is a readable representation of a surface's content, produced from
// a synced picture.
//
// An Image is either a derived zero-copy view bound to the surface's
// lifetime, or an independent owned copy; IsDerived tells them apart. The
// distinction matters: writing to the surface while a derived view is alive
// changes (or corrupts) the view's content, while a copy is unaffected.
//
// The image's backing buffer is mapped for CPU access for the whole
// lifetime of the Image and unmapped by Destroy.
type Image struct {
	display    *Display
	info       ImageInfo
	data       []byte
	derived    bool
	displayRes Resolution
	destroyed  bool
}

// DeriveImage requests a zero-copy view of the surface's current content in
// its native format and coded resolution, cropped to displayRes for the
// visible-region helpers.
//
// Not all surfaces can be derived; that depends on the driver and the
// surface's memory layout. Failure is a normal, expected outcome; fall
// back to CreateImage.
func (p *PictureSynced) DeriveImage(displayRes Resolution) (*Image, error) {
	if p.inner == nil {
		return nil, ErrPictureConsumed
	}
	d := p.display()
	info, st := d.driver.DeriveImage(d.handle, p.inner.surface.id)
	if err := checkStatus("vaDeriveImage", st); err != nil {
		return nil, err
	}
	return newImage(d, info, true, displayRes)
}

// CreateImage allocates a new image in the requested format and coded
// resolution, then copies the surface content into it.
//
// The copy is leak-free on failure: if the copy call fails, the freshly
// allocated image is destroyed before the error is returned.
func (p *PictureSynced) CreateImage(format PixelFormat, codedRes, displayRes Resolution) (*Image, error) {
	if p.inner == nil {
		return nil, ErrPictureConsumed
	}
	d := p.display()
	info, st := d.driver.CreateImage(d.handle, format, codedRes.Width, codedRes.Height)
	if err := checkStatus("vaCreateImage", st); err != nil {
		return nil, err
	}

	st = d.driver.GetImage(d.handle, p.inner.surface.id, 0, 0, codedRes.Width, codedRes.Height, info.ID)
	if err := checkStatus("vaGetImage", st); err != nil {
		if dst := d.driver.DestroyImage(d.handle, info.ID); dst != StatusSuccess {
			Logger().Warn("libva: image release failed after copy error",
				"image", info.ID, "status", dst)
		}
		return nil, err
	}

	return newImage(d, info, false, displayRes)
}

// newImage wraps a driver image descriptor, mapping its backing buffer.
// The descriptor is destroyed if mapping fails, so no resource leaks.
func newImage(d *Display, info ImageInfo, derived bool, displayRes Resolution) (*Image, error) {
	data, st := d.driver.MapBuffer(d.handle, info.Buf)
	if err := checkStatus("vaMapBuffer", st); err != nil {
		if dst := d.driver.DestroyImage(d.handle, info.ID); dst != StatusSuccess {
			Logger().Warn("libva: image release failed after map error",
				"image", info.ID, "status", dst)
		}
		return nil, err
	}
	return &Image{
		display:    d,
		info:       info,
		data:       data,
		derived:    derived,
		displayRes: displayRes,
	}, nil
}

// ID returns the native image id.
func (img *Image) ID() ImageID {
	return img.info.ID
}

// Format returns the pixel format of the image data.
func (img *Image) Format() PixelFormat {
	return img.info.Format
}

// IsDerived reports whether the image is a zero-copy view of its source
// surface rather than an independent copy.
func (img *Image) IsDerived() bool {
	return img.derived
}

// CodedResolution returns the full coded dimensions of the image.
func (img *Image) CodedResolution() Resolution {
	return Resolution{Width: img.info.Width, Height: img.info.Height}
}

// DisplayResolution returns the visible-region dimensions.
func (img *Image) DisplayResolution() Resolution {
	return img.displayRes
}

// Info returns a copy of the driver's image descriptor (plane layout,
// pitches, offsets, data size).
func (img *Image) Info() ImageInfo {
	return img.info
}

// Bytes returns the mapped image data. For a derived image the data aliases
// the surface memory; for a copy it is independent. The slice is valid
// until Destroy.
func (img *Image) Bytes() ([]byte, error) {
	if img.destroyed {
		return nil, ErrImageDestroyed
	}
	return img.data, nil
}

// Destroy unmaps the image data and releases the image.
// Destroy is idempotent; multiple calls are safe.
func (img *Image) Destroy() error {
	if img.destroyed {
		return nil
	}
	img.destroyed = true
	img.data = nil

	d := img.display
	if err := checkStatus("vaUnmapBuffer", d.driver.UnmapBuffer(d.handle, img.info.Buf)); err != nil {
		Logger().Warn("libva: image unmap failed", "image", img.info.ID, "err", err)
	}
	return checkStatus("vaDestroyImage", d.driver.DestroyImage(d.handle, img.info.ID))
}

// RGBA converts the image's visible region to an RGBA image.
// Supported source formats: NV12, I420, RGBA, BGRA.
func (img *Image) RGBA() (*image.RGBA, error) {
	src, err := img.view()
	if err != nil {
		return nil, err
	}
	visible := image.Rect(0, 0, int(img.displayRes.Width), int(img.displayRes.Height))
	dst := image.NewRGBA(visible)
	xdraw.Draw(dst, visible, src, image.Point{}, xdraw.Src)
	return dst, nil
}

// ScaledRGBA converts the visible region to RGBA and scales it to the given
// dimensions with Catmull-Rom resampling.
func (img *Image) ScaledRGBA(width, height int) (*image.RGBA, error) {
	src, err := img.view()
	if err != nil {
		return nil, err
	}
	visible := image.Rect(0, 0, int(img.displayRes.Width), int(img.displayRes.Height))
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, visible, xdraw.Src, nil)
	return dst, nil
}

// view wraps the mapped data in an image.Image without copying pixel data
// where the format allows it (NV12 needs its chroma plane deinterleaved).
func (img *Image) view() (image.Image, error) {
	if img.destroyed {
		return nil, ErrImageDestroyed
	}

	w := int(img.info.Width)
	h := int(img.info.Height)
	rect := image.Rect(0, 0, w, h)

	switch img.info.Format {
	case PixelFormatRGBA:
		return &image.RGBA{
			Pix:    img.data[img.info.Offsets[0]:],
			Stride: int(img.info.Pitches[0]),
			Rect:   rect,
		}, nil

	case PixelFormatBGRA:
		return bgraToRGBA(img.data[img.info.Offsets[0]:], int(img.info.Pitches[0]), w, h), nil

	case PixelFormatI420:
		return &image.YCbCr{
			Y:              img.data[img.info.Offsets[0]:],
			Cb:             img.data[img.info.Offsets[1]:],
			Cr:             img.data[img.info.Offsets[2]:],
			YStride:        int(img.info.Pitches[0]),
			CStride:        int(img.info.Pitches[1]),
			SubsampleRatio: image.YCbCrSubsampleRatio420,
			Rect:           rect,
		}, nil

	case PixelFormatNV12:
		return nv12ToYCbCr(img.data, img.info, w, h), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConversion, img.info.Format)
	}
}

// bgraToRGBA swizzles interleaved BGRA rows into a packed RGBA image.
func bgraToRGBA(src []byte, stride, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src[y*stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			out[x*4+0] = row[x*4+2]
			out[x*4+1] = row[x*4+1]
			out[x*4+2] = row[x*4+0]
			out[x*4+3] = row[x*4+3]
		}
	}
	return dst
}

// nv12ToYCbCr deinterleaves the CbCr plane of an NV12 image into a planar
// YCbCr image. The luma plane is referenced, not copied.
func nv12ToYCbCr(data []byte, info ImageInfo, w, h int) *image.YCbCr {
	cw := (w + 1) / 2
	ch := (h + 1) / 2

	cb := make([]byte, cw*ch)
	cr := make([]byte, cw*ch)
	uv := data[info.Offsets[1]:]
	pitch := int(info.Pitches[1])
	for y := 0; y < ch; y++ {
		row := uv[y*pitch:]
		for x := 0; x < cw; x++ {
			cb[y*cw+x] = row[x*2]
			cr[y*cw+x] = row[x*2+1]
		}
	}

	return &image.YCbCr{
		Y:              data[info.Offsets[0]:],
		Cb:             cb,
		Cr:             cr,
		YStride:        int(info.Pitches[0]),
		CStride:        cw,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, w, h),
	}
}
