// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: MIT

package vapresent

import (
	"github.com/gogpu/gputypes"

	libva "github.com/rosetta-jpn/cros-libva"
)

// TextureFormat maps a video pixel format to the GPU texture format that
// can hold it without conversion. ok is false for planar YUV formats,
// which need a CPU conversion (Image.RGBA) before upload.
func TextureFormat(pf libva.PixelFormat) (format gputypes.TextureFormat, ok bool) {
	switch pf {
	case libva.PixelFormatRGBA:
		return gputypes.TextureFormatRGBA8Unorm, true
	case libva.PixelFormatBGRA:
		return gputypes.TextureFormatBGRA8Unorm, true
	default:
		return 0, false
	}
}

// SurfaceFormatCompatible reports whether a decoded frame in pf can be
// drawn to a swapchain in the provider's surface format without a
// channel swizzle.
func SurfaceFormatCompatible(pf libva.PixelFormat, surface gputypes.TextureFormat) bool {
	format, ok := TextureFormat(pf)
	if !ok {
		return false
	}
	return format == surface
}
