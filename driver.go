// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: BSD-3-Clause

package libva

import "fmt"

// DisplayHandle is an opaque native display handle owned by a Driver.
type DisplayHandle uintptr

// ConfigID identifies a codec configuration on a display.
type ConfigID uint32

// ContextID identifies an execution context on a display.
type ContextID uint32

// SurfaceID identifies a hardware render target on a display.
type SurfaceID uint32

// BufferID identifies an opaque command/data buffer on a display.
type BufferID uint32

// ImageID identifies an image resource on a display.
type ImageID uint32

// invalidID marks destroyed or unset resource handles. Matches the native
// VA_INVALID_ID sentinel.
const invalidID = 0xffffffff

// Resolution is a width/height pair in pixels.
type Resolution struct {
	Width  uint32
	Height uint32
}

// PixelFormat is a fourcc pixel format code.
type PixelFormat uint32

// FourCC builds a PixelFormat from its four character code.
func FourCC(a, b, c, d byte) PixelFormat {
	return PixelFormat(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

// Common pixel formats.
var (
	// PixelFormatNV12 is planar Y followed by interleaved CbCr at half
	// resolution. The native format of most decoded surfaces.
	PixelFormatNV12 = FourCC('N', 'V', '1', '2')

	// PixelFormatI420 is fully planar Y, Cb, Cr at 4:2:0 subsampling.
	PixelFormatI420 = FourCC('I', '4', '2', '0')

	// PixelFormatRGBA is interleaved 8-bit RGBA.
	PixelFormatRGBA = FourCC('R', 'G', 'B', 'A')

	// PixelFormatBGRA is interleaved 8-bit BGRA.
	PixelFormatBGRA = FourCC('B', 'G', 'R', 'A')
)

// String returns the fourcc spelled out (e.g. "NV12").
func (f PixelFormat) String() string {
	b := [4]byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("PixelFormat(0x%08x)", uint32(f))
		}
	}
	return string(b[:])
}

// RTFormat describes the chroma layout of a render target surface.
type RTFormat uint32

// Render target formats.
const (
	RTFormatYUV420 RTFormat = 0x00000001
	RTFormatYUV422 RTFormat = 0x00000002
	RTFormatYUV444 RTFormat = 0x00000004
	RTFormatRGB32  RTFormat = 0x00010000
)

// Profile selects a codec profile for configuration.
type Profile int32

// Codec profiles. ProfileNone selects a profile-less pipeline (e.g. video
// processing).
const (
	ProfileNone         Profile = -1
	ProfileMPEG2Simple  Profile = 0
	ProfileMPEG2Main    Profile = 1
	ProfileH264Main     Profile = 6
	ProfileH264High     Profile = 7
	ProfileVP8Version03 Profile = 14
	ProfileHEVCMain     Profile = 17
	ProfileVP9Profile0  Profile = 19
	ProfileAV1Profile0  Profile = 32
)

// Entrypoint selects the pipeline stage a configuration drives.
type Entrypoint int32

// Entrypoints.
const (
	EntrypointVLD       Entrypoint = 1
	EntrypointEncSlice  Entrypoint = 6
	EntrypointVideoProc Entrypoint = 10
)

// BufferType classifies the contents of a submitted buffer.
type BufferType int32

// Buffer types. The library does not interpret buffer contents; the type is
// passed through to the driver untouched.
const (
	BufferTypePictureParameter BufferType = 0
	BufferTypeIQMatrix         BufferType = 1
	BufferTypeBitPlane         BufferType = 2
	BufferTypeSliceGroupMap    BufferType = 3
	BufferTypeSliceParameter   BufferType = 4
	BufferTypeSliceData        BufferType = 5
	BufferTypeImage            BufferType = 9
)

// maxImagePlanes is the plane count limit of the native image descriptor.
const maxImagePlanes = 3

// ImageInfo describes an image resource as reported by the driver.
type ImageInfo struct {
	// ID identifies the image.
	ID ImageID

	// Buf is the buffer backing the image pixel data. Mapping it yields
	// DataSize bytes.
	Buf BufferID

	// Format is the pixel layout of the image data.
	Format PixelFormat

	// Width and Height are the coded dimensions in pixels.
	Width  uint32
	Height uint32

	// NumPlanes, Pitches and Offsets describe the plane layout within the
	// backing buffer.
	NumPlanes uint32
	Pitches   [maxImagePlanes]uint32
	Offsets   [maxImagePlanes]uint32

	// DataSize is the total byte size of the backing buffer.
	DataSize uint32
}

// Driver is the raw native call boundary. Each protocol call returns a
// Status; the library maps non-success codes to *Error and never interprets
// them further.
//
// Implementations are registered via RegisterDriver and selected by Open.
// The four picture protocol calls (BeginPicture, RenderPicture, EndPicture,
// SyncSurface) must be invoked in exactly that order per context; Picture
// enforces the ordering at the type level so drivers may treat out-of-order
// calls as undefined behavior, though the software driver rejects them.
//
// All methods must be safe for calls from a single goroutine per display;
// cross-display concurrency is driver-defined.
type Driver interface {
	// Name returns the driver identifier (e.g. "software", "drm").
	Name() string

	// Open acquires a native display handle.
	Open() (DisplayHandle, Status)

	// CloseDisplay releases a display handle and all resources the driver
	// still holds for it.
	CloseDisplay(dpy DisplayHandle) Status

	// QueryImageFormats lists the pixel formats supported by CreateImage.
	QueryImageFormats(dpy DisplayHandle) ([]PixelFormat, Status)

	// CreateConfig creates a codec configuration.
	CreateConfig(dpy DisplayHandle, profile Profile, entrypoint Entrypoint) (ConfigID, Status)

	// DestroyConfig destroys a configuration.
	DestroyConfig(dpy DisplayHandle, cfg ConfigID) Status

	// CreateSurfaces allocates count render target surfaces.
	CreateSurfaces(dpy DisplayHandle, format RTFormat, width, height, count uint32) ([]SurfaceID, Status)

	// DestroySurfaces releases surfaces.
	DestroySurfaces(dpy DisplayHandle, ids []SurfaceID) Status

	// SyncSurface blocks until all pending operations targeting the surface
	// have completed on the hardware.
	SyncSurface(dpy DisplayHandle, id SurfaceID) Status

	// CreateContext creates an execution context bound to the given render
	// targets.
	CreateContext(dpy DisplayHandle, cfg ConfigID, width, height uint32, targets []SurfaceID) (ContextID, Status)

	// DestroyContext destroys an execution context.
	DestroyContext(dpy DisplayHandle, ctx ContextID) Status

	// CreateBuffer allocates a buffer of the given type holding a copy of
	// data.
	CreateBuffer(dpy DisplayHandle, ctx ContextID, btype BufferType, data []byte) (BufferID, Status)

	// DestroyBuffer releases a buffer.
	DestroyBuffer(dpy DisplayHandle, buf BufferID) Status

	// MapBuffer exposes a buffer's contents for CPU access. The returned
	// slice is valid until UnmapBuffer.
	MapBuffer(dpy DisplayHandle, buf BufferID) ([]byte, Status)

	// UnmapBuffer ends CPU access started by MapBuffer.
	UnmapBuffer(dpy DisplayHandle, buf BufferID) Status

	// BeginPicture starts a render sequence targeting surface on ctx.
	BeginPicture(dpy DisplayHandle, ctx ContextID, target SurfaceID) Status

	// RenderPicture submits the buffer list, in order, in one call.
	RenderPicture(dpy DisplayHandle, ctx ContextID, buffers []BufferID) Status

	// EndPicture signals submission completion for the current sequence.
	EndPicture(dpy DisplayHandle, ctx ContextID) Status

	// DeriveImage creates a zero-copy image view of a surface's current
	// content in its native format. Drivers that cannot derive the surface
	// return StatusErrorOperationFailed; that is an expected outcome, not
	// an exceptional one.
	DeriveImage(dpy DisplayHandle, surface SurfaceID) (ImageInfo, Status)

	// CreateImage allocates an independent image in the requested format.
	CreateImage(dpy DisplayHandle, format PixelFormat, width, height uint32) (ImageInfo, Status)

	// GetImage copies the given surface region into an image previously
	// allocated by CreateImage.
	GetImage(dpy DisplayHandle, surface SurfaceID, x, y, width, height uint32, image ImageID) Status

	// DestroyImage releases an image and its backing buffer.
	DestroyImage(dpy DisplayHandle, image ImageID) Status
}
