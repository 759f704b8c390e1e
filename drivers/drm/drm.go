// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: MIT

//go:build linux && cgo && !novadrm

package drm

/*
#cgo pkg-config: libva libva-drm

#include <stdlib.h>
#include <va/va.h>
#include <va/va_drm.h>
*/
import "C"

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	libva "github.com/rosetta-jpn/cros-libva"
)

// Name is the identifier the driver registers under.
const Name = "drm"

// renderNodes are the device paths probed in order. 128 is the first
// render node minor; systems with multiple GPUs expose consecutive ones.
var renderNodes = []string{
	"/dev/dri/renderD128",
	"/dev/dri/renderD129",
	"/dev/dri/renderD130",
	"/dev/dri/renderD131",
}

func init() {
	libva.RegisterDriver(Name, 100, func() libva.Driver { return newDriver() }, Available)
}

// Available reports whether a DRM render node can be opened for
// read/write access.
func Available() bool {
	return renderNodePath() != ""
}

func renderNodePath() string {
	for _, path := range renderNodes {
		if err := unix.Access(path, unix.R_OK|unix.W_OK); err == nil {
			return path
		}
	}
	return ""
}

// drmDisplay tracks the native state behind one display handle.
type drmDisplay struct {
	va C.VADisplay
	fd int

	// bufSizes records the byte size of every live buffer so MapBuffer
	// can bound the returned slice. Image-backing buffers are entered by
	// DeriveImage/CreateImage and removed through imageBufs on
	// DestroyImage.
	bufSizes  map[libva.BufferID]uint32
	imageBufs map[libva.ImageID]libva.BufferID
}

type driver struct {
	mu       sync.Mutex
	logger   *slog.Logger
	displays map[libva.DisplayHandle]*drmDisplay
}

func newDriver() *driver {
	return &driver{
		logger:   slog.New(slog.DiscardHandler),
		displays: make(map[libva.DisplayHandle]*drmDisplay),
	}
}

func (d *driver) Name() string { return Name }

// SetLogger installs the library logger. Called by the display layer on
// Open.
func (d *driver) SetLogger(l *slog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = l
}

func (d *driver) Open() (libva.DisplayHandle, libva.Status) {
	path := renderNodePath()
	if path == "" {
		return 0, libva.StatusErrorInvalidDisplay
	}
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return 0, libva.StatusErrorInvalidDisplay
	}

	va := C.vaGetDisplayDRM(C.int(fd))
	if va == nil {
		_ = unix.Close(fd)
		return 0, libva.StatusErrorInvalidDisplay
	}

	var major, minor C.int
	if st := C.vaInitialize(va, &major, &minor); st != C.VA_STATUS_SUCCESS {
		_ = unix.Close(fd)
		return 0, libva.Status(uint32(st))
	}

	handle := libva.DisplayHandle(uintptr(unsafe.Pointer(va)))

	d.mu.Lock()
	d.displays[handle] = &drmDisplay{
		va:        va,
		fd:        fd,
		bufSizes:  make(map[libva.BufferID]uint32),
		imageBufs: make(map[libva.ImageID]libva.BufferID),
	}
	logger := d.logger
	d.mu.Unlock()

	logger.Info("libva display initialized",
		"driver", Name,
		"node", path,
		"version", fmt.Sprintf("%d.%d", int(major), int(minor)))
	return handle, libva.StatusSuccess
}

func (d *driver) display(dpy libva.DisplayHandle) (*drmDisplay, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	return disp, ok
}

func (d *driver) CloseDisplay(dpy libva.DisplayHandle) libva.Status {
	d.mu.Lock()
	disp, ok := d.displays[dpy]
	delete(d.displays, dpy)
	d.mu.Unlock()
	if !ok {
		return libva.StatusErrorInvalidDisplay
	}
	st := C.vaTerminate(disp.va)
	_ = unix.Close(disp.fd)
	return libva.Status(uint32(st))
}

func (d *driver) QueryImageFormats(dpy libva.DisplayHandle) ([]libva.PixelFormat, libva.Status) {
	disp, ok := d.display(dpy)
	if !ok {
		return nil, libva.StatusErrorInvalidDisplay
	}
	max := int(C.vaMaxNumImageFormats(disp.va))
	if max == 0 {
		return nil, libva.StatusSuccess
	}
	formats := make([]C.VAImageFormat, max)
	var count C.int
	if st := C.vaQueryImageFormats(disp.va, &formats[0], &count); st != C.VA_STATUS_SUCCESS {
		return nil, libva.Status(uint32(st))
	}
	out := make([]libva.PixelFormat, 0, int(count))
	for _, f := range formats[:count] {
		out = append(out, libva.PixelFormat(f.fourcc))
	}
	return out, libva.StatusSuccess
}

func (d *driver) CreateConfig(dpy libva.DisplayHandle, profile libva.Profile, entrypoint libva.Entrypoint) (libva.ConfigID, libva.Status) {
	disp, ok := d.display(dpy)
	if !ok {
		return 0, libva.StatusErrorInvalidDisplay
	}
	var id C.VAConfigID
	st := C.vaCreateConfig(disp.va, C.VAProfile(profile), C.VAEntrypoint(entrypoint), nil, 0, &id)
	return libva.ConfigID(id), libva.Status(uint32(st))
}

func (d *driver) DestroyConfig(dpy libva.DisplayHandle, cfg libva.ConfigID) libva.Status {
	disp, ok := d.display(dpy)
	if !ok {
		return libva.StatusErrorInvalidDisplay
	}
	return libva.Status(uint32(C.vaDestroyConfig(disp.va, C.VAConfigID(cfg))))
}

func (d *driver) CreateSurfaces(dpy libva.DisplayHandle, format libva.RTFormat, width, height, count uint32) ([]libva.SurfaceID, libva.Status) {
	disp, ok := d.display(dpy)
	if !ok {
		return nil, libva.StatusErrorInvalidDisplay
	}
	ids := make([]C.VASurfaceID, count)
	st := C.vaCreateSurfaces(disp.va, C.uint(format), C.uint(width), C.uint(height),
		&ids[0], C.uint(count), nil, 0)
	if st != C.VA_STATUS_SUCCESS {
		return nil, libva.Status(uint32(st))
	}
	out := make([]libva.SurfaceID, count)
	for i, id := range ids {
		out[i] = libva.SurfaceID(id)
	}
	return out, libva.StatusSuccess
}

func (d *driver) DestroySurfaces(dpy libva.DisplayHandle, ids []libva.SurfaceID) libva.Status {
	disp, ok := d.display(dpy)
	if !ok {
		return libva.StatusErrorInvalidDisplay
	}
	if len(ids) == 0 {
		return libva.StatusSuccess
	}
	native := make([]C.VASurfaceID, len(ids))
	for i, id := range ids {
		native[i] = C.VASurfaceID(id)
	}
	return libva.Status(uint32(C.vaDestroySurfaces(disp.va, &native[0], C.int(len(native)))))
}

func (d *driver) SyncSurface(dpy libva.DisplayHandle, id libva.SurfaceID) libva.Status {
	disp, ok := d.display(dpy)
	if !ok {
		return libva.StatusErrorInvalidDisplay
	}
	return libva.Status(uint32(C.vaSyncSurface(disp.va, C.VASurfaceID(id))))
}

func (d *driver) CreateContext(dpy libva.DisplayHandle, cfg libva.ConfigID, width, height uint32, targets []libva.SurfaceID) (libva.ContextID, libva.Status) {
	disp, ok := d.display(dpy)
	if !ok {
		return 0, libva.StatusErrorInvalidDisplay
	}
	var native []C.VASurfaceID
	var nativePtr *C.VASurfaceID
	if len(targets) > 0 {
		native = make([]C.VASurfaceID, len(targets))
		for i, id := range targets {
			native[i] = C.VASurfaceID(id)
		}
		nativePtr = &native[0]
	}
	var id C.VAContextID
	st := C.vaCreateContext(disp.va, C.VAConfigID(cfg), C.int(width), C.int(height),
		C.VA_PROGRESSIVE, nativePtr, C.int(len(targets)), &id)
	return libva.ContextID(id), libva.Status(uint32(st))
}

func (d *driver) DestroyContext(dpy libva.DisplayHandle, ctx libva.ContextID) libva.Status {
	disp, ok := d.display(dpy)
	if !ok {
		return libva.StatusErrorInvalidDisplay
	}
	return libva.Status(uint32(C.vaDestroyContext(disp.va, C.VAContextID(ctx))))
}

func (d *driver) CreateBuffer(dpy libva.DisplayHandle, ctx libva.ContextID, btype libva.BufferType, data []byte) (libva.BufferID, libva.Status) {
	disp, ok := d.display(dpy)
	if !ok {
		return 0, libva.StatusErrorInvalidDisplay
	}
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = unsafe.Pointer(&data[0])
	}
	var id C.VABufferID
	st := C.vaCreateBuffer(disp.va, C.VAContextID(ctx), C.VABufferType(btype),
		C.uint(len(data)), 1, ptr, &id)
	if st != C.VA_STATUS_SUCCESS {
		return 0, libva.Status(uint32(st))
	}
	d.mu.Lock()
	disp.bufSizes[libva.BufferID(id)] = uint32(len(data))
	d.mu.Unlock()
	return libva.BufferID(id), libva.StatusSuccess
}

func (d *driver) DestroyBuffer(dpy libva.DisplayHandle, buf libva.BufferID) libva.Status {
	disp, ok := d.display(dpy)
	if !ok {
		return libva.StatusErrorInvalidDisplay
	}
	st := C.vaDestroyBuffer(disp.va, C.VABufferID(buf))
	d.mu.Lock()
	delete(disp.bufSizes, buf)
	d.mu.Unlock()
	return libva.Status(uint32(st))
}

func (d *driver) MapBuffer(dpy libva.DisplayHandle, buf libva.BufferID) ([]byte, libva.Status) {
	disp, ok := d.display(dpy)
	if !ok {
		return nil, libva.StatusErrorInvalidDisplay
	}
	d.mu.Lock()
	size, known := disp.bufSizes[buf]
	d.mu.Unlock()
	if !known {
		return nil, libva.StatusErrorInvalidBuffer
	}
	var ptr unsafe.Pointer
	if st := C.vaMapBuffer(disp.va, C.VABufferID(buf), &ptr); st != C.VA_STATUS_SUCCESS {
		return nil, libva.Status(uint32(st))
	}
	if size == 0 {
		return nil, libva.StatusSuccess
	}
	return unsafe.Slice((*byte)(ptr), size), libva.StatusSuccess
}

func (d *driver) UnmapBuffer(dpy libva.DisplayHandle, buf libva.BufferID) libva.Status {
	disp, ok := d.display(dpy)
	if !ok {
		return libva.StatusErrorInvalidDisplay
	}
	return libva.Status(uint32(C.vaUnmapBuffer(disp.va, C.VABufferID(buf))))
}

func (d *driver) BeginPicture(dpy libva.DisplayHandle, ctx libva.ContextID, target libva.SurfaceID) libva.Status {
	disp, ok := d.display(dpy)
	if !ok {
		return libva.StatusErrorInvalidDisplay
	}
	return libva.Status(uint32(C.vaBeginPicture(disp.va, C.VAContextID(ctx), C.VASurfaceID(target))))
}

func (d *driver) RenderPicture(dpy libva.DisplayHandle, ctx libva.ContextID, buffers []libva.BufferID) libva.Status {
	disp, ok := d.display(dpy)
	if !ok {
		return libva.StatusErrorInvalidDisplay
	}
	var native []C.VABufferID
	var nativePtr *C.VABufferID
	if len(buffers) > 0 {
		native = make([]C.VABufferID, len(buffers))
		for i, id := range buffers {
			native[i] = C.VABufferID(id)
		}
		nativePtr = &native[0]
	}
	return libva.Status(uint32(C.vaRenderPicture(disp.va, C.VAContextID(ctx), nativePtr, C.int(len(buffers)))))
}

func (d *driver) EndPicture(dpy libva.DisplayHandle, ctx libva.ContextID) libva.Status {
	disp, ok := d.display(dpy)
	if !ok {
		return libva.StatusErrorInvalidDisplay
	}
	return libva.Status(uint32(C.vaEndPicture(disp.va, C.VAContextID(ctx))))
}

func (d *driver) DeriveImage(dpy libva.DisplayHandle, surface libva.SurfaceID) (libva.ImageInfo, libva.Status) {
	disp, ok := d.display(dpy)
	if !ok {
		return libva.ImageInfo{}, libva.StatusErrorInvalidDisplay
	}
	var image C.VAImage
	if st := C.vaDeriveImage(disp.va, C.VASurfaceID(surface), &image); st != C.VA_STATUS_SUCCESS {
		return libva.ImageInfo{}, libva.Status(uint32(st))
	}
	return d.adoptImage(disp, &image), libva.StatusSuccess
}

func (d *driver) CreateImage(dpy libva.DisplayHandle, format libva.PixelFormat, width, height uint32) (libva.ImageInfo, libva.Status) {
	disp, ok := d.display(dpy)
	if !ok {
		return libva.ImageInfo{}, libva.StatusErrorInvalidDisplay
	}
	native := C.VAImageFormat{
		fourcc:         C.uint(format),
		byte_order:     C.VA_LSB_FIRST,
		bits_per_pixel: C.uint(bitsPerPixel(format)),
	}
	var image C.VAImage
	if st := C.vaCreateImage(disp.va, &native, C.int(width), C.int(height), &image); st != C.VA_STATUS_SUCCESS {
		return libva.ImageInfo{}, libva.Status(uint32(st))
	}
	return d.adoptImage(disp, &image), libva.StatusSuccess
}

// adoptImage converts a native image descriptor and records its backing
// buffer so MapBuffer can size the mapping.
func (d *driver) adoptImage(disp *drmDisplay, image *C.VAImage) libva.ImageInfo {
	info := libva.ImageInfo{
		ID:        libva.ImageID(image.image_id),
		Buf:       libva.BufferID(image.buf),
		Format:    libva.PixelFormat(image.format.fourcc),
		Width:     uint32(image.width),
		Height:    uint32(image.height),
		NumPlanes: uint32(image.num_planes),
		DataSize:  uint32(image.data_size),
	}
	for i := 0; i < len(info.Pitches) && i < int(info.NumPlanes); i++ {
		info.Pitches[i] = uint32(image.pitches[i])
		info.Offsets[i] = uint32(image.offsets[i])
	}
	d.mu.Lock()
	disp.bufSizes[info.Buf] = info.DataSize
	disp.imageBufs[info.ID] = info.Buf
	d.mu.Unlock()
	return info
}

// bitsPerPixel returns the nominal bit depth the native image format
// descriptor expects for a fourcc.
func bitsPerPixel(format libva.PixelFormat) uint32 {
	switch format {
	case libva.PixelFormatNV12, libva.PixelFormatI420:
		return 12
	default:
		return 32
	}
}

func (d *driver) GetImage(dpy libva.DisplayHandle, surface libva.SurfaceID, x, y, width, height uint32, image libva.ImageID) libva.Status {
	disp, ok := d.display(dpy)
	if !ok {
		return libva.StatusErrorInvalidDisplay
	}
	return libva.Status(uint32(C.vaGetImage(disp.va, C.VASurfaceID(surface),
		C.int(x), C.int(y), C.uint(width), C.uint(height), C.VAImageID(image))))
}

func (d *driver) DestroyImage(dpy libva.DisplayHandle, image libva.ImageID) libva.Status {
	disp, ok := d.display(dpy)
	if !ok {
		return libva.StatusErrorInvalidDisplay
	}
	st := C.vaDestroyImage(disp.va, C.VAImageID(image))
	d.mu.Lock()
	if buf, ok := disp.imageBufs[image]; ok {
		delete(disp.bufSizes, buf)
		delete(disp.imageBufs, image)
	}
	d.mu.Unlock()
	return libva.Status(uint32(st))
}
