// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: BSD-3-Clause

package libva

import (
	"log/slog"
	"sync"
)

// DriverSoftware is the name of the built-in software driver.
const DriverSoftware = "software"

func init() {
	RegisterDriver(DriverSoftware, 10, func() Driver { return newSoftwareDriver() }, nil)
}

// softwareDriver is a pure-Go Driver that emulates the hardware protocol in
// memory. Surfaces are byte planes, "rendering" copies slice-data buffers
// into the target surface, and the protocol ordering is checked per context
// so misuse surfaces as a status code instead of corrupted state.
//
// It is the registry fallback when no hardware driver is available, and the
// vehicle for the library's own tests.
type softwareDriver struct {
	mu       sync.Mutex
	logger   *slog.Logger
	nextDpy  DisplayHandle
	displays map[DisplayHandle]*swDisplay

	// Test hooks. A non-zero status is consumed by the next matching call.
	failNextSync Status
	failNextGet  Status
	noDerive     bool

	// callLog records successful protocol calls in order.
	callLog []string
}

// ctxState tracks the per-context protocol position.
type ctxState uint8

const (
	ctxIdle ctxState = iota
	ctxBegun
)

type swDisplay struct {
	nextID   uint32
	configs  map[ConfigID]struct{}
	surfaces map[SurfaceID]*swSurface
	contexts map[ContextID]*swContext
	buffers  map[BufferID]*swBuffer
	images   map[ImageID]*swImage
}

type swSurface struct {
	info ImageInfo // layout of the backing store; ID field unused
	data []byte
}

type swContext struct {
	state   ctxState
	target  SurfaceID
	pending []BufferID
}

type swBuffer struct {
	btype BufferType
	data  []byte
}

type swImage struct {
	info ImageInfo
	// derived image data aliases the source surface's backing store.
	derived bool
}

func newSoftwareDriver() *softwareDriver {
	return &softwareDriver{
		logger:   newNopLogger(),
		displays: make(map[DisplayHandle]*swDisplay),
	}
}

// Name implements Driver.
func (d *softwareDriver) Name() string { return DriverSoftware }

// SetLogger implements the loggerSetter used by Open.
func (d *softwareDriver) SetLogger(l *slog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = l
}

func (d *softwareDriver) Open() (DisplayHandle, Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextDpy++
	h := d.nextDpy
	d.displays[h] = &swDisplay{
		configs:  make(map[ConfigID]struct{}),
		surfaces: make(map[SurfaceID]*swSurface),
		contexts: make(map[ContextID]*swContext),
		buffers:  make(map[BufferID]*swBuffer),
		images:   make(map[ImageID]*swImage),
	}
	return h, StatusSuccess
}

func (d *softwareDriver) CloseDisplay(dpy DisplayHandle) Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.displays[dpy]; !ok {
		return StatusErrorInvalidDisplay
	}
	delete(d.displays, dpy)
	return StatusSuccess
}

func (d *softwareDriver) QueryImageFormats(dpy DisplayHandle) ([]PixelFormat, Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.displays[dpy]; !ok {
		return nil, StatusErrorInvalidDisplay
	}
	return []PixelFormat{PixelFormatNV12, PixelFormatI420, PixelFormatRGBA, PixelFormatBGRA}, StatusSuccess
}

func (d *softwareDriver) CreateConfig(dpy DisplayHandle, profile Profile, entrypoint Entrypoint) (ConfigID, Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return invalidID, StatusErrorInvalidDisplay
	}
	disp.nextID++
	id := ConfigID(disp.nextID)
	disp.configs[id] = struct{}{}
	return id, StatusSuccess
}

func (d *softwareDriver) DestroyConfig(dpy DisplayHandle, cfg ConfigID) Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return StatusErrorInvalidDisplay
	}
	if _, ok := disp.configs[cfg]; !ok {
		return StatusErrorInvalidConfig
	}
	delete(disp.configs, cfg)
	return StatusSuccess
}

func (d *softwareDriver) CreateSurfaces(dpy DisplayHandle, format RTFormat, width, height, count uint32) ([]SurfaceID, Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return nil, StatusErrorInvalidDisplay
	}
	if width == 0 || height == 0 || count == 0 {
		return nil, StatusErrorInvalidParameter
	}

	var fourcc PixelFormat
	switch format {
	case RTFormatYUV420:
		fourcc = PixelFormatNV12
	case RTFormatRGB32:
		fourcc = PixelFormatRGBA
	default:
		return nil, StatusErrorUnsupportedRTFormat
	}

	ids := make([]SurfaceID, count)
	for i := range ids {
		disp.nextID++
		id := SurfaceID(disp.nextID)
		info := imageLayout(fourcc, width, height)
		disp.surfaces[id] = &swSurface{info: info, data: make([]byte, info.DataSize)}
		ids[i] = id
	}
	return ids, StatusSuccess
}

func (d *softwareDriver) DestroySurfaces(dpy DisplayHandle, ids []SurfaceID) Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return StatusErrorInvalidDisplay
	}
	for _, id := range ids {
		if _, ok := disp.surfaces[id]; !ok {
			return StatusErrorInvalidSurface
		}
	}
	for _, id := range ids {
		delete(disp.surfaces, id)
	}
	return StatusSuccess
}

func (d *softwareDriver) SyncSurface(dpy DisplayHandle, id SurfaceID) Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return StatusErrorInvalidDisplay
	}
	if _, ok := disp.surfaces[id]; !ok {
		return StatusErrorInvalidSurface
	}
	if st := d.failNextSync; st != StatusSuccess {
		d.failNextSync = StatusSuccess
		return st
	}
	// All work completed synchronously at EndPicture; nothing to wait for.
	d.callLog = append(d.callLog, "sync")
	return StatusSuccess
}

func (d *softwareDriver) CreateContext(dpy DisplayHandle, cfg ConfigID, width, height uint32, targets []SurfaceID) (ContextID, Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return invalidID, StatusErrorInvalidDisplay
	}
	if _, ok := disp.configs[cfg]; !ok {
		return invalidID, StatusErrorInvalidConfig
	}
	for _, t := range targets {
		if _, ok := disp.surfaces[t]; !ok {
			return invalidID, StatusErrorInvalidSurface
		}
	}
	disp.nextID++
	id := ContextID(disp.nextID)
	disp.contexts[id] = &swContext{}
	return id, StatusSuccess
}

func (d *softwareDriver) DestroyContext(dpy DisplayHandle, ctx ContextID) Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return StatusErrorInvalidDisplay
	}
	if _, ok := disp.contexts[ctx]; !ok {
		return StatusErrorInvalidContext
	}
	delete(disp.contexts, ctx)
	return StatusSuccess
}

func (d *softwareDriver) CreateBuffer(dpy DisplayHandle, ctx ContextID, btype BufferType, data []byte) (BufferID, Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return invalidID, StatusErrorInvalidDisplay
	}
	if _, ok := disp.contexts[ctx]; !ok {
		return invalidID, StatusErrorInvalidContext
	}
	disp.nextID++
	id := BufferID(disp.nextID)
	disp.buffers[id] = &swBuffer{btype: btype, data: append([]byte(nil), data...)}
	return id, StatusSuccess
}

func (d *softwareDriver) DestroyBuffer(dpy DisplayHandle, buf BufferID) Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return StatusErrorInvalidDisplay
	}
	if _, ok := disp.buffers[buf]; !ok {
		return StatusErrorInvalidBuffer
	}
	delete(disp.buffers, buf)
	return StatusSuccess
}

func (d *softwareDriver) MapBuffer(dpy DisplayHandle, buf BufferID) ([]byte, Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return nil, StatusErrorInvalidDisplay
	}
	b, ok := disp.buffers[buf]
	if !ok {
		return nil, StatusErrorInvalidBuffer
	}
	return b.data, StatusSuccess
}

func (d *softwareDriver) UnmapBuffer(dpy DisplayHandle, buf BufferID) Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return StatusErrorInvalidDisplay
	}
	if _, ok := disp.buffers[buf]; !ok {
		return StatusErrorInvalidBuffer
	}
	return StatusSuccess
}

func (d *softwareDriver) BeginPicture(dpy DisplayHandle, ctx ContextID, target SurfaceID) Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return StatusErrorInvalidDisplay
	}
	c, ok := disp.contexts[ctx]
	if !ok {
		return StatusErrorInvalidContext
	}
	if _, ok := disp.surfaces[target]; !ok {
		return StatusErrorInvalidSurface
	}
	if c.state != ctxIdle {
		return StatusErrorOperationFailed
	}
	c.state = ctxBegun
	c.target = target
	c.pending = c.pending[:0]
	d.callLog = append(d.callLog, "begin")
	return StatusSuccess
}

func (d *softwareDriver) RenderPicture(dpy DisplayHandle, ctx ContextID, buffers []BufferID) Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return StatusErrorInvalidDisplay
	}
	c, ok := disp.contexts[ctx]
	if !ok {
		return StatusErrorInvalidContext
	}
	if c.state != ctxBegun {
		return StatusErrorOperationFailed
	}
	for _, id := range buffers {
		if _, ok := disp.buffers[id]; !ok {
			return StatusErrorInvalidBuffer
		}
	}
	c.pending = append(c.pending, buffers...)
	d.callLog = append(d.callLog, "render")
	return StatusSuccess
}

func (d *softwareDriver) EndPicture(dpy DisplayHandle, ctx ContextID) Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return StatusErrorInvalidDisplay
	}
	c, ok := disp.contexts[ctx]
	if !ok {
		return StatusErrorInvalidContext
	}
	if c.state != ctxBegun {
		return StatusErrorOperationFailed
	}

	// "Execute" the sequence: slice-data buffer contents fill the target
	// surface in submission order. Parameter buffers carry no pixel data
	// and are ignored.
	surf := disp.surfaces[c.target]
	off := 0
	for _, id := range c.pending {
		b := disp.buffers[id]
		if b.btype != BufferTypeSliceData {
			continue
		}
		off += copy(surf.data[off:], b.data)
	}

	c.state = ctxIdle
	c.pending = nil
	d.callLog = append(d.callLog, "end")
	d.logger.Debug("software: picture executed", "context", ctx, "target", c.target, "bytes", off)
	return StatusSuccess
}

func (d *softwareDriver) DeriveImage(dpy DisplayHandle, surface SurfaceID) (ImageInfo, Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return ImageInfo{}, StatusErrorInvalidDisplay
	}
	surf, ok := disp.surfaces[surface]
	if !ok {
		return ImageInfo{}, StatusErrorInvalidSurface
	}
	if d.noDerive {
		return ImageInfo{}, StatusErrorOperationFailed
	}

	// Zero-copy view: the image's backing buffer aliases the surface data.
	disp.nextID++
	bufID := BufferID(disp.nextID)
	disp.buffers[bufID] = &swBuffer{btype: BufferTypeImage, data: surf.data}

	disp.nextID++
	info := surf.info
	info.ID = ImageID(disp.nextID)
	info.Buf = bufID
	disp.images[info.ID] = &swImage{info: info, derived: true}
	return info, StatusSuccess
}

func (d *softwareDriver) CreateImage(dpy DisplayHandle, format PixelFormat, width, height uint32) (ImageInfo, Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return ImageInfo{}, StatusErrorInvalidDisplay
	}
	switch format {
	case PixelFormatNV12, PixelFormatI420, PixelFormatRGBA, PixelFormatBGRA:
	default:
		return ImageInfo{}, StatusErrorInvalidImageFormat
	}
	if width == 0 || height == 0 {
		return ImageInfo{}, StatusErrorInvalidParameter
	}

	info := imageLayout(format, width, height)

	disp.nextID++
	bufID := BufferID(disp.nextID)
	disp.buffers[bufID] = &swBuffer{btype: BufferTypeImage, data: make([]byte, info.DataSize)}

	disp.nextID++
	info.ID = ImageID(disp.nextID)
	info.Buf = bufID
	disp.images[info.ID] = &swImage{info: info}
	return info, StatusSuccess
}

func (d *softwareDriver) GetImage(dpy DisplayHandle, surface SurfaceID, x, y, width, height uint32, image ImageID) Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return StatusErrorInvalidDisplay
	}
	surf, ok := disp.surfaces[surface]
	if !ok {
		return StatusErrorInvalidSurface
	}
	img, ok := disp.images[image]
	if !ok {
		return StatusErrorInvalidImage
	}
	if st := d.failNextGet; st != StatusSuccess {
		d.failNextGet = StatusSuccess
		return st
	}
	if x != 0 || y != 0 || width != surf.info.Width || height != surf.info.Height {
		return StatusErrorInvalidParameter
	}
	if img.info.Format != surf.info.Format {
		return StatusErrorInvalidImageFormat
	}
	copy(disp.buffers[img.info.Buf].data, surf.data)
	return StatusSuccess
}

func (d *softwareDriver) DestroyImage(dpy DisplayHandle, image ImageID) Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return StatusErrorInvalidDisplay
	}
	img, ok := disp.images[image]
	if !ok {
		return StatusErrorInvalidImage
	}
	delete(disp.buffers, img.info.Buf)
	delete(disp.images, image)
	return StatusSuccess
}

// liveImages reports the number of image resources currently allocated
// across all displays. Used by tests to assert leak-free failure paths.
func (d *softwareDriver) liveImages() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, disp := range d.displays {
		n += len(disp.images)
	}
	return n
}

// liveBuffers reports the number of buffers currently allocated across all
// displays, including image backing buffers.
func (d *softwareDriver) liveBuffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, disp := range d.displays {
		n += len(disp.buffers)
	}
	return n
}

// calls returns the protocol calls successfully executed so far, in order.
func (d *softwareDriver) calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.callLog...)
}

// surfaceData returns a copy of a surface's backing store.
func (d *softwareDriver) surfaceData(dpy DisplayHandle, id SurfaceID) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	disp, ok := d.displays[dpy]
	if !ok {
		return nil
	}
	surf, ok := disp.surfaces[id]
	if !ok {
		return nil
	}
	return append([]byte(nil), surf.data...)
}

// imageLayout computes the plane layout for a format at the given coded
// size. Rows are tightly packed; the layout matches what hardware drivers
// report via their image descriptors, minus alignment padding.
func imageLayout(format PixelFormat, width, height uint32) ImageInfo {
	info := ImageInfo{Format: format, Width: width, Height: height}
	cw := (width + 1) / 2
	ch := (height + 1) / 2

	switch format {
	case PixelFormatNV12:
		info.NumPlanes = 2
		info.Pitches = [maxImagePlanes]uint32{width, 2 * cw}
		info.Offsets = [maxImagePlanes]uint32{0, width * height}
		info.DataSize = width*height + 2*cw*ch
	case PixelFormatI420:
		info.NumPlanes = 3
		info.Pitches = [maxImagePlanes]uint32{width, cw, cw}
		info.Offsets = [maxImagePlanes]uint32{0, width * height, width*height + cw*ch}
		info.DataSize = width*height + 2*cw*ch
	default: // RGBA, BGRA
		info.NumPlanes = 1
		info.Pitches = [maxImagePlanes]uint32{4 * width}
		info.DataSize = 4 * width * height
	}
	return info
}
