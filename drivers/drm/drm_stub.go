// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: MIT

//go:build !linux || !cgo || novadrm

package drm

import (
	libva "github.com/rosetta-jpn/cros-libva"
)

// Name is the identifier the driver registers under.
const Name = "drm"

func init() {
	libva.RegisterDriver(Name, 100, func() libva.Driver { return stubDriver{} }, Available)
}

// Available always reports false: DRM render nodes require Linux and the
// native bindings require cgo.
func Available() bool { return false }

// stubDriver satisfies the driver interface on platforms without native
// libva. Selecting it by name yields a driver-unavailable error before any
// method is reached; the methods exist only to complete the interface.
type stubDriver struct{}

func (stubDriver) Name() string { return Name }

func (stubDriver) Open() (libva.DisplayHandle, libva.Status) {
	return 0, libva.StatusErrorInvalidDisplay
}

func (stubDriver) CloseDisplay(libva.DisplayHandle) libva.Status {
	return libva.StatusErrorInvalidDisplay
}

func (stubDriver) QueryImageFormats(libva.DisplayHandle) ([]libva.PixelFormat, libva.Status) {
	return nil, libva.StatusErrorInvalidDisplay
}

func (stubDriver) CreateConfig(libva.DisplayHandle, libva.Profile, libva.Entrypoint) (libva.ConfigID, libva.Status) {
	return 0, libva.StatusErrorInvalidDisplay
}

func (stubDriver) DestroyConfig(libva.DisplayHandle, libva.ConfigID) libva.Status {
	return libva.StatusErrorInvalidDisplay
}

func (stubDriver) CreateSurfaces(libva.DisplayHandle, libva.RTFormat, uint32, uint32, uint32) ([]libva.SurfaceID, libva.Status) {
	return nil, libva.StatusErrorInvalidDisplay
}

func (stubDriver) DestroySurfaces(libva.DisplayHandle, []libva.SurfaceID) libva.Status {
	return libva.StatusErrorInvalidDisplay
}

func (stubDriver) SyncSurface(libva.DisplayHandle, libva.SurfaceID) libva.Status {
	return libva.StatusErrorInvalidDisplay
}

func (stubDriver) CreateContext(libva.DisplayHandle, libva.ConfigID, uint32, uint32, []libva.SurfaceID) (libva.ContextID, libva.Status) {
	return 0, libva.StatusErrorInvalidDisplay
}

func (stubDriver) DestroyContext(libva.DisplayHandle, libva.ContextID) libva.Status {
	return libva.StatusErrorInvalidDisplay
}

func (stubDriver) CreateBuffer(libva.DisplayHandle, libva.ContextID, libva.BufferType, []byte) (libva.BufferID, libva.Status) {
	return 0, libva.StatusErrorInvalidDisplay
}

func (stubDriver) DestroyBuffer(libva.DisplayHandle, libva.BufferID) libva.Status {
	return libva.StatusErrorInvalidDisplay
}

func (stubDriver) MapBuffer(libva.DisplayHandle, libva.BufferID) ([]byte, libva.Status) {
	return nil, libva.StatusErrorInvalidDisplay
}

func (stubDriver) UnmapBuffer(libva.DisplayHandle, libva.BufferID) libva.Status {
	return libva.StatusErrorInvalidDisplay
}

func (stubDriver) BeginPicture(libva.DisplayHandle, libva.ContextID, libva.SurfaceID) libva.Status {
	return libva.StatusErrorInvalidDisplay
}

func (stubDriver) RenderPicture(libva.DisplayHandle, libva.ContextID, []libva.BufferID) libva.Status {
	return libva.StatusErrorInvalidDisplay
}

func (stubDriver) EndPicture(libva.DisplayHandle, libva.ContextID) libva.Status {
	return libva.StatusErrorInvalidDisplay
}

func (stubDriver) DeriveImage(libva.DisplayHandle, libva.SurfaceID) (libva.ImageInfo, libva.Status) {
	return libva.ImageInfo{}, libva.StatusErrorInvalidDisplay
}

func (stubDriver) CreateImage(libva.DisplayHandle, libva.PixelFormat, uint32, uint32) (libva.ImageInfo, libva.Status) {
	return libva.ImageInfo{}, libva.StatusErrorInvalidDisplay
}

func (stubDriver) GetImage(libva.DisplayHandle, libva.SurfaceID, uint32, uint32, uint32, uint32, libva.ImageID) libva.Status {
	return libva.StatusErrorInvalidDisplay
}

func (stubDriver) DestroyImage(libva.DisplayHandle, libva.ImageID) libva.Status {
	return libva.StatusErrorInvalidDisplay
}
