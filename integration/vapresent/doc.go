// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: MIT

// Package vapresent displays decoded video frames through a gogpu rendering
// context.
//
// The package bridges the gap between a synced picture's Image and a GPU
// texture: frame pixels are converted to RGBA on the CPU, uploaded through
// the host's gpucontext.TextureCreator, and drawn with the host's
// gpucontext.TextureDrawer. The host application owns the GPU device; this
// package never creates one.
//
// Usage:
//
//	p, err := vapresent.New(app.GPUContextProvider())
//	defer p.Close()
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    img, _ := synced.DeriveImage(libva.Resolution{Width: 1920, Height: 1080})
//	    defer img.Destroy()
//	    p.Present(dc.AsTextureDrawer(), img)
//	})
package vapresent
