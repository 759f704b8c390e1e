// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: MIT

package vapresent

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"

	libva "github.com/rosetta-jpn/cros-libva"
)

// Common errors returned by Presenter operations.
var (
	// ErrPresenterClosed is returned when operations are attempted on a
	// closed presenter.
	ErrPresenterClosed = errors.New("vapresent: presenter is closed")

	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("vapresent: nil DeviceProvider")

	// ErrNilImage is returned when Present is called with a nil image.
	ErrNilImage = errors.New("vapresent: nil image")

	// ErrInvalidRenderer is returned when the draw context cannot supply
	// a gpucontext.TextureCreator.
	ErrInvalidRenderer = errors.New("vapresent: drawer has no gpucontext.TextureCreator")

	// ErrInvalidTexture is returned when the created texture does not
	// implement gpucontext.Texture.
	ErrInvalidTexture = errors.New("vapresent: texture does not implement gpucontext.Texture")
)

// textureDestroyer matches the Destroy signature of host GPU textures.
type textureDestroyer interface {
	Destroy()
}

// Presenter uploads decoded frames to a GPU texture and draws them.
// The texture is created lazily on first Present and reused across frames
// of the same dimensions; a resolution change recreates it.
//
// Presenter is NOT safe for concurrent use. Present from the draw
// goroutine only.
type Presenter struct {
	provider gpucontext.DeviceProvider
	texture  any // host texture, created through the TextureCreator
	width    int
	height   int
	closed   bool
}

// New creates a Presenter bound to the host application's GPU device.
// The provider should come from the windowing layer, for example
// gogpu.App.GPUContextProvider().
func New(provider gpucontext.DeviceProvider) (*Presenter, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	return &Presenter{provider: provider}, nil
}

// Provider returns the DeviceProvider the presenter was created with.
// Returns nil after Close.
func (p *Presenter) Provider() gpucontext.DeviceProvider {
	if p.closed {
		return nil
	}
	return p.provider
}

// Texture returns the current GPU texture, or nil before the first
// successful Present.
func (p *Presenter) Texture() any {
	return p.texture
}

// Size returns the dimensions of the last presented frame.
func (p *Presenter) Size() (width, height int) {
	return p.width, p.height
}

// Present converts img to RGBA, uploads it, and draws it at the origin.
// The dc parameter should be obtained from the host draw callback, for
// example gogpu.Context.AsTextureDrawer().
func (p *Presenter) Present(dc gpucontext.TextureDrawer, img *libva.Image) error {
	return p.PresentAt(dc, img, 0, 0)
}

// PresentAt is Present with an explicit draw position.
func (p *Presenter) PresentAt(dc gpucontext.TextureDrawer, img *libva.Image, x, y float32) error {
	if p.closed {
		return ErrPresenterClosed
	}
	if img == nil {
		return ErrNilImage
	}

	frame, err := img.RGBA()
	if err != nil {
		return fmt.Errorf("vapresent: frame conversion failed: %w", err)
	}
	bounds := frame.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	// A resolution change invalidates the texture. Destroy before
	// recreating so the host can recycle GPU memory.
	if p.texture != nil && (width != p.width || height != p.height) {
		if destroyer, ok := p.texture.(textureDestroyer); ok {
			destroyer.Destroy()
		}
		p.texture = nil
	}

	if p.texture == nil {
		creator := dc.TextureCreator()
		if creator == nil {
			return ErrInvalidRenderer
		}
		tex, err := creator.NewTextureFromRGBA(width, height, frame.Pix)
		if err != nil {
			return fmt.Errorf("vapresent: NewTextureFromRGBA failed: %w", err)
		}
		p.texture = tex
		p.width = width
		p.height = height
		libva.Logger().Debug("vapresent: texture created", "width", width, "height", height)
	} else if updater, ok := p.texture.(gpucontext.TextureUpdater); ok {
		if err := updater.UpdateData(frame.Pix); err != nil {
			return fmt.Errorf("vapresent: texture update failed: %w", err)
		}
	}

	gpuTex, ok := p.texture.(gpucontext.Texture)
	if !ok {
		return ErrInvalidTexture
	}
	return dc.DrawTexture(gpuTex, x, y)
}

// Close destroys the GPU texture and detaches the provider.
// Close is idempotent.
func (p *Presenter) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	if p.texture != nil {
		if destroyer, ok := p.texture.(textureDestroyer); ok {
			destroyer.Destroy()
		}
		p.texture = nil
	}
	p.provider = nil
	return nil
}
