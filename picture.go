// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: BSD-3-Clause

package libva

import "errors"

// ErrPictureConsumed is returned when a transition is attempted on a picture
// handle that has already been consumed by a previous transition.
var ErrPictureConsumed = errors.New("libva: picture handle already consumed")

// A picture only holds valid pixel data after a fixed sequence of protocol
// calls has completed in order: vaBeginPicture, vaRenderPicture,
// vaEndPicture, vaSyncSurface. Each state of that protocol is a distinct
// exported type with exactly one transition method, so an out-of-order or
// repeated call does not compile:
//
//	Picture          --Begin()-->  PictureBegun
//	PictureBegun     --Render()--> PictureRendering
//	PictureRendering --End()-->    PictureEnded
//	PictureEnded     --Sync()-->   PictureSynced
//
// The state set is closed: the conversion constructors are private and no
// external package can add a state or an edge.
//
// The underlying surface can be reclaimed only in Picture and PictureSynced:
// either nothing has touched it yet, or the hardware has confirmed
// completion. Those two states implement ReclaimablePicture.
//
// Each successful transition consumes its receiver and returns the handle
// for the next state. A consumed handle is detached; further transitions on
// it return ErrPictureConsumed. Failed Begin/Render/End calls also consume
// the receiver and release its resources, since the hardware leaves no safely
// resumable intermediate state for them. Sync is the exception: it is
// retryable, so on failure the receiver remains valid and untouched.

// pictureInner is the record shared by all typed handles of one render
// sequence. Exactly one typed handle refers to it at a time.
type pictureInner struct {
	// timestamp identifies the picture. Opaque to the library.
	timestamp uint64

	// context is the execution context render calls are issued under.
	// Shared read-only.
	context *Context

	// buffers holds the data submitted by Render, in submission order.
	// Exclusively owned; frozen after the first transition.
	buffers []*Buffer

	// surface is the render target. Possibly shared with sibling pictures
	// in interlaced decoding; see Surface.
	surface *Surface
}

// dispose releases everything the record owns: the buffers are destroyed
// and the surface reference is dropped.
func (in *pictureInner) dispose() {
	in.destroyBuffers()
	in.surface.release()
}

// destroyBuffers destroys the owned buffer list. Release errors are not
// actionable by callers mid-teardown, so they are logged and swallowed.
func (in *pictureInner) destroyBuffers() {
	for _, b := range in.buffers {
		if err := b.Destroy(); err != nil {
			Logger().Warn("libva: buffer release failed", "buffer", b.ID(), "err", err)
		}
	}
	in.buffers = nil
}

// picture is the common part embedded by every state type.
type picture struct {
	inner *pictureInner
}

// Timestamp returns the timestamp of this picture.
func (p *picture) Timestamp() uint64 {
	return p.inner.timestamp
}

// Surface returns the underlying render target surface.
func (p *picture) Surface() *Surface {
	return p.inner.surface
}

// Context returns the execution context this picture renders under.
func (p *picture) Context() *Context {
	return p.inner.context
}

// display returns the display the picture's context lives on.
func (p *picture) display() *Display {
	return p.inner.context.display
}

// take detaches the inner record, consuming the handle. Returns nil if the
// handle was already consumed.
func (p *picture) take() *pictureInner {
	in := p.inner
	p.inner = nil
	return in
}

// Close releases the picture's resources without completing the protocol:
// owned buffers are destroyed and the surface reference is dropped. If this
// was the last reference, the surface becomes reclaimable, so closing an
// in-flight picture hands responsibility for hardware completion
// back to the caller.
//
// Close is idempotent; it is a no-op on a consumed handle.
func (p *picture) Close() error {
	in := p.take()
	if in == nil {
		return nil
	}
	in.dispose()
	return nil
}

// takeSurface attempts to reclaim exclusive ownership of the surface.
// Fails without side effects when siblings still reference it.
func (p *picture) takeSurface() (*Surface, bool) {
	in := p.inner
	if in == nil {
		return nil, false
	}
	if !in.surface.releaseExclusive() {
		return nil, false
	}
	p.inner = nil
	in.destroyBuffers()
	return in.surface, true
}

// ReclaimablePicture is a picture whose surface is guaranteed stable: either
// no render sequence has started (Picture) or the sequence has completed and
// been confirmed (PictureSynced). Only these two states allow reclaiming the
// surface or deriving new pictures from it.
//
// The interface is sealed; only *Picture and *PictureSynced implement it.
type ReclaimablePicture interface {
	// Timestamp returns the timestamp of the picture.
	Timestamp() uint64

	// Surface returns the underlying surface.
	Surface() *Surface

	// TakeSurface reclaims exclusive ownership of the surface, consuming
	// the picture. It fails, leaving the picture untouched and still owned
	// by the caller, when sibling pictures still reference the surface.
	TakeSurface() (*Surface, bool)

	// reclaimable seals the interface and exposes the shared record to
	// NewPictureFromSameSurface.
	reclaimable() *pictureInner
}

// Compile-time checks that exactly the reclaimable states satisfy the
// interface.
var (
	_ ReclaimablePicture = (*Picture)(nil)
	_ ReclaimablePicture = (*PictureSynced)(nil)
)

// Picture is a render sequence that has not started: the initial protocol
// state. Buffers may be added, and the surface may still be reclaimed.
//
// Pictures are not safe for concurrent use; drive each instance from a
// single goroutine.
type Picture struct {
	picture
}

// NewPicture creates a Picture targeting surface, identified by timestamp.
// The picture takes a reference on the surface; reclaim it with TakeSurface
// or release it with Close.
//
// The timestamp is opaque to the library and only identifies the picture.
func NewPicture(timestamp uint64, ctx *Context, surface *Surface) *Picture {
	surface.retain()
	return &Picture{picture{inner: &pictureInner{
		timestamp: timestamp,
		context:   ctx,
		surface:   surface,
	}}}
}

// NewPictureFromSameSurface creates a Picture sharing the surface and
// context of source, incrementing the surface reference count by one. This
// is how the second field of an interlaced frame renders into the same
// frame buffer as the first.
//
// The source must be reclaimable (nothing in flight on the shared surface
// when the new sequence starts); the type system enforces that. The library
// does not serialize the two render sequences against the shared surface:
// submission ordering is the caller's responsibility, completion safety is
// the hardware queue's.
//
// Panics if source has already been consumed.
func NewPictureFromSameSurface(timestamp uint64, source ReclaimablePicture) *Picture {
	in := source.reclaimable()
	if in == nil {
		panic("libva: NewPictureFromSameSurface on a consumed picture")
	}
	in.surface.retain()
	return &Picture{picture{inner: &pictureInner{
		timestamp: timestamp,
		context:   in.context,
		surface:   in.surface,
	}}}
}

// AddBuffer appends buffer to the picture's submission list, taking
// ownership of it. Buffers can only be added before the first transition;
// the list is frozen once Begin is called.
func (p *Picture) AddBuffer(b *Buffer) error {
	if p.inner == nil {
		return ErrPictureConsumed
	}
	p.inner.buffers = append(p.inner.buffers, b)
	return nil
}

// Begin issues vaBeginPicture, starting the render sequence.
// On success the picture is consumed and the Begun handle is returned.
// On failure the picture is consumed and its resources are released; a
// failed begin is not a half-open resource.
func (p *Picture) Begin() (*PictureBegun, error) {
	in := p.take()
	if in == nil {
		return nil, ErrPictureConsumed
	}
	d := in.context.display
	st := d.driver.BeginPicture(d.handle, in.context.id, in.surface.id)
	if err := checkStatus("vaBeginPicture", st); err != nil {
		in.dispose()
		return nil, err
	}
	return &PictureBegun{picture{inner: in}}, nil
}

// TakeSurface reclaims exclusive ownership of the surface, consuming the
// picture and destroying its buffers. Useful when the surface is part of a
// pool.
//
// It fails, returning false and leaving the picture unchanged and still
// owned by the caller, when sibling pictures still reference the surface;
// retry after they complete or close.
func (p *Picture) TakeSurface() (*Surface, bool) {
	return p.takeSurface()
}

func (p *Picture) reclaimable() *pictureInner {
	return p.inner
}

// PictureBegun is a render sequence after vaBeginPicture: the hardware is
// ready to accept the buffer submission.
type PictureBegun struct {
	picture
}

// Render issues vaRenderPicture, submitting the entire buffer list in order
// in a single call.
// On success the handle is consumed and the Rendering handle is returned.
// On failure the handle is consumed and its resources are released.
func (p *PictureBegun) Render() (*PictureRendering, error) {
	in := p.take()
	if in == nil {
		return nil, ErrPictureConsumed
	}
	d := in.context.display
	st := d.driver.RenderPicture(d.handle, in.context.id, bufferIDs(in.buffers))
	if err := checkStatus("vaRenderPicture", st); err != nil {
		in.dispose()
		return nil, err
	}
	return &PictureRendering{picture{inner: in}}, nil
}

// PictureRendering is a render sequence after vaRenderPicture: the buffers
// have been submitted and the sequence awaits its end marker.
type PictureRendering struct {
	picture
}

// End issues vaEndPicture, signalling submission completion.
// On success the handle is consumed and the Ended handle is returned.
// On failure the handle is consumed and its resources are released.
func (p *PictureRendering) End() (*PictureEnded, error) {
	in := p.take()
	if in == nil {
		return nil, ErrPictureConsumed
	}
	d := in.context.display
	st := d.driver.EndPicture(d.handle, in.context.id)
	if err := checkStatus("vaEndPicture", st); err != nil {
		in.dispose()
		return nil, err
	}
	return &PictureEnded{picture{inner: in}}, nil
}

// PictureEnded is a render sequence after vaEndPicture: submitted in full,
// awaiting hardware completion.
type PictureEnded struct {
	picture
}

// Sync blocks until the hardware confirms completion on the surface.
//
// Unlike the earlier transitions, Sync does not consume the receiver on
// failure: synchronization is idempotent, so the handle remains valid with
// its timestamp, buffers, context and surface intact, and the caller may
// retry, inspect, or Close it.
func (p *PictureEnded) Sync() (*PictureSynced, error) {
	if p.inner == nil {
		return nil, ErrPictureConsumed
	}
	if err := p.inner.surface.Sync(); err != nil {
		return nil, err
	}
	in := p.take()
	return &PictureSynced{picture{inner: in}}, nil
}

// PictureSynced is a completed render sequence: the hardware has confirmed
// completion, the surface holds valid pixel data, and images may be derived
// or copied from it. The surface is reclaimable again.
type PictureSynced struct {
	picture
}

// TakeSurface reclaims exclusive ownership of the surface, consuming the
// picture and destroying its buffers. Useful when the surface is part of a
// pool.
//
// It fails, returning false and leaving the picture unchanged and still
// owned by the caller, when sibling pictures still reference the surface;
// retry after they complete or close.
func (p *PictureSynced) TakeSurface() (*Surface, bool) {
	return p.takeSurface()
}

func (p *PictureSynced) reclaimable() *pictureInner {
	return p.inner
}
