// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: BSD-3-Clause

package libva

// Buffer is an opaque, owned unit of command or data submitted to the
// hardware as part of a render sequence.
//
// A Buffer is exclusively owned: first by its creator, then by the Picture
// it is added to, which destroys it on Close or consumption. Buffers are
// never shared between Pictures.
type Buffer struct {
	display *Display
	id      BufferID
	btype   BufferType
}

// ID returns the native buffer id.
func (b *Buffer) ID() BufferID {
	return b.id
}

// Type returns the buffer type supplied at creation.
func (b *Buffer) Type() BufferType {
	return b.btype
}

// Map exposes the buffer contents for CPU access.
// The returned slice is valid until Unmap.
func (b *Buffer) Map() ([]byte, error) {
	data, st := b.display.driver.MapBuffer(b.display.handle, b.id)
	if err := checkStatus("vaMapBuffer", st); err != nil {
		return nil, err
	}
	return data, nil
}

// Unmap ends CPU access started by Map.
func (b *Buffer) Unmap() error {
	return checkStatus("vaUnmapBuffer", b.display.driver.UnmapBuffer(b.display.handle, b.id))
}

// Destroy releases the buffer.
// Destroy is idempotent; multiple calls are safe. Buffers owned by a
// Picture are destroyed by the Picture; do not destroy them directly.
func (b *Buffer) Destroy() error {
	if b.id == invalidID {
		return nil
	}
	st := b.display.driver.DestroyBuffer(b.display.handle, b.id)
	b.id = invalidID
	return checkStatus("vaDestroyBuffer", st)
}

// bufferIDs collects the native ids of bufs in submission order.
func bufferIDs(bufs []*Buffer) []BufferID {
	ids := make([]BufferID, len(bufs))
	for i, b := range bufs {
		ids[i] = b.id
	}
	return ids
}
