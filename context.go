// Copyright 2026 The cros-libva Authors
// SPDX-License-Identifier: BSD-3-Clause

package libva

// Context is an execution context: the handle under which render sequences
// are issued to the hardware.
//
// A Context is shared read-only by the Pictures created on it; it exposes no
// mutation surface. It must outlive those Pictures.
type Context struct {
	display *Display
	id      ContextID
	width   uint32
	height  uint32
}

// ID returns the native context id.
func (c *Context) ID() ContextID {
	return c.id
}

// Display returns the display this context was created on.
func (c *Context) Display() *Display {
	return c.display
}

// Width returns the coded width the context was created for.
func (c *Context) Width() uint32 {
	return c.width
}

// Height returns the coded height the context was created for.
func (c *Context) Height() uint32 {
	return c.height
}

// CreateBuffer allocates a buffer of the given type on this context,
// holding a copy of data. The buffer contents are opaque to the library.
func (c *Context) CreateBuffer(btype BufferType, data []byte) (*Buffer, error) {
	id, st := c.display.driver.CreateBuffer(c.display.handle, c.id, btype, data)
	if err := checkStatus("vaCreateBuffer", st); err != nil {
		return nil, err
	}
	return &Buffer{display: c.display, id: id, btype: btype}, nil
}

// Destroy releases the context.
// Destroy is idempotent; multiple calls are safe.
func (c *Context) Destroy() error {
	if c.id == invalidID {
		return nil
	}
	st := c.display.driver.DestroyContext(c.display.handle, c.id)
	c.id = invalidID
	return checkStatus("vaDestroyContext", st)
}
