package resource

import (
	"io"

	"github.com/sasha-s/go-deadlock"
)

type closeableResource struct {
	mu          deadlock.RWMutex
	underlying  io.Closer
	closed      bool
	description string
}

func (c *closeableResource) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *closeableResource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if c.underlying != nil {
		if err := c.underlying.Close(); err != nil {
			return err
		}
	}
	c.closed = true
	c.underlying = nil
	return nil
}

func (c *closeableResource) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.description
}

// NewCloseableResource returns a closeable resource wrapping the underlying closer.
func NewCloseableResource(underlying io.Closer, description string) ICloseableResource {
	return &closeableResource{
		underlying:  underlying,
		description: description,
	}
}

type nonCloseableResource struct{}

func (c *nonCloseableResource) Close() error { return nil }

func (c *nonCloseableResource) String() string { return "non closeable resource" }

func (c *nonCloseableResource) IsClosed() bool { return false }

// NewNonCloseableResource returns a resource which cannot be released.
func NewNonCloseableResource() ICloseableResource {
	return &nonCloseableResource{}
}
