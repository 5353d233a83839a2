package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/matsen/hairball/internal/interaction"
)

// Chain tries backends in order until one initializes, then delegates
// every call to it. An exhausted chain reports ErrNoBackend and draws
// nothing.
type Chain struct {
	backends []Backend
	active   Backend
}

// NewChain builds a fallback chain from primary through fallbacks.
func NewChain(primary Backend, fallbacks ...Backend) *Chain {
	return &Chain{backends: append([]Backend{primary}, fallbacks...)}
}

// vectorElementLimit is the scene size above which ChainFor prefers the
// raster backend over per-element vector output.
const vectorElementLimit = 1000

// ChainFor picks a fallback order for a scene of the given element count:
// vector first for small scenes, raster first for bulk scenes, softcanvas
// always last.
func ChainFor(elements int) *Chain {
	if elements <= vectorElementLimit {
		return NewChain(NewVectorBackend(), NewRasterBackend(), NewSoftBackend())
	}
	return NewChain(NewRasterBackend(), NewSoftBackend())
}

// Name reports the active backend, or "none" before initialization.
func (c *Chain) Name() string {
	if c.active == nil {
		return "none"
	}
	return c.active.Name()
}

// Active returns the backend that won initialization, or nil.
func (c *Chain) Active() Backend { return c.active }

// Initialize walks the chain until a backend accepts the dimensions.
func (c *Chain) Initialize(width, height int) error {
	var failures []string
	for _, b := range c.backends {
		if err := b.Initialize(width, height); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", b.Name(), err))
			continue
		}
		c.active = b
		return nil
	}
	c.active = nil
	return fmt.Errorf("%w: %s", ErrNoBackend, strings.Join(failures, "; "))
}

// Render delegates to the active backend.
func (c *Chain) Render(f *Frame) error {
	if c.active == nil {
		return ErrNoBackend
	}
	return c.active.Render(f)
}

// UpdatePositions delegates to the active backend.
func (c *Chain) UpdatePositions(f *Frame) error {
	if c.active == nil {
		return ErrNoBackend
	}
	return c.active.UpdatePositions(f)
}

// Highlight delegates to the active backend.
func (c *Chain) Highlight(h interaction.Highlight) error {
	if c.active == nil {
		return ErrNoBackend
	}
	return c.active.Highlight(h)
}

// Resize delegates to the active backend.
func (c *Chain) Resize(width, height int) error {
	if c.active == nil {
		return ErrNoBackend
	}
	return c.active.Resize(width, height)
}

// Clear delegates to the active backend.
func (c *Chain) Clear() error {
	if c.active == nil {
		return ErrNoBackend
	}
	return c.active.Clear()
}

// Export delegates to the active backend when it can encode itself.
func (c *Chain) Export(w io.Writer, format string) error {
	if c.active == nil {
		return ErrNoBackend
	}
	exp, ok := c.active.(Exporter)
	if !ok {
		return fmt.Errorf("%w: %s cannot export", ErrUnsupportedFormat, c.active.Name())
	}
	return exp.Export(w, format)
}
