// Package render draws positioned graphs through pluggable backends and
// schedules scene updates across frames.
package render

import (
	"errors"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/matsen/hairball/internal/graph"
	"github.com/matsen/hairball/internal/interaction"
	"github.com/matsen/hairball/internal/style"
)

var (
	// ErrNoBackend is returned when every backend in a chain failed to
	// initialize, or when drawing is attempted on an exhausted chain.
	ErrNoBackend = errors.New("render: no backend available")
	// ErrNotInitialized is returned when a backend is used before
	// Initialize succeeded.
	ErrNotInitialized = errors.New("render: backend not initialized")
	// ErrUnsupportedFormat is returned by Export for formats the backend
	// cannot encode.
	ErrUnsupportedFormat = errors.New("render: unsupported export format")
)

// Element is one positioned, styled node ready to draw, in pixel
// coordinates.
type Element struct {
	ID     string
	Label  string
	X, Y   float64
	Radius float64
	Color  string // css hex
}

// Link is one drawable edge between two scene elements.
type Link struct {
	Key            graph.EdgeKey
	X1, Y1, X2, Y2 float64
	Weight         float64
}

// Frame is the full draw state handed to a backend. Backends treat frames
// as read-only; the engine rebuilds them per draw.
type Frame struct {
	Width, Height int
	Theme         style.Theme
	// LOD drops labels and per-element metadata and thins strokes for
	// large scenes.
	LOD       bool
	Nodes     []Element
	Links     []Link
	Highlight interaction.Highlight
}

// Backend is a draw surface. Initialize may fail, in which case a Chain
// moves on to the next backend.
type Backend interface {
	Name() string
	Initialize(width, height int) error
	Render(f *Frame) error
	UpdatePositions(f *Frame) error
	Highlight(h interaction.Highlight) error
	Resize(width, height int) error
	Clear() error
}

// Exporter is implemented by backends that can encode their surface to a
// writer. Formats are lowercase file extensions without the dot.
type Exporter interface {
	Export(w io.Writer, format string) error
}

// Opacity applied to elements outside an active highlight set.
const (
	dimNodeOpacity = 0.25
	dimEdgeOpacity = 0.2
)

func (f *Frame) nodeDimmed(id string) bool {
	if !f.Highlight.Active {
		return false
	}
	_, ok := f.Highlight.Nodes[id]
	return !ok
}

func (f *Frame) nodeFocused(id string) bool {
	return f.Highlight.Active && f.Highlight.FocusID == id
}

func (f *Frame) edgeDimmed(k graph.EdgeKey) bool {
	if !f.Highlight.Active {
		return false
	}
	_, ok := f.Highlight.Edges[k]
	return !ok
}

// parseHex turns a #rrggbb string into an opaque color. Unparseable input
// falls back to a neutral gray so a bad style never aborts a draw.
func parseHex(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{0x88, 0x88, 0x88, 0xff}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{0x88, 0x88, 0x88, 0xff}
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}

func withAlpha(c color.RGBA, a float64) color.RGBA {
	c.A = uint8(a * 255)
	return c
}
