package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"git.sr.ht/~sbinet/gg"

	"github.com/matsen/hairball/internal/interaction"
)

// maxRasterPixels bounds the pixel buffer the raster backend will
// allocate. Larger surfaces fail Initialize so a chain can fall back.
const maxRasterPixels = 64 << 20

// RasterBackend renders scenes onto a pixel canvas. Interaction metadata
// is coarser than the vector backend's but it stays fast into the
// thousands of elements.
type RasterBackend struct {
	width, height int
	dc            *gg.Context
	frame         *Frame
}

// NewRasterBackend returns an uninitialized raster backend.
func NewRasterBackend() *RasterBackend {
	return &RasterBackend{}
}

// Name identifies the backend in chain diagnostics.
func (b *RasterBackend) Name() string { return "raster" }

// Initialize allocates the pixel canvas. It fails on non-positive
// dimensions or when the surface would exceed the pixel budget.
func (b *RasterBackend) Initialize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("raster: invalid dimensions %dx%d", width, height)
	}
	if width*height > maxRasterPixels {
		return fmt.Errorf("raster: %dx%d exceeds pixel budget", width, height)
	}
	b.width, b.height = width, height
	b.dc = gg.NewContext(width, height)
	return nil
}

// Render replaces the current frame and repaints the canvas.
func (b *RasterBackend) Render(f *Frame) error {
	if b.dc == nil {
		return ErrNotInitialized
	}
	b.frame = f
	b.redraw()
	return nil
}

// UpdatePositions repaints with the frame's refreshed coordinates.
func (b *RasterBackend) UpdatePositions(f *Frame) error {
	return b.Render(f)
}

// Highlight applies an emphasis set to the last rendered frame.
func (b *RasterBackend) Highlight(h interaction.Highlight) error {
	if b.dc == nil {
		return ErrNotInitialized
	}
	if b.frame == nil {
		return nil
	}
	b.frame.Highlight = h
	b.redraw()
	return nil
}

// Resize reallocates the canvas and repaints.
func (b *RasterBackend) Resize(width, height int) error {
	if b.dc == nil {
		return ErrNotInitialized
	}
	if err := b.Initialize(width, height); err != nil {
		return err
	}
	if b.frame != nil {
		b.frame.Width, b.frame.Height = width, height
		b.redraw()
	}
	return nil
}

// Clear drops the frame and blanks the canvas.
func (b *RasterBackend) Clear() error {
	if b.dc == nil {
		return ErrNotInitialized
	}
	b.frame = nil
	b.dc.SetRGB(0, 0, 0)
	b.dc.Clear()
	return nil
}

// Export encodes the canvas. Only the "png" format is supported.
func (b *RasterBackend) Export(w io.Writer, format string) error {
	if b.dc == nil {
		return ErrNotInitialized
	}
	if format != "" && format != "png" {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return png.Encode(w, b.dc.Image())
}

// Image returns the backing canvas image.
func (b *RasterBackend) Image() image.Image {
	if b.dc == nil {
		return nil
	}
	return b.dc.Image()
}

func (b *RasterBackend) redraw() {
	f := b.frame
	dc := b.dc
	dc.SetColor(f.Theme.Background)
	dc.Clear()

	for _, l := range f.Links {
		width := 1.0 + 0.5*math.Log1p(l.Weight)
		c := f.Theme.Edge
		if f.LOD {
			width = 0.6
		}
		if f.edgeDimmed(l.Key) {
			c = withAlpha(c, dimEdgeOpacity)
		} else if f.Highlight.Active {
			width += 1
		}
		dc.SetColor(c)
		dc.SetLineWidth(width)
		drawBezier(dc, l.X1, l.Y1, l.X2, l.Y2)
		dc.Stroke()
	}

	for _, n := range f.Nodes {
		r := n.Radius
		if f.LOD {
			r *= 0.5
		}
		if r < 1 {
			r = 1
		}
		c := parseHex(n.Color)
		if f.nodeDimmed(n.ID) {
			c = withAlpha(c, dimNodeOpacity)
		} else if f.nodeFocused(n.ID) {
			dc.SetColor(withAlpha(f.Theme.Accent, 0.3))
			dc.DrawCircle(n.X, n.Y, r+4)
			dc.Fill()
		}
		dc.SetColor(c)
		dc.DrawCircle(n.X, n.Y, r)
		dc.Fill()
		if !f.LOD && n.Label != "" && !f.nodeDimmed(n.ID) {
			dc.SetColor(f.Theme.Text)
			dc.DrawStringAnchored(n.Label, n.X, n.Y+r+10, 0.5, 0.5)
		}
	}
}

func drawBezier(dc *gg.Context, x1, y1, x2, y2 float64) {
	dx, dy := x2-x1, y2-y1
	dist := math.Hypot(dx, dy)
	mx, my := (x1+x2)/2, (y1+y2)/2
	if dist > 0 {
		mx += -dy / dist * dist * 0.15
		my += dx / dist * dist * 0.15
	}
	dc.MoveTo(x1, y1)
	dc.QuadraticTo(mx, my, x2, y2)
}
