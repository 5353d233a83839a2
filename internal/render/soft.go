package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/matsen/hairball/internal/interaction"
)

// SoftBackend is the last-resort plotter. It draws flat circles and
// straight lines into a plain image buffer and never loads fonts or
// filters, so it keeps working when the richer backends cannot
// initialize.
type SoftBackend struct {
	width, height int
	img           *image.RGBA
	frame         *Frame
}

// NewSoftBackend returns an uninitialized software backend.
func NewSoftBackend() *SoftBackend {
	return &SoftBackend{}
}

// Name identifies the backend in chain diagnostics.
func (b *SoftBackend) Name() string { return "softcanvas" }

// Initialize allocates the image buffer.
func (b *SoftBackend) Initialize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("softcanvas: invalid dimensions %dx%d", width, height)
	}
	b.width, b.height = width, height
	b.img = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

// Render replaces the current frame and repaints.
func (b *SoftBackend) Render(f *Frame) error {
	if b.img == nil {
		return ErrNotInitialized
	}
	b.frame = f
	b.redraw()
	return nil
}

// UpdatePositions repaints with the frame's refreshed coordinates.
func (b *SoftBackend) UpdatePositions(f *Frame) error {
	return b.Render(f)
}

// Highlight applies an emphasis set to the last rendered frame.
func (b *SoftBackend) Highlight(h interaction.Highlight) error {
	if b.img == nil {
		return ErrNotInitialized
	}
	if b.frame == nil {
		return nil
	}
	b.frame.Highlight = h
	b.redraw()
	return nil
}

// Resize reallocates the buffer and repaints.
func (b *SoftBackend) Resize(width, height int) error {
	if b.img == nil {
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

// Clear drops the frame and blanks the buffer.
func (b *SoftBackend) Clear() error {
	if b.img == nil {
		return ErrNotInitialized
	}
	b.frame = nil
	draw.Draw(b.img, b.img.Bounds(), image.NewUniform(color.RGBA{}), image.Point{}, draw.Src)
	return nil
}

// Export encodes the buffer. Only the "png" format is supported.
func (b *SoftBackend) Export(w io.Writer, format string) error {
	if b.img == nil {
		return ErrNotInitialized
	}
	if format != "" && format != "png" {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return png.Encode(w, b.img)
}

// Image returns the backing image.
func (b *SoftBackend) Image() image.Image { return b.img }

func (b *SoftBackend) redraw() {
	f := b.frame
	draw.Draw(b.img, b.img.Bounds(), image.NewUniform(f.Theme.Background), image.Point{}, draw.Src)

	// The buffer has no compositing, so translucency is approximated by
	// blending toward the background.
	edge := blend(opaque(f.Theme.Edge), f.Theme.Background, float64(f.Theme.Edge.A)/255)
	dimmedEdge := blend(edge, f.Theme.Background, dimEdgeOpacity)
	for _, l := range f.Links {
		c := edge
		if f.edgeDimmed(l.Key) {
			c = dimmedEdge
		}
		b.line(l.X1, l.Y1, l.X2, l.Y2, c)
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
			c = blend(c, f.Theme.Background, dimNodeOpacity)
		}
		b.disc(n.X, n.Y, r, c)
	}
}

// line plots with a fixed-step walk; edges here are decoration, not
// geometry, so aliasing is acceptable.
func (b *SoftBackend) line(x1, y1, x2, y2 float64, c color.RGBA) {
	steps := int(math.Hypot(x2-x1, y2-y1))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		b.set(int(x1+t*(x2-x1)), int(y1+t*(y2-y1)), c)
	}
}

func (b *SoftBackend) disc(cx, cy, r float64, c color.RGBA) {
	x0, x1 := int(cx-r), int(cx+r)
	y0, y1 := int(cy-r), int(cy+r)
	r2 := r * r
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			if dx*dx+dy*dy <= r2 {
				b.set(x, y, c)
			}
		}
	}
}

func (b *SoftBackend) set(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return
	}
	b.img.SetRGBA(x, y, c)
}

// blend mixes c toward bg by t, with t=1 giving c.
func blend(c, bg color.RGBA, t float64) color.RGBA {
	mix := func(a, b uint8) uint8 {
		return uint8(float64(b) + t*(float64(a)-float64(b)))
	}
	return color.RGBA{mix(c.R, bg.R), mix(c.G, bg.G), mix(c.B, bg.B), 0xff}
}

func opaque(c color.RGBA) color.RGBA {
	c.A = 0xff
	return c
}
