package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/matsen/hairball/internal/interaction"
	"github.com/matsen/hairball/internal/style"
)

// VectorBackend renders scenes as SVG documents. Every element carries an
// id and label metadata, which keeps it the most precise backend for
// scenes up to roughly a thousand elements.
type VectorBackend struct {
	width, height int
	initialized   bool
	frame         *Frame
	buf           bytes.Buffer
}

// NewVectorBackend returns an uninitialized SVG backend.
func NewVectorBackend() *VectorBackend {
	return &VectorBackend{}
}

// Name identifies the backend in chain diagnostics.
func (b *VectorBackend) Name() string { return "vector" }

// Initialize sets the document size.
func (b *VectorBackend) Initialize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("vector: invalid dimensions %dx%d", width, height)
	}
	b.width, b.height = width, height
	b.initialized = true
	return nil
}

// Render replaces the current frame and redraws the document.
func (b *VectorBackend) Render(f *Frame) error {
	if !b.initialized {
		return ErrNotInitialized
	}
	b.frame = f
	b.redraw()
	return nil
}

// UpdatePositions redraws with the frame's refreshed coordinates.
func (b *VectorBackend) UpdatePositions(f *Frame) error {
	return b.Render(f)
}

// Highlight applies an emphasis set to the last rendered frame.
func (b *VectorBackend) Highlight(h interaction.Highlight) error {
	if !b.initialized {
		return ErrNotInitialized
	}
	if b.frame == nil {
		return nil
	}
	b.frame.Highlight = h
	b.redraw()
	return nil
}

// Resize changes the document size and redraws.
func (b *VectorBackend) Resize(width, height int) error {
	if !b.initialized {
		return ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("vector: invalid dimensions %dx%d", width, height)
	}
	b.width, b.height = width, height
	if b.frame != nil {
		b.frame.Width, b.frame.Height = width, height
		b.redraw()
	}
	return nil
}

// Clear drops the frame and empties the document.
func (b *VectorBackend) Clear() error {
	if !b.initialized {
		return ErrNotInitialized
	}
	b.frame = nil
	b.buf.Reset()
	return nil
}

// Export writes the current SVG document. Only the "svg" format is
// supported.
func (b *VectorBackend) Export(w io.Writer, format string) error {
	if !b.initialized {
		return ErrNotInitialized
	}
	if format != "" && format != "svg" {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	_, err := w.Write(b.buf.Bytes())
	return err
}

// Bytes returns the current SVG document.
func (b *VectorBackend) Bytes() []byte { return b.buf.Bytes() }

func (b *VectorBackend) redraw() {
	b.buf.Reset()
	f := b.frame
	if f == nil {
		return
	}
	canvas := svg.New(&b.buf)
	canvas.Start(b.width, b.height)
	canvas.Rect(0, 0, b.width, b.height, "fill:"+style.Hex(f.Theme.Background))

	edgeColor := style.Hex(f.Theme.Edge)
	for _, l := range f.Links {
		width := 1.0 + 0.5*math.Log1p(l.Weight)
		opacity := 0.55
		if f.LOD {
			width = 0.6
		}
		if f.edgeDimmed(l.Key) {
			opacity = dimEdgeOpacity
		} else if f.Highlight.Active {
			width += 1
			opacity = 0.9
		}
		canvas.Path(bezierPath(l.X1, l.Y1, l.X2, l.Y2),
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.1f;stroke-opacity:%.2f", edgeColor, width, opacity))
	}

	accent := style.Hex(f.Theme.Accent)
	for _, n := range f.Nodes {
		fill := fmt.Sprintf("fill:%s", n.Color)
		if f.nodeDimmed(n.ID) {
			fill += fmt.Sprintf(";fill-opacity:%.2f", dimNodeOpacity)
		}
		if f.LOD {
			canvas.Circle(round(n.X), round(n.Y), radiusPx(n.Radius, true), fill)
			continue
		}
		canvas.Gid("node-" + elementID(n.ID))
		if f.nodeFocused(n.ID) {
			canvas.Circle(round(n.X), round(n.Y), radiusPx(n.Radius, false)+4,
				fmt.Sprintf("fill:%s;fill-opacity:0.3", accent))
		}
		canvas.Circle(round(n.X), round(n.Y), radiusPx(n.Radius, false), fill,
			`data-label="`+xmlEscape(n.Label)+`"`)
		if n.Label != "" && !f.nodeDimmed(n.ID) {
			canvas.Text(round(n.X), round(n.Y+n.Radius+12), n.Label,
				fmt.Sprintf("fill:%s;font-size:10px;font-family:system-ui,sans-serif;text-anchor:middle", style.Hex(f.Theme.Text)))
		}
		canvas.Gend()
	}
	canvas.End()
}

func bezierPath(x1, y1, x2, y2 float64) string {
	dx, dy := x2-x1, y2-y1
	dist := math.Hypot(dx, dy)
	mx, my := (x1+x2)/2, (y1+y2)/2
	if dist > 0 {
		mx += -dy / dist * dist * 0.15
		my += dx / dist * dist * 0.15
	}
	return fmt.Sprintf("M%.1f,%.1f Q%.1f,%.1f %.1f,%.1f", x1, y1, mx, my, x2, y2)
}

func radiusPx(r float64, lod bool) int {
	if lod {
		r *= 0.5
	}
	if r < 1 {
		r = 1
	}
	return int(math.Round(r))
}

func round(v float64) int {
	return int(math.Round(v))
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}

// elementID restricts ids to characters safe inside an XML id attribute.
func elementID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
