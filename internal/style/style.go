// Package style maps graph attributes to node colors and sizes.
package style

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/matsen/hairball/internal/graph"
)

// ErrUnknownTheme is returned when a theme name has no definition.
var ErrUnknownTheme = errors.New("style: unknown theme")

// Theme and attribute names accepted by Options.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"

	AttrCitations = "citations"
	AttrDegree    = "degree"
)

const (
	defaultBaseSize  = 5.0
	defaultSizeScale = 16.0
)

// Theme is a named set of colors used for rendering.
type Theme struct {
	Name       string
	Background color.RGBA
	Edge       color.RGBA
	Text       color.RGBA
	Accent     color.RGBA
	Muted      color.RGBA
	// Stops are gradient stops for attribute-to-color mapping, low to high.
	Stops []color.RGBA
}

var darkTheme = Theme{
	Name:       ThemeDark,
	Background: color.RGBA{0x1e, 0x1e, 0x2e, 0xff}, // deep blue-gray
	Edge:       color.RGBA{0x6b, 0x80, 0xbf, 0x80}, // semi-transparent blue
	Text:       color.RGBA{0xf8, 0xf8, 0xf2, 0xff}, // off-white
	Accent:     color.RGBA{0xbd, 0x93, 0xf9, 0xff}, // purple
	Muted:      color.RGBA{0x62, 0x72, 0xa4, 0xff}, // purple-gray
	Stops: []color.RGBA{
		{0x8b, 0xe9, 0xfd, 0xff}, // cyan, coldest
		{0x50, 0xfa, 0x7b, 0xff}, // green
		{0xf1, 0xfa, 0x8c, 0xff}, // yellow
		{0xff, 0x79, 0xc6, 0xff}, // pink, hottest
	},
}

var lightTheme = Theme{
	Name:       ThemeLight,
	Background: color.RGBA{0xfa, 0xfa, 0xf5, 0xff}, // warm white
	Edge:       color.RGBA{0x90, 0xa0, 0xc0, 0x90}, // slate
	Text:       color.RGBA{0x28, 0x2a, 0x36, 0xff}, // near-black
	Accent:     color.RGBA{0x7c, 0x4d, 0xff, 0xff}, // violet
	Muted:      color.RGBA{0x9a, 0xa5, 0xb1, 0xff}, // gray
	Stops: []color.RGBA{
		{0x31, 0x74, 0xad, 0xff}, // blue, coldest
		{0x2a, 0x9d, 0x8f, 0xff}, // teal
		{0xe9, 0xc4, 0x6a, 0xff}, // amber
		{0xe7, 0x6f, 0x51, 0xff}, // burnt orange, hottest
	},
}

// ThemeByName returns the theme for name. The empty name selects the dark
// theme.
func ThemeByName(name string) (Theme, error) {
	switch name {
	case "", ThemeDark:
		return darkTheme, nil
	case ThemeLight:
		return lightTheme, nil
	}
	return Theme{}, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
}

// Options selects the attribute, theme and scaling used by the mappers.
//
// Attribute defaults per mapper: ColorsFor maps citation counts and falls
// back to degree when no node has citations; SizesFor maps degree. Setting
// Attribute overrides both.
type Options struct {
	Attribute string
	Theme     string
	// LogScale compresses heavy-tailed attribute ranges with log1p.
	LogScale  bool
	BaseSize  float64
	SizeScale float64
}

// DefaultOptions returns the mapper defaults: dark theme, base size 5,
// size scale 16.
func DefaultOptions() Options {
	return Options{
		Theme:     ThemeDark,
		BaseSize:  defaultBaseSize,
		SizeScale: defaultSizeScale,
	}
}

func (o Options) withDefaults() Options {
	if o.BaseSize <= 0 {
		o.BaseSize = defaultBaseSize
	}
	if o.SizeScale <= 0 {
		o.SizeScale = defaultSizeScale
	}
	return o
}

// ColorsFor maps each node to a CSS hex color by interpolating the theme's
// gradient stops over the selected attribute. Nodes at the attribute maximum
// get the last stop, nodes at zero the first.
func ColorsFor(nodes []graph.Node, opts Options) (map[string]string, error) {
	opts = opts.withDefaults()
	theme, err := ThemeByName(opts.Theme)
	if err != nil {
		return nil, err
	}
	colors := make(map[string]string, len(nodes))
	if len(nodes) == 0 {
		return colors, nil
	}

	attr := opts.Attribute
	if attr == "" {
		attr = AttrCitations
		if maxValue(nodes, nil, attr) == 0 {
			attr = AttrDegree
		}
	}
	max := maxValue(nodes, nil, attr)
	for _, n := range nodes {
		t := normalize(nodeValue(n, nil, attr), max, opts.LogScale)
		colors[n.ID] = Hex(sampleStops(theme.Stops, t))
	}
	return colors, nil
}

// SizesFor maps each node to a radius: BaseSize + normalized*SizeScale over
// the selected attribute (degree unless overridden).
func SizesFor(nodes []graph.Node, degrees graph.DegreeMap, opts Options) map[string]float64 {
	opts = opts.withDefaults()
	sizes := make(map[string]float64, len(nodes))
	if len(nodes) == 0 {
		return sizes
	}

	attr := opts.Attribute
	if attr == "" {
		attr = AttrDegree
	}
	max := maxValue(nodes, degrees, attr)
	for _, n := range nodes {
		t := normalize(nodeValue(n, degrees, attr), max, opts.LogScale)
		sizes[n.ID] = opts.BaseSize + t*opts.SizeScale
	}
	return sizes
}

func nodeValue(n graph.Node, degrees graph.DegreeMap, attr string) float64 {
	switch attr {
	case AttrDegree:
		if degrees != nil {
			return float64(degrees[n.ID])
		}
		return float64(n.Degree)
	default:
		return float64(n.Citations)
	}
}

func maxValue(nodes []graph.Node, degrees graph.DegreeMap, attr string) float64 {
	var max float64
	for _, n := range nodes {
		if v := nodeValue(n, degrees, attr); v > max {
			max = v
		}
	}
	return max
}

func normalize(v, max float64, logScale bool) float64 {
	if max <= 0 {
		return 0
	}
	if logScale {
		return math.Log1p(v) / math.Log1p(max)
	}
	return v / max
}

func sampleStops(stops []color.RGBA, t float64) color.RGBA {
	if len(stops) == 0 {
		return color.RGBA{A: 0xff}
	}
	if len(stops) == 1 || t <= 0 {
		return stops[0]
	}
	if t >= 1 {
		return stops[len(stops)-1]
	}
	seg := t * float64(len(stops)-1)
	i := int(seg)
	return lerpColor(stops[i], stops[i+1], seg-float64(i))
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(a.R) + t*(float64(b.R)-float64(a.R))),
		G: uint8(float64(a.G) + t*(float64(b.G)-float64(a.G))),
		B: uint8(float64(a.B) + t*(float64(b.B)-float64(a.B))),
		A: uint8(float64(a.A) + t*(float64(b.A)-float64(a.A))),
	}
}

// Hex renders a color as a #rrggbb CSS string, dropping alpha.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
