package render

import (
	"io"
	"math"
	"sync"

	"github.com/matsen/hairball/internal/graph"
	"github.com/matsen/hairball/internal/interaction"
	"github.com/matsen/hairball/internal/layout"
	"github.com/matsen/hairball/internal/style"
)

// DefaultLODThreshold is the element count beyond which rendering drops
// labels and per-element metadata unless EngineOptions overrides it.
const DefaultLODThreshold = 2000

const (
	defaultWidth  = 960
	defaultHeight = 600
	// fitMargin keeps laid-out nodes away from the viewport border.
	fitMargin = 40.0
	// defaultRadius is used when a node has no mapped size.
	defaultRadius = 5.0

	defaultChunkSize      = 250
	defaultBatchThreshold = 1000
)

// Styles carries the per-node visual attributes for a render pass.
type Styles struct {
	Colors map[string]string
	Sizes  map[string]float64
}

// Reconciliation reports what one Render pass did to the scene.
type Reconciliation struct {
	NodesEntered, NodesUpdated, NodesExited int
	EdgesEntered, EdgesUpdated, EdgesExited int
	// Chunks is how many frame callbacks the attribute refresh was
	// split into; zero means it ran inline.
	Chunks int
}

// EngineOptions tunes viewport and batching. Zero values select defaults.
type EngineOptions struct {
	Width, Height int
	Theme         style.Theme
	// ChunkSize is the number of elements refreshed per frame callback
	// once BatchThreshold is exceeded.
	ChunkSize      int
	BatchThreshold int
	// LODThreshold is the element count beyond which labels and
	// per-element metadata are dropped.
	LODThreshold int
}

type sceneNode struct {
	label  string
	x, y   float64
	radius float64
	color  string
}

// Engine owns the reconciled scene and pushes frames into a backend.
// Scene mutation is cooperative: oversized attribute refreshes are
// partitioned into chunks executed on scheduler frames, so a large graph
// never stalls the caller inside Render.
type Engine struct {
	mu      sync.Mutex
	backend Backend
	sched   Scheduler
	opts    EngineOptions

	nodes     map[string]*sceneNode
	nodeOrder []string
	links     map[graph.EdgeKey]*graph.Edge
	linkOrder []graph.EdgeKey

	styles    Styles
	highlight interaction.Highlight
	paused    bool
	dirty     bool
	last      Reconciliation
	drawErr   error
}

// NewEngine wires a backend and scheduler into an engine and initializes
// the backend at the configured size.
func NewEngine(backend Backend, sched Scheduler, opts EngineOptions) (*Engine, error) {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.Theme.Name == "" {
		opts.Theme, _ = style.ThemeByName("")
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.BatchThreshold <= 0 {
		opts.BatchThreshold = defaultBatchThreshold
	}
	if opts.LODThreshold <= 0 {
		opts.LODThreshold = DefaultLODThreshold
	}
	if err := backend.Initialize(opts.Width, opts.Height); err != nil {
		return nil, err
	}
	return &Engine{
		backend: backend,
		sched:   sched,
		opts:    opts,
		nodes:   make(map[string]*sceneNode),
		links:   make(map[graph.EdgeKey]*graph.Edge),
	}, nil
}

// Render reconciles the scene against the given arrays: new elements
// enter, vanished elements exit, survivors have their attributes
// refreshed. Refreshes beyond the batch threshold run chunked on the
// scheduler instead of inline.
func (e *Engine) Render(nodes []graph.Node, edges []graph.Edge, st Styles) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.styles = st
	rec := Reconciliation{}

	seen := make(map[string]struct{}, len(nodes))
	order := make([]string, 0, len(nodes))
	var survivors []string
	for _, n := range nodes {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		order = append(order, n.ID)
		if sn, ok := e.nodes[n.ID]; ok {
			sn.label = n.Label
			survivors = append(survivors, n.ID)
			rec.NodesUpdated++
			continue
		}
		sn := &sceneNode{label: n.Label, radius: defaultRadius}
		e.applyStyle(n.ID, sn)
		e.nodes[n.ID] = sn
		rec.NodesEntered++
	}
	for id := range e.nodes {
		if _, ok := seen[id]; !ok {
			delete(e.nodes, id)
			rec.NodesExited++
		}
	}
	e.nodeOrder = order

	seenLinks := make(map[graph.EdgeKey]struct{}, len(edges))
	linkOrder := make([]graph.EdgeKey, 0, len(edges))
	for i := range edges {
		ed := edges[i]
		if _, ok := e.nodes[ed.Source]; !ok {
			continue
		}
		if _, ok := e.nodes[ed.Target]; !ok {
			continue
		}
		k := ed.Key()
		if _, dup := seenLinks[k]; dup {
			continue
		}
		seenLinks[k] = struct{}{}
		linkOrder = append(linkOrder, k)
		if prev, ok := e.links[k]; ok {
			prev.Weight = ed.Weight
			rec.EdgesUpdated++
			continue
		}
		e.links[k] = &ed
		rec.EdgesEntered++
	}
	for k := range e.links {
		if _, ok := seenLinks[k]; !ok {
			delete(e.links, k)
			rec.EdgesExited++
		}
	}
	e.linkOrder = linkOrder

	if len(survivors) > e.opts.BatchThreshold {
		rec.Chunks = e.scheduleRefresh(survivors)
		e.last = rec
		return nil
	}
	for _, id := range survivors {
		e.applyStyle(id, e.nodes[id])
	}
	e.last = rec
	return e.drawLocked()
}

// UpdatePositions moves scene nodes to freshly simulated coordinates and
// redraws. Unknown ids are ignored.
func (e *Engine) UpdatePositions(pos []layout.Position) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range pos {
		if sn, ok := e.nodes[p.ID]; ok {
			sn.x, sn.y = p.X, p.Y
		}
	}
	return e.drawLocked()
}

// Highlight pushes an emphasis set into the backend.
func (e *Engine) Highlight(h interaction.Highlight) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.highlight = h
	if e.paused {
		e.dirty = true
		return nil
	}
	return e.backend.Highlight(h)
}

// Resize changes the viewport and redraws.
func (e *Engine) Resize(width, height int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if width > 0 {
		e.opts.Width = width
	}
	if height > 0 {
		e.opts.Height = height
	}
	if err := e.backend.Resize(e.opts.Width, e.opts.Height); err != nil {
		return err
	}
	return e.drawLocked()
}

// Pause suppresses backend draws until Resume. Scene reconciliation
// continues while paused.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
}

// Resume re-enables draws and flushes any state accumulated while
// paused. Resuming an unpaused engine is a no-op.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.paused {
		return nil
	}
	e.paused = false
	if !e.dirty {
		return nil
	}
	return e.drawLocked()
}

// Clear empties the scene and the backend surface. Safe in any state.
func (e *Engine) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nodes = make(map[string]*sceneNode)
	e.links = make(map[graph.EdgeKey]*graph.Edge)
	e.nodeOrder = nil
	e.linkOrder = nil
	e.highlight = interaction.Highlight{}
	e.last = Reconciliation{}
	e.dirty = false
	return e.backend.Clear()
}

// ExportImage encodes the current surface through the backend.
func (e *Engine) ExportImage(w io.Writer, format string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	exp, ok := e.backend.(Exporter)
	if !ok {
		return ErrUnsupportedFormat
	}
	return exp.Export(w, format)
}

// LastReconciliation reports what the most recent Render did.
func (e *Engine) LastReconciliation() Reconciliation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Err returns the most recent error from a chunked, asynchronous draw.
// Synchronous calls report their errors directly.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drawErr
}

// scheduleRefresh partitions survivor attribute refreshes into fixed-size
// chunks plus one final draw chunk.
func (e *Engine) scheduleRefresh(ids []string) int {
	chunks := 0
	for start := 0; start < len(ids); start += e.opts.ChunkSize {
		end := start + e.opts.ChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		e.sched.ScheduleChunk(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for _, id := range chunk {
				if sn, ok := e.nodes[id]; ok {
					e.applyStyle(id, sn)
				}
			}
		})
		chunks++
	}
	e.sched.ScheduleChunk(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.drawErr = e.drawLocked()
	})
	return chunks + 1
}

func (e *Engine) applyStyle(id string, sn *sceneNode) {
	sn.radius = defaultRadius
	if s, ok := e.styles.Sizes[id]; ok {
		sn.radius = s
	}
	if c, ok := e.styles.Colors[id]; ok {
		sn.color = c
	} else {
		sn.color = style.Hex(e.opts.Theme.Muted)
	}
}

func (e *Engine) drawLocked() error {
	if e.paused {
		e.dirty = true
		return nil
	}
	e.dirty = false
	return e.backend.Render(e.buildFrame())
}

// buildFrame is the request-scoped scratch pass: it projects the scene
// into pixel space and assembles the draw list handed to the backend.
// The frame is never retained by the engine.
func (e *Engine) buildFrame() *Frame {
	f := &Frame{
		Width:     e.opts.Width,
		Height:    e.opts.Height,
		Theme:     e.opts.Theme,
		LOD:       len(e.nodeOrder)+len(e.linkOrder) > e.opts.LODThreshold,
		Highlight: e.highlight,
	}
	scale, ox, oy := e.fitTransform()
	px := make(map[string][2]float64, len(e.nodeOrder))
	for _, id := range e.nodeOrder {
		sn := e.nodes[id]
		x := ox + sn.x*scale
		y := oy + sn.y*scale
		px[id] = [2]float64{x, y}
		f.Nodes = append(f.Nodes, Element{
			ID:     id,
			Label:  sn.label,
			X:      x,
			Y:      y,
			Radius: sn.radius,
			Color:  sn.color,
		})
	}
	for _, k := range e.linkOrder {
		ed := e.links[k]
		s, t := px[ed.Source], px[ed.Target]
		f.Links = append(f.Links, Link{
			Key: k,
			X1:  s[0], Y1: s[1],
			X2: t[0], Y2: t[1],
			Weight: ed.Weight,
		})
	}
	return f
}

// fitTransform maps origin-centered layout coordinates onto the viewport
// with a margin. A scene with no spread lands on the viewport center.
func (e *Engine) fitTransform() (scale, ox, oy float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, id := range e.nodeOrder {
		sn := e.nodes[id]
		minX = math.Min(minX, sn.x)
		maxX = math.Max(maxX, sn.x)
		minY = math.Min(minY, sn.y)
		maxY = math.Max(maxY, sn.y)
	}
	w, h := float64(e.opts.Width), float64(e.opts.Height)
	if len(e.nodeOrder) == 0 {
		return 1, w / 2, h / 2
	}
	dx, dy := maxX-minX, maxY-minY
	scale = 1.0
	if dx > 0 || dy > 0 {
		sx, sy := math.Inf(1), math.Inf(1)
		if dx > 0 {
			sx = (w - 2*fitMargin) / dx
		}
		if dy > 0 {
			sy = (h - 2*fitMargin) / dy
		}
		scale = math.Min(sx, sy)
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	return scale, w/2 - cx*scale, h/2 - cy*scale
}
