package layout

import (
	"math"
	"math/rand"
	"time"

	"github.com/matsen/hairball/internal/graph"
)

// d3-force conventions: alpha starts at 1 and coasts toward 0, the
// run stops when it crosses alphaMin, and initial placement follows a
// phyllotaxis spiral so runs are reproducible before any jitter.
const (
	alphaInitial  = 1.0
	alphaMin      = 0.001
	initialRadius = 10.0
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Degree-weighted profile scaling (see ConfigureDegreeWeightedFor).
const (
	degreeChargeScale = 0.3
	degreeLinkScale   = 0.25
)

type simNode struct {
	id     string
	degree int
	x, y   float64
	vx, vy float64
	fx, fy *float64
}

type simLink struct {
	source, target int
	distance       float64
	strength       float64
	bias           float64
}

// Position is one node's laid-out coordinate, centered on the origin.
type Position struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Simulation owns the mutable position/velocity state for one layout
// run. Nodes passed in are read, never written; positions live only
// inside the simulation and are invalid after Clear.
type Simulation struct {
	cfg     SimulationConfig
	nodes   []simNode
	index   map[string]int
	links   []simLink
	charges []float64

	alpha       float64
	alphaTarget float64
	paused      bool
	cleared     bool
	rng         *rand.Rand
}

// NewSimulation builds a simulation over the given graph. Edges with
// endpoints outside the node set are ignored. Seed pins the jitter
// stream; 0 draws from the clock.
func NewSimulation(nodes []graph.Node, edges []graph.Edge, cfg SimulationConfig, seed int64) *Simulation {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Simulation{
		cfg:   cfg,
		alpha: alphaInitial,
		rng:   rand.New(rand.NewSource(seed)),
		index: make(map[string]int, len(nodes)),
	}

	s.nodes = make([]simNode, len(nodes))
	for i, n := range nodes {
		radius := initialRadius * math.Sqrt(0.5+float64(i))
		angle := float64(i) * initialAngle
		s.nodes[i] = simNode{
			id: n.ID,
			x:  radius * math.Cos(angle),
			y:  radius * math.Sin(angle),
		}
		s.index[n.ID] = i
	}

	s.links = make([]simLink, 0, len(edges))
	for _, e := range edges {
		si, ok := s.index[e.Source]
		if !ok {
			continue
		}
		ti, ok := s.index[e.Target]
		if !ok {
			continue
		}
		s.links = append(s.links, simLink{source: si, target: ti})
		s.nodes[si].degree++
		s.nodes[ti].degree++
	}

	for i := range s.links {
		l := &s.links[i]
		ds := s.nodes[l.source].degree
		dt := s.nodes[l.target].degree
		min := ds
		if dt < min {
			min = dt
		}
		if min < 1 {
			min = 1
		}
		l.distance = cfg.LinkDistance
		if cfg.DegreeWeighted {
			l.distance *= 1 + degreeLinkScale*math.Log1p(float64(min))
		}
		l.strength = cfg.LinkStrength / float64(min)
		l.bias = float64(ds) / float64(ds+dt)
	}

	s.charges = make([]float64, len(s.nodes))
	for i := range s.nodes {
		charge := cfg.ChargeStrength
		if cfg.DegreeWeighted {
			charge *= 1 + degreeChargeScale*math.Sqrt(float64(s.nodes[i].degree))
		}
		s.charges[i] = charge
	}

	return s
}

// Alpha reports the current cooling value.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Running reports whether ticks still move the layout.
func (s *Simulation) Running() bool {
	return !s.paused && !s.cleared && len(s.nodes) > 0 && s.alpha >= alphaMin
}

// Pause stops ticking; pausing an already paused simulation is a
// no-op.
func (s *Simulation) Pause() { s.paused = true }

// Resume re-enables ticking; resuming a running simulation is a
// no-op.
func (s *Simulation) Resume() { s.paused = false }

// Clear releases all simulation state. Positions handed out earlier
// are snapshots and stay usable; the simulation itself is dead and
// every later call is a no-op. Safe in any state.
func (s *Simulation) Clear() {
	s.cleared = true
	s.nodes = nil
	s.links = nil
	s.charges = nil
	s.index = nil
}

// Pin fixes a node at the given position until Unpin; the node stops
// responding to forces. Unknown ids are ignored.
func (s *Simulation) Pin(id string, x, y float64) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.nodes[i].fx = &x
	s.nodes[i].fy = &y
}

// Unpin releases a pinned node.
func (s *Simulation) Unpin(id string) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.nodes[i].fx = nil
	s.nodes[i].fy = nil
}

// Tick advances the simulation one step: cool alpha, apply link,
// many-body, collision, and centering forces, then integrate
// velocities. A paused or cleared simulation does not move.
func (s *Simulation) Tick() {
	if s.paused || s.cleared || len(s.nodes) == 0 {
		return
	}
	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay

	s.applyLinks()
	s.applyCharge()
	s.applyCollide()
	s.applyCenter()
	s.integrate()
}

// Run ticks until the simulation cools below alphaMin or maxTicks is
// reached, returning the number of ticks executed.
func (s *Simulation) Run(maxTicks int) int {
	ticks := 0
	for s.Running() && ticks < maxTicks {
		s.Tick()
		ticks++
	}
	return ticks
}

// Positions snapshots current coordinates in input order.
func (s *Simulation) Positions() []Position {
	out := make([]Position, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = Position{ID: n.id, X: n.x, Y: n.y}
	}
	return out
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

func (s *Simulation) applyLinks() {
	for _, l := range s.links {
		src := &s.nodes[l.source]
		tgt := &s.nodes[l.target]

		dx := tgt.x + tgt.vx - src.x - src.vx
		dy := tgt.y + tgt.vy - src.y - src.vy
		if dx == 0 {
			dx = s.jiggle()
		}
		if dy == 0 {
			dy = s.jiggle()
		}
		dist := math.Sqrt(dx*dx + dy*dy)
		k := (dist - l.distance) / dist * s.alpha * l.strength
		dx *= k
		dy *= k

		tgt.vx -= dx * l.bias
		tgt.vy -= dy * l.bias
		src.vx += dx * (1 - l.bias)
		src.vy += dy * (1 - l.bias)
	}
}

func (s *Simulation) applyCharge() {
	root := buildQuadtree(s.nodes, s.charges)
	if root == nil {
		return
	}
	distMin2 := s.cfg.DistanceMin * s.cfg.DistanceMin
	distMax2 := s.cfg.DistanceMax * s.cfg.DistanceMax
	for i := range s.nodes {
		n := &s.nodes[i]
		vx, vy := chargeForce(root, i, n.x, n.y, s.alpha, distMin2, distMax2, s.jiggle)
		n.vx += vx
		n.vy += vy
	}
}

// applyCollide resolves pairwise overlaps at CollideRadius using a
// uniform grid: only the surrounding nine buckets can contain an
// overlapping partner when the cell side is one diameter.
func (s *Simulation) applyCollide() {
	r := s.cfg.CollideRadius
	if r <= 0 {
		return
	}
	cell := 2 * r
	grid := make(map[[2]int][]int, len(s.nodes))
	key := func(x, y float64) [2]int {
		return [2]int{int(math.Floor(x / cell)), int(math.Floor(y / cell))}
	}
	for i := range s.nodes {
		n := &s.nodes[i]
		k := key(n.x+n.vx, n.y+n.vy)
		grid[k] = append(grid[k], i)
	}

	min2 := cell * cell
	for i := range s.nodes {
		ni := &s.nodes[i]
		xi := ni.x + ni.vx
		yi := ni.y + ni.vy
		k := key(xi, yi)
		for dgx := -1; dgx <= 1; dgx++ {
			for dgy := -1; dgy <= 1; dgy++ {
				for _, j := range grid[[2]int{k[0] + dgx, k[1] + dgy}] {
					if j <= i {
						continue
					}
					nj := &s.nodes[j]
					dx := xi - nj.x - nj.vx
					dy := yi - nj.y - nj.vy
					d2 := dx*dx + dy*dy
					if d2 >= min2 {
						continue
					}
					if dx == 0 {
						dx = s.jiggle()
						d2 += dx * dx
					}
					if dy == 0 {
						dy = s.jiggle()
						d2 += dy * dy
					}
					d := math.Sqrt(d2)
					l := (cell - d) / d / 2
					dx *= l
					dy *= l
					ni.vx += dx
					ni.vy += dy
					nj.vx -= dx
					nj.vy -= dy
				}
			}
		}
	}
}

func (s *Simulation) applyCenter() {
	var mx, my float64
	for i := range s.nodes {
		mx += s.nodes[i].x
		my += s.nodes[i].y
	}
	mx /= float64(len(s.nodes))
	my /= float64(len(s.nodes))
	for i := range s.nodes {
		s.nodes[i].x -= mx
		s.nodes[i].y -= my
	}
}

func (s *Simulation) integrate() {
	decay := 1 - s.cfg.VelocityDecay
	for i := range s.nodes {
		n := &s.nodes[i]
		if n.fx != nil {
			n.x = *n.fx
			n.vx = 0
		} else {
			n.vx *= decay
			n.x += n.vx
		}
		if n.fy != nil {
			n.y = *n.fy
			n.vy = 0
		} else {
			n.vy *= decay
			n.y += n.vy
		}
	}
}
