// Package reduce shrinks oversized graphs to a renderable node budget
// while preserving the most-connected structure: degree thresholding,
// hub preservation, a greedy community-merge heuristic, and a seeded
// sampling fallback.
package reduce

import (
	"math"

	"github.com/matsen/hairball/internal/graph"
)

// Defaults for Options fields left at zero.
const (
	DefaultMaxNodes           = 1000
	DefaultMinDegreeFloor     = 1
	DefaultPreserveTopPercent = 0.1
)

// Band and stage constants of the pipeline. The threshold search aims
// for a keep-count within [bandLow, bandHigh]*MaxNodes; the merge pass
// starts above mergeTrigger*MaxNodes and stops at mergeTarget*MaxNodes.
const (
	bandLow       = 0.6
	bandHigh      = 1.2
	mergeTrigger  = 0.8
	mergeTarget   = 0.7
	mergeScanSize = 10
	hubFloorCount = 50
	hubTargetFrac = 0.2
)

// Options controls a reduction run.
type Options struct {
	// MaxNodes is the node budget; graphs at or under it pass through
	// untouched.
	MaxNodes int `json:"max_nodes"`
	// MinDegreeFloor is the lowest degree threshold the search will
	// consider.
	MinDegreeFloor int `json:"min_degree_floor"`
	// PreserveTopPercent sizes the hub set as a fraction of the input.
	PreserveTopPercent float64 `json:"preserve_top_percent"`
	// EnableCommunityMerge switches on the greedy merge pass.
	EnableCommunityMerge bool `json:"enable_community_merge"`
	// Seed pins the sampling fallback for reproducible runs; 0 leaves
	// it nondeterministic.
	Seed int64 `json:"seed,omitempty"`
}

// DefaultOptions returns the standard reduction settings.
func DefaultOptions() Options {
	return Options{
		MaxNodes:             DefaultMaxNodes,
		MinDegreeFloor:       DefaultMinDegreeFloor,
		PreserveTopPercent:   DefaultPreserveTopPercent,
		EnableCommunityMerge: true,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxNodes <= 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if o.MinDegreeFloor < 0 {
		o.MinDegreeFloor = DefaultMinDegreeFloor
	}
	if o.PreserveTopPercent <= 0 {
		o.PreserveTopPercent = DefaultPreserveTopPercent
	}
	return o
}

// Level classifies how aggressive a reduction was.
type Level string

// Reduction levels, a pure function of the compression rate.
const (
	LevelNone     Level = "none"
	LevelLight    Level = "light"
	LevelModerate Level = "moderate"
	LevelHeavy    Level = "heavy"
)

// levelFor maps a compression rate (percent removed) to a level.
// Only used after an actual reduction; the no-op path is LevelNone.
func levelFor(rate int) Level {
	switch {
	case rate > 80:
		return LevelHeavy
	case rate > 50:
		return LevelModerate
	default:
		return LevelLight
	}
}

// Result is the outcome of a reduction run. Nodes and Edges are fresh
// slices on the reduction path; the no-op path returns the inputs
// unchanged.
type Result struct {
	Nodes           []graph.Node `json:"nodes"`
	Edges           []graph.Edge `json:"edges"`
	RemovedCount    int          `json:"removed_count"`
	CompressionRate int          `json:"compression_rate"`
	Level           Level        `json:"level"`

	// Threshold is the degree cutoff the search settled on, kept for
	// diagnostics output.
	Threshold int `json:"threshold,omitempty"`
}

// Reduce filters nodes/edges down to at most opts.MaxNodes nodes.
// Inputs are assumed sanitized (no self-loops, no duplicates). The
// pipeline: exact no-op for graphs within budget, dynamic degree
// threshold search, hub preservation, optional community merge, and a
// seeded sampling pass that lands exactly on the budget. Edges are
// retained only when both endpoints survive.
func Reduce(nodes []graph.Node, edges []graph.Edge, opts Options) Result {
	opts = opts.withDefaults()
	n := len(nodes)

	if n == 0 {
		return Result{Nodes: []graph.Node{}, Edges: []graph.Edge{}, Level: LevelNone}
	}
	if n <= opts.MaxNodes {
		return Result{Nodes: nodes, Edges: edges, Level: LevelNone}
	}

	degrees := graph.ComputeDegrees(nodes, edges)

	threshold := searchThreshold(degrees, opts.MinDegreeFloor, degrees.Max(), opts.MaxNodes)
	keep := make(map[string]bool, opts.MaxNodes*2)
	for id, d := range degrees {
		if d >= threshold {
			keep[id] = true
		}
	}

	for _, hub := range graph.TopByDegree(nodes, degrees, hubCount(n, opts)) {
		keep[hub.ID] = true
	}

	if opts.EnableCommunityMerge && float64(len(keep)) > mergeTrigger*float64(opts.MaxNodes) {
		mergeCommunities(keep, nodes, edges, degrees, opts.MaxNodes)
	}

	if len(keep) > opts.MaxNodes {
		sampleDown(keep, nodes, opts.MaxNodes, opts.Seed)
	}

	kept := make([]graph.Node, 0, len(keep))
	for _, node := range nodes {
		if keep[node.ID] {
			kept = append(kept, node)
		}
	}
	keptEdges := make([]graph.Edge, 0, len(edges))
	for _, e := range edges {
		if keep[e.Source] && keep[e.Target] {
			keptEdges = append(keptEdges, e)
		}
	}

	removed := n - len(kept)
	rate := int(math.Round(100 * float64(removed) / float64(n)))
	return Result{
		Nodes:           kept,
		Edges:           keptEdges,
		RemovedCount:    removed,
		CompressionRate: rate,
		Level:           levelFor(rate),
		Threshold:       threshold,
	}
}

// hubCount sizes the hub preservation set: the larger of the
// percentage cut and a floor of max(50, 20% of the budget).
func hubCount(n int, opts Options) int {
	byPercent := int(math.Ceil(float64(n) * opts.PreserveTopPercent))
	floor := int(math.Ceil(float64(opts.MaxNodes) * hubTargetFrac))
	if floor < hubFloorCount {
		floor = hubFloorCount
	}
	if byPercent > floor {
		return byPercent
	}
	return floor
}
