package graph

import (
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
)

// Default PageRank parameters.
const (
	DefaultDamping   = 0.85
	DefaultTolerance = 1e-6
)

// PageRank scores nodes by citation-style importance. Directed edges
// contribute one link, undirected edges contribute both directions.
// The scores are only ever a styling input (node color/size emphasis);
// the reduction keep-set is strictly degree-based.
func PageRank(nodes []Node, edges []Edge, damping, tol float64) map[string]float64 {
	if len(nodes) == 0 {
		return map[string]float64{}
	}
	if damping <= 0 || damping >= 1 {
		damping = DefaultDamping
	}
	if tol <= 0 {
		tol = DefaultTolerance
	}

	index := make(map[string]int64, len(nodes))
	g := simple.NewDirectedGraph()
	for i, n := range nodes {
		index[n.ID] = int64(i)
		g.AddNode(simple.Node(int64(i)))
	}

	for _, e := range edges {
		si, ok := index[e.Source]
		if !ok {
			continue
		}
		ti, ok := index[e.Target]
		if !ok || si == ti {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(si), T: simple.Node(ti)})
		if !e.Directed {
			g.SetEdge(simple.Edge{F: simple.Node(ti), T: simple.Node(si)})
		}
	}

	scores := network.PageRank(g, damping, tol)
	out := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		out[n.ID] = scores[index[n.ID]]
	}
	return out
}
