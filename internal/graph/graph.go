// Package graph defines the node/edge model and the analysis passes
// shared by the reduction and rendering pipeline.
package graph

// Node is a single vertex of a citation or co-authorship network.
// ID is the only required field; everything else is either derived
// (Degree, Size, Color) or passthrough data owned by the caller.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`

	// Derived per reduction/render cycle.
	Degree int     `json:"degree,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Color  string  `json:"color,omitempty"`

	// Domain attributes commonly present in this corpus.
	Citations int `json:"citations,omitempty"`
	Year      int `json:"year,omitempty"`

	Attrs map[string]string `json:"attrs,omitempty"`
}

// Edge connects two nodes by id. Endpoints are ids, not pointers, so
// edges stay valid across reduction (which produces new node slices).
type Edge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Weight   float64 `json:"weight,omitempty"`
	Directed bool    `json:"directed,omitempty"`
	Kind     string  `json:"kind,omitempty"`
}

// EdgeKey is the canonical identity of an edge: the unordered endpoint
// pair with the lexically smaller id in A. Two edges with the same key
// are duplicates regardless of direction.
type EdgeKey struct {
	A string
	B string
}

// Key returns the canonical unordered-pair key for the edge.
func (e Edge) Key() EdgeKey {
	if e.Source <= e.Target {
		return EdgeKey{A: e.Source, B: e.Target}
	}
	return EdgeKey{A: e.Target, B: e.Source}
}

// String renders the key in "a--b" form for use in sets and exports.
func (k EdgeKey) String() string {
	return k.A + "--" + k.B
}

// CopyNodes returns a deep copy of nodes, including Attrs maps.
// The worker boundary copies inputs in and results out; nothing
// crosses it by reference.
func CopyNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	copy(out, nodes)
	for i := range out {
		if out[i].Attrs != nil {
			attrs := make(map[string]string, len(out[i].Attrs))
			for k, v := range out[i].Attrs {
				attrs[k] = v
			}
			out[i].Attrs = attrs
		}
	}
	return out
}

// CopyEdges returns a copy of edges.
func CopyEdges(edges []Edge) []Edge {
	if edges == nil {
		return nil
	}
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// NodeSet returns the set of node ids.
func NodeSet(nodes []Node) map[string]bool {
	set := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		set[n.ID] = true
	}
	return set
}
