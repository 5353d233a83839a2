package graph

import "sort"

// DegreeMap maps node id to degree under the undirected counting
// convention: every edge increments both endpoints, so the sum of all
// degrees is always 2*|edges| on a sanitized graph.
type DegreeMap map[string]int

// ComputeDegrees counts edge endpoints per node in O(|V|+|E|).
// Every node id is present in the result, isolated nodes at 0.
func ComputeDegrees(nodes []Node, edges []Edge) DegreeMap {
	degrees := make(DegreeMap, len(nodes))
	for _, n := range nodes {
		degrees[n.ID] = 0
	}
	for _, e := range edges {
		degrees[e.Source]++
		degrees[e.Target]++
	}
	return degrees
}

// Max returns the highest degree in the map, 0 for an empty map.
func (m DegreeMap) Max() int {
	max := 0
	for _, d := range m {
		if d > max {
			max = d
		}
	}
	return max
}

// Sum returns the total of all degrees.
func (m DegreeMap) Sum() int {
	sum := 0
	for _, d := range m {
		sum += d
	}
	return sum
}

// TopByDegree returns the k highest-degree nodes, ties broken by input
// order. k larger than the node count returns all nodes.
func TopByDegree(nodes []Node, degrees DegreeMap, k int) []Node {
	if k <= 0 {
		return nil
	}
	if k > len(nodes) {
		k = len(nodes)
	}
	idx := make([]int, len(nodes))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return degrees[nodes[idx[a]].ID] > degrees[nodes[idx[b]].ID]
	})
	top := make([]Node, k)
	for i := 0; i < k; i++ {
		top[i] = nodes[idx[i]]
	}
	return top
}

// WithDegrees returns a copy of nodes with the Degree field filled in
// from the map. The input slice is not modified.
func WithDegrees(nodes []Node, degrees DegreeMap) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	for i := range out {
		out[i].Degree = degrees[out[i].ID]
	}
	return out
}

// BuildAdjacency builds an id -> neighbor-set index. It is scratch
// state for the community-merge pass and is not retained after use.
func BuildAdjacency(nodes []Node, edges []Edge) map[string]map[string]bool {
	adj := make(map[string]map[string]bool, len(nodes))
	for _, n := range nodes {
		adj[n.ID] = make(map[string]bool)
	}
	for _, e := range edges {
		if adj[e.Source] == nil || adj[e.Target] == nil {
			continue
		}
		adj[e.Source][e.Target] = true
		adj[e.Target][e.Source] = true
	}
	return adj
}
