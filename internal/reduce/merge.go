package reduce

import (
	"sort"

	"github.com/matsen/hairball/internal/graph"
)

// mergeCommunities greedily removes kept nodes that look structurally
// redundant: low-degree nodes sharing many neighbors with a similarly
// sized neighbor. This is a cheap shared-neighbor heuristic, not exact
// community detection, and makes no optimality claim.
//
// Each round scans at most mergeScanSize lowest-degree kept nodes; for
// each, it examines still-kept neighbors whose degree is at most the
// candidate's degree + 2 (the locality guard that keeps a peripheral
// node from being merged into an unrelated hub), scores them by
// common-neighbor count, and removes the candidate with the highest
// score seen in the whole scan. Rounds repeat until the keep-set is at
// mergeTarget*maxNodes or a full scan removes nothing.
func mergeCommunities(keep map[string]bool, nodes []graph.Node, edges []graph.Edge, degrees graph.DegreeMap, maxNodes int) int {
	target := mergeTarget * float64(maxNodes)
	adj := adjacencyWithin(keep, edges)

	removed := 0
	for float64(len(keep)) > target {
		candidate := bestMergeCandidate(nodes, keep, degrees, adj)
		if candidate == "" {
			break
		}
		delete(keep, candidate)
		dropFromAdjacency(adj, candidate)
		removed++
	}
	return removed
}

// bestMergeCandidate runs one scan and returns the id to remove, or
// "" when no candidate has positive similarity with any qualifying
// neighbor.
func bestMergeCandidate(nodes []graph.Node, keep map[string]bool, degrees graph.DegreeMap, adj map[string]map[string]bool) string {
	candidates := lowestDegreeKept(nodes, keep, degrees, mergeScanSize)

	bestID := ""
	bestSim := 0
	for _, cand := range candidates {
		limit := degrees[cand] + 2
		for neighbor := range adj[cand] {
			if degrees[neighbor] > limit {
				continue
			}
			sim := commonNeighbors(adj, cand, neighbor)
			if sim > bestSim {
				bestSim = sim
				bestID = cand
			}
		}
	}
	return bestID
}

// lowestDegreeKept returns up to k kept ids ordered by ascending
// degree, ties by input order.
func lowestDegreeKept(nodes []graph.Node, keep map[string]bool, degrees graph.DegreeMap, k int) []string {
	kept := make([]string, 0, len(keep))
	for _, n := range nodes {
		if keep[n.ID] {
			kept = append(kept, n.ID)
		}
	}
	sort.SliceStable(kept, func(a, b int) bool {
		return degrees[kept[a]] < degrees[kept[b]]
	})
	if len(kept) > k {
		kept = kept[:k]
	}
	return kept
}

// adjacencyWithin indexes neighbors over the kept subgraph only.
func adjacencyWithin(keep map[string]bool, edges []graph.Edge) map[string]map[string]bool {
	adj := make(map[string]map[string]bool, len(keep))
	for _, e := range edges {
		if !keep[e.Source] || !keep[e.Target] {
			continue
		}
		if adj[e.Source] == nil {
			adj[e.Source] = make(map[string]bool)
		}
		if adj[e.Target] == nil {
			adj[e.Target] = make(map[string]bool)
		}
		adj[e.Source][e.Target] = true
		adj[e.Target][e.Source] = true
	}
	return adj
}

// commonNeighbors counts ids adjacent to both a and b.
func commonNeighbors(adj map[string]map[string]bool, a, b string) int {
	na, nb := adj[a], adj[b]
	if len(nb) < len(na) {
		na, nb = nb, na
	}
	count := 0
	for id := range na {
		if nb[id] {
			count++
		}
	}
	return count
}

// dropFromAdjacency removes id and all links to it.
func dropFromAdjacency(adj map[string]map[string]bool, id string) {
	for neighbor := range adj[id] {
		delete(adj[neighbor], id)
	}
	delete(adj, id)
}
