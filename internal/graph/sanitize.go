package graph

import "fmt"

// SanitizeResult carries the cleaned graph plus counts of what was
// dropped, so callers can report data-quality findings without
// treating them as errors.
type SanitizeResult struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	DuplicateNodes int `json:"duplicate_nodes"`
	SelfLoops      int `json:"self_loops"`
	DuplicateEdges int `json:"duplicate_edges"`
	DanglingEdges  int `json:"dangling_edges"`
}

// Dropped reports the total number of dropped elements.
func (r SanitizeResult) Dropped() int {
	return r.DuplicateNodes + r.SelfLoops + r.DuplicateEdges + r.DanglingEdges
}

// Sanitize cleans a raw node/edge load:
//
//   - duplicate node ids: first occurrence wins, later ones dropped
//   - self-loops (source == target): dropped
//   - duplicate edges by canonical unordered pair: first occurrence wins
//   - edges referencing a missing endpoint: dropped and counted
//   - unset edge weights: defaulted to 1
//
// Input order is preserved. Sanitize allocates new slices and never
// mutates its arguments; calling it on its own output is a no-op.
func Sanitize(nodes []Node, edges []Edge) SanitizeResult {
	var res SanitizeResult

	seen := make(map[string]bool, len(nodes))
	res.Nodes = make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			res.DuplicateNodes++
			continue
		}
		seen[n.ID] = true
		res.Nodes = append(res.Nodes, n)
	}

	seenEdges := make(map[EdgeKey]bool, len(edges))
	res.Edges = make([]Edge, 0, len(edges))
	for _, e := range edges {
		if e.Source == e.Target {
			res.SelfLoops++
			continue
		}
		if !seen[e.Source] || !seen[e.Target] {
			res.DanglingEdges++
			continue
		}
		key := e.Key()
		if seenEdges[key] {
			res.DuplicateEdges++
			continue
		}
		seenEdges[key] = true
		if e.Weight == 0 {
			e.Weight = 1
		}
		res.Edges = append(res.Edges, e)
	}

	return res
}

// Validate reports data-quality issues as a list of messages rather
// than an error. An empty result means the input is clean enough to
// sanitize and render; callers decide whether findings are fatal.
func Validate(nodes []Node, edges []Edge) []string {
	var issues []string

	ids := make(map[string]bool, len(nodes))
	for i, n := range nodes {
		if n.ID == "" {
			issues = append(issues, fmt.Sprintf("node %d: empty id", i))
			continue
		}
		if ids[n.ID] {
			issues = append(issues, fmt.Sprintf("node %d: duplicate id %q", i, n.ID))
			continue
		}
		ids[n.ID] = true
	}

	for i, e := range edges {
		switch {
		case e.Source == "":
			issues = append(issues, fmt.Sprintf("edge %d: empty source", i))
		case e.Target == "":
			issues = append(issues, fmt.Sprintf("edge %d: empty target", i))
		case e.Source == e.Target:
			issues = append(issues, fmt.Sprintf("edge %d: self-loop on %q", i, e.Source))
		default:
			if !ids[e.Source] {
				issues = append(issues, fmt.Sprintf("edge %d: unknown source %q", i, e.Source))
			}
			if !ids[e.Target] {
				issues = append(issues, fmt.Sprintf("edge %d: unknown target %q", i, e.Target))
			}
		}
		if e.Weight < 0 {
			issues = append(issues, fmt.Sprintf("edge %d: negative weight %g", i, e.Weight))
		}
	}

	return issues
}
