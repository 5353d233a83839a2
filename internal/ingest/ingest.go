// Package ingest reads caller-supplied graph files and seeds graphs
// from paper PDFs. It decodes only; sanitization is the caller's next
// step.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/hairball/internal/graph"
	"github.com/matsen/hairball/internal/storage"
)

// Graph is a decoded caller-supplied graph.
type Graph struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

// ReadGraphJSON reads a single JSON document of the form
// {"nodes": [...], "edges": [...]}.
func ReadGraphJSON(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph file: %w", err)
	}

	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing graph file: %w", err)
	}
	return &g, nil
}

// jsonlRecord probes a JSONL line for its record type.
type jsonlRecord struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// ReadGraphJSONL reads a mixed JSONL file with one record per line.
// Lines carrying source and target decode as edges, lines carrying id
// as nodes; anything else is an error naming the line.
func ReadGraphJSONL(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening graph file: %w", err)
	}
	defer f.Close()

	var g Graph
	scanner := bufio.NewScanner(f)

	buf := make([]byte, storage.MaxJSONLLineCapacity)
	scanner.Buffer(buf, storage.MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var probe jsonlRecord
		if err := json.Unmarshal(line, &probe); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}

		switch {
		case probe.Source != "" && probe.Target != "":
			var e graph.Edge
			if err := json.Unmarshal(line, &e); err != nil {
				return nil, fmt.Errorf("parsing edge at line %d: %w", lineNum, err)
			}
			g.Edges = append(g.Edges, e)
		case probe.ID != "":
			var n graph.Node
			if err := json.Unmarshal(line, &n); err != nil {
				return nil, fmt.Errorf("parsing node at line %d: %w", lineNum, err)
			}
			g.Nodes = append(g.Nodes, n)
		default:
			return nil, fmt.Errorf("line %d is neither a node nor an edge", lineNum)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading graph file: %w", err)
	}

	return &g, nil
}

// FromDOIs builds a citation seed graph: one node for the paper, one
// per cited DOI, and a directed cites edge to each.
func FromDOIs(paperID string, dois []string) *Graph {
	g := &Graph{
		Nodes: []graph.Node{{ID: paperID, Label: paperID}},
	}
	for _, doi := range dois {
		id := "doi:" + doi
		g.Nodes = append(g.Nodes, graph.Node{ID: id, Label: doi})
		g.Edges = append(g.Edges, graph.Edge{
			Source:   paperID,
			Target:   id,
			Directed: true,
			Kind:     "cites",
		})
	}
	return g
}
