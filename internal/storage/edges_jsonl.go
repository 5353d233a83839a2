package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matsen/hairball/internal/graph"
)

// LoadEdges reads all edges from a JSONL file. A missing file is an
// empty edge set, not an error. Endpoint ids must be present; weights
// and the rest of the record stay as written (the sanitizer, not the
// loader, applies defaults).
func LoadEdges(path string) ([]graph.Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening edges file: %w", err)
	}
	defer f.Close()

	var edges []graph.Edge
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var e graph.Edge
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if e.Source == "" || e.Target == "" {
			return nil, fmt.Errorf("edge at line %d is missing an endpoint", lineNum)
		}
		edges = append(edges, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading edges file: %w", err)
	}

	return edges, nil
}

// writeEdgeLine marshals an edge and writes it as one JSONL line.
func writeEdgeLine(w io.Writer, e graph.Edge) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding edge %s: %w", e.Key(), err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing edge %s: %w", e.Key(), err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}
	return nil
}

// SaveEdges writes all edges to a JSONL file, replacing existing content.
func SaveEdges(path string, edges []graph.Edge) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating edges file: %w", err)
	}
	defer f.Close()

	for _, e := range edges {
		if err := writeEdgeLine(f, e); err != nil {
			return err
		}
	}

	return nil
}

// AppendEdges adds edges to the end of a JSONL file.
func AppendEdges(path string, edges []graph.Edge) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening edges file for append: %w", err)
	}
	defer f.Close()

	for _, e := range edges {
		if err := writeEdgeLine(f, e); err != nil {
			return err
		}
	}

	return nil
}
