package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matsen/hairball/internal/graph"
)

// LoadNodes reads all nodes from a JSONL file. A missing file is an
// empty graph, not an error.
func LoadNodes(path string) ([]graph.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening nodes file: %w", err)
	}
	defer f.Close()

	var nodes []graph.Node
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

		var n graph.Node
		if err := json.Unmarshal(line, &n); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if n.ID == "" {
			return nil, fmt.Errorf("node at line %d has no id", lineNum)
		}
		nodes = append(nodes, n)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading nodes file: %w", err)
	}

	return nodes, nil
}

// writeNodeLine marshals a node and writes it as one JSONL line.
func writeNodeLine(w io.Writer, n graph.Node) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding node %s: %w", n.ID, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing node %s: %w", n.ID, err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}
	return nil
}

// SaveNodes writes all nodes to a JSONL file, replacing existing content.
func SaveNodes(path string, nodes []graph.Node) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating nodes file: %w", err)
	}
	defer f.Close()

	for _, n := range nodes {
		if err := writeNodeLine(f, n); err != nil {
			return err
		}
	}

	return nil
}

// AppendNodes adds nodes to the end of a JSONL file.
func AppendNodes(path string, nodes []graph.Node) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening nodes file for append: %w", err)
	}
	defer f.Close()

	for _, n := range nodes {
		if err := writeNodeLine(f, n); err != nil {
			return err
		}
	}

	return nil
}
