package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/hairball/internal/graph"
)

func TestLoadNodes(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantNodes int
		wantErr   bool
	}{
		{
			name:      "empty file",
			content:   "",
			wantNodes: 0,
		},
		{
			name:      "single node",
			content:   `{"id":"doi:10.1/a","label":"Paper A","citations":12}`,
			wantNodes: 1,
		},
		{
			name: "multiple nodes",
			content: `{"id":"a","label":"A"}
{"id":"b","label":"B","year":2019}
{"id":"c"}`,
			wantNodes: 3,
		},
		{
			name: "with empty lines",
			content: `{"id":"a"}

{"id":"b"}`,
			wantNodes: 2,
		},
		{
			name:    "invalid JSON",
			content: `{"id":"a"`,
			wantErr: true,
		},
		{
			name:    "missing id",
			content: `{"label":"anonymous"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nodes.jsonl")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write test file: %v", err)
			}

			nodes, err := LoadNodes(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("LoadNodes() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadNodes() error = %v", err)
			}
			if len(nodes) != tt.wantNodes {
				t.Errorf("LoadNodes() returned %d nodes, want %d", len(nodes), tt.wantNodes)
			}
		})
	}
}

func TestLoadNodesMissingFile(t *testing.T) {
	nodes, err := LoadNodes(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err != nil {
		t.Fatalf("LoadNodes() error = %v, want nil for missing file", err)
	}
	if nodes != nil {
		t.Errorf("LoadNodes() = %v, want nil", nodes)
	}
}

func TestSaveNodesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jsonl")
	in := []graph.Node{
		{ID: "a", Label: "Paper A", Citations: 40, Year: 2021},
		{ID: "b", Attrs: map[string]string{"venue": "PLOS"}},
	}

	if err := SaveNodes(path, in); err != nil {
		t.Fatalf("SaveNodes() error = %v", err)
	}
	out, err := LoadNodes(path)
	if err != nil {
		t.Fatalf("LoadNodes() error = %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("LoadNodes() returned %d nodes, want 2", len(out))
	}
	if out[0].Citations != 40 || out[0].Year != 2021 {
		t.Errorf("node a = %+v, want citations 40 year 2021", out[0])
	}
	if out[1].Attrs["venue"] != "PLOS" {
		t.Errorf("node b attrs = %v, want venue PLOS", out[1].Attrs)
	}
}

func TestSaveNodesReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jsonl")
	if err := SaveNodes(path, []graph.Node{{ID: "old1"}, {ID: "old2"}}); err != nil {
		t.Fatalf("SaveNodes() error = %v", err)
	}
	if err := SaveNodes(path, []graph.Node{{ID: "new"}}); err != nil {
		t.Fatalf("SaveNodes() error = %v", err)
	}

	nodes, err := LoadNodes(path)
	if err != nil {
		t.Fatalf("LoadNodes() error = %v", err)
	}
	if len(nodes) != 1 || nodes[0].ID != "new" {
		t.Errorf("LoadNodes() = %v, want single node new", nodes)
	}
}

func TestAppendNodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jsonl")
	if err := AppendNodes(path, []graph.Node{{ID: "a"}}); err != nil {
		t.Fatalf("AppendNodes() error = %v", err)
	}
	if err := AppendNodes(path, []graph.Node{{ID: "b"}, {ID: "c"}}); err != nil {
		t.Fatalf("AppendNodes() error = %v", err)
	}

	nodes, err := LoadNodes(path)
	if err != nil {
		t.Fatalf("LoadNodes() error = %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("LoadNodes() returned %d nodes, want 3", len(nodes))
	}
	if nodes[0].ID != "a" || nodes[2].ID != "c" {
		t.Errorf("append order = %s..%s, want a..c", nodes[0].ID, nodes[2].ID)
	}
}
