package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestReadGraphJSON(t *testing.T) {
	content := `{
		"nodes": [
			{"id": "a", "label": "Paper A", "citations": 10},
			{"id": "b"}
		],
		"edges": [
			{"source": "a", "target": "b", "weight": 2}
		]
	}`
	path := writeTestFile(t, "graph.json", content)

	g, err := ReadGraphJSON(path)
	if err != nil {
		t.Fatalf("ReadGraphJSON() error = %v", err)
	}
	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("ReadGraphJSON() = %d nodes / %d edges, want 2/1", len(g.Nodes), len(g.Edges))
	}
	if g.Nodes[0].Citations != 10 {
		t.Errorf("node a citations = %d, want 10", g.Nodes[0].Citations)
	}
	if g.Edges[0].Weight != 2 {
		t.Errorf("edge weight = %v, want 2", g.Edges[0].Weight)
	}
}

func TestReadGraphJSONErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := ReadGraphJSON(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Error("ReadGraphJSON() error = nil for missing file, want error")
		}
	})
	t.Run("invalid JSON", func(t *testing.T) {
		path := writeTestFile(t, "bad.json", `{"nodes": [`)
		if _, err := ReadGraphJSON(path); err == nil {
			t.Error("ReadGraphJSON() error = nil for invalid JSON, want error")
		}
	})
}

func TestReadGraphJSONL(t *testing.T) {
	content := `{"id": "a", "label": "Paper A"}
{"id": "b"}

{"source": "a", "target": "b", "kind": "cites"}
{"id": "c", "year": 2020}`
	path := writeTestFile(t, "graph.jsonl", content)

	g, err := ReadGraphJSONL(path)
	if err != nil {
		t.Fatalf("ReadGraphJSONL() error = %v", err)
	}
	if len(g.Nodes) != 3 {
		t.Errorf("ReadGraphJSONL() nodes = %d, want 3", len(g.Nodes))
	}
	if len(g.Edges) != 1 {
		t.Fatalf("ReadGraphJSONL() edges = %d, want 1", len(g.Edges))
	}
	if g.Edges[0].Kind != "cites" {
		t.Errorf("edge kind = %q, want cites", g.Edges[0].Kind)
	}
	if g.Nodes[2].Year != 2020 {
		t.Errorf("node c year = %d, want 2020", g.Nodes[2].Year)
	}
}

func TestReadGraphJSONLErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid JSON", `{"id": "a"` + "\n"},
		{"ambiguous record", `{"label": "no id or endpoints"}` + "\n"},
		{"half an edge", `{"source": "a"}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestFile(t, "bad.jsonl", tt.content)
			if _, err := ReadGraphJSONL(path); err == nil {
				t.Error("ReadGraphJSONL() error = nil, want error")
			}
		})
	}
}

func TestFromDOIs(t *testing.T) {
	g := FromDOIs("smith2020", []string{"10.1234/aaa", "10.5678/bbb"})

	if len(g.Nodes) != 3 {
		t.Fatalf("FromDOIs() nodes = %d, want 3", len(g.Nodes))
	}
	if g.Nodes[0].ID != "smith2020" {
		t.Errorf("first node = %s, want the paper", g.Nodes[0].ID)
	}
	if g.Nodes[1].ID != "doi:10.1234/aaa" || g.Nodes[1].Label != "10.1234/aaa" {
		t.Errorf("doi node = %+v, want prefixed id with raw label", g.Nodes[1])
	}

	if len(g.Edges) != 2 {
		t.Fatalf("FromDOIs() edges = %d, want 2", len(g.Edges))
	}
	for _, e := range g.Edges {
		if e.Source != "smith2020" || !e.Directed || e.Kind != "cites" {
			t.Errorf("edge = %+v, want directed cites from the paper", e)
		}
	}
}

func TestFromDOIsEmpty(t *testing.T) {
	g := FromDOIs("lonely", nil)
	if len(g.Nodes) != 1 || len(g.Edges) != 0 {
		t.Errorf("FromDOIs() = %d nodes / %d edges, want 1/0", len(g.Nodes), len(g.Edges))
	}
}

func TestExtractDOIsMissingFile(t *testing.T) {
	if _, err := ExtractDOIs(filepath.Join(t.TempDir(), "absent.pdf"), 3); err == nil {
		t.Error("ExtractDOIs() error = nil for missing file, want error")
	}
}
