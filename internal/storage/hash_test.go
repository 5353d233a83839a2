package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestContentHash(t *testing.T) {
	dir := t.TempDir()
	nodesPath := filepath.Join(dir, "nodes.jsonl")
	edgesPath := filepath.Join(dir, "edges.jsonl")

	if err := os.WriteFile(nodesPath, []byte(`{"id":"a"}`+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write nodes: %v", err)
	}

	h1, err := ContentHash(nodesPath, edgesPath)
	if err != nil {
		t.Fatalf("ContentHash() error = %v", err)
	}
	if len(h1) != 64 {
		t.Errorf("len(hash) = %d, want 64 hex chars", len(h1))
	}

	// Absent and empty files hash the same.
	if err := os.WriteFile(edgesPath, nil, 0644); err != nil {
		t.Fatalf("Failed to create empty edges: %v", err)
	}
	h2, err := ContentHash(nodesPath, edgesPath)
	if err != nil {
		t.Fatalf("ContentHash() error = %v", err)
	}
	if h2 != h1 {
		t.Errorf("hash with empty edges file = %s, want %s", h2, h1)
	}

	// Content changes change the hash.
	if err := os.WriteFile(edgesPath, []byte(`{"source":"a","target":"b"}`+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write edges: %v", err)
	}
	h3, err := ContentHash(nodesPath, edgesPath)
	if err != nil {
		t.Fatalf("ContentHash() error = %v", err)
	}
	if h3 == h1 {
		t.Error("hash unchanged after writing edges, want different")
	}
}

func TestContentHashDeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jsonl")
	if err := os.WriteFile(path, []byte(`{"id":"a"}`+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write nodes: %v", err)
	}

	h1, err := ContentHash(path)
	if err != nil {
		t.Fatalf("ContentHash() error = %v", err)
	}
	h2, err := ContentHash(path)
	if err != nil {
		t.Fatalf("ContentHash() error = %v", err)
	}
	if h1 != h2 {
		t.Errorf("ContentHash() = %s then %s, want identical", h1, h2)
	}
}
