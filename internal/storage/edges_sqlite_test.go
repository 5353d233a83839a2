package storage

import "testing"

func TestEdgeCount(t *testing.T) {
	db, _, _ := setupTestDB(t)

	count, err := db.EdgeCount()
	if err != nil {
		t.Fatalf("EdgeCount() error = %v", err)
	}
	if count != 3 {
		t.Errorf("EdgeCount() = %d, want 3", count)
	}
}

func TestNeighbors(t *testing.T) {
	db, _, _ := setupTestDB(t)

	got, err := db.Neighbors("hub")
	if err != nil {
		t.Fatalf("Neighbors(hub) error = %v", err)
	}
	want := []string{"a", "b"}
	if len(got) != len(want) {
		t.Fatalf("Neighbors(hub) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Neighbors(hub)[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	none, err := db.Neighbors("isolated")
	if err != nil {
		t.Fatalf("Neighbors(isolated) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Neighbors(isolated) = %v, want empty", none)
	}
}

func TestEdgesOf(t *testing.T) {
	db, _, _ := setupTestDB(t)

	edges, err := db.EdgesOf("a")
	if err != nil {
		t.Fatalf("EdgesOf(a) error = %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("EdgesOf(a) returned %d edges, want 2", len(edges))
	}
	if edges[0].Key().String() != "a--b" {
		t.Errorf("first edge = %s, want a--b", edges[0].Key())
	}
	if edges[0].Kind != "coauthor" {
		t.Errorf("edge kind = %q, want coauthor", edges[0].Kind)
	}
	if edges[1].Weight != 2 {
		t.Errorf("hub--a weight = %v, want 2", edges[1].Weight)
	}
}
