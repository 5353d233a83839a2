package storage

import (
	"database/sql"
	"fmt"

	"github.com/matsen/hairball/internal/graph"
)

// EdgeCount returns the number of cached edges.
func (d *DB) EdgeCount() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM edges").Scan(&count)
	return count, err
}

// Neighbors returns the ids adjacent to a node, sorted.
func (d *DB) Neighbors(id string) ([]string, error) {
	rows, err := d.db.Query(`
		SELECT target FROM edges WHERE source = ?
		UNION
		SELECT source FROM edges WHERE target = ?
		ORDER BY 1`, id, id)
	if err != nil {
		return nil, fmt.Errorf("querying neighbors: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		ids = append(ids, n)
	}
	return ids, rows.Err()
}

// EdgesOf returns the cached edges incident to a node.
func (d *DB) EdgesOf(id string) ([]graph.Edge, error) {
	rows, err := d.db.Query(`
		SELECT source, target, weight, directed, kind
		FROM edges
		WHERE source = ? OR target = ?
		ORDER BY source, target`, id, id)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	var edges []graph.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func scanEdge(s scanner) (graph.Edge, error) {
	var e graph.Edge
	var directed int
	var kind sql.NullString

	if err := s.Scan(&e.Source, &e.Target, &e.Weight, &directed, &kind); err != nil {
		return graph.Edge{}, err
	}
	e.Directed = directed != 0
	e.Kind = kind.String
	return e, nil
}
