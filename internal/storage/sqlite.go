package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/matsen/hairball/internal/graph"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite cache connection.
type DB struct {
	db *sql.DB
}

// selectNodeFields contains the standard field list for node SELECT queries.
const selectNodeFields = `id, label, degree, citations, year, attrs_json`

// metaContentHash is the meta key holding the JSONL content hash at the
// time of the last rebuild.
const metaContentHash = "content_hash"

// OpenDB opens or creates the cache database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the cache schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			label TEXT,
			degree INTEGER NOT NULL DEFAULT 0,
			citations INTEGER NOT NULL DEFAULT 0,
			year INTEGER,
			attrs_json TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_degree ON nodes(degree);

		CREATE TABLE IF NOT EXISTS edges (
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			weight REAL NOT NULL DEFAULT 1,
			directed INTEGER NOT NULL DEFAULT 0,
			kind TEXT,
			PRIMARY KEY (source, target)
		);

		CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source);
		CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target);

		-- Bookkeeping for staleness checks against the JSONL truth.
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildCache clears the cache and rebuilds it from the JSONL files.
// Degrees are computed here so degree queries never need the edge
// table. Returns the number of nodes and edges loaded.
func (d *DB) RebuildCache(nodesPath, edgesPath string) (int, int, error) {
	nodes, err := LoadNodes(nodesPath)
	if err != nil {
		return 0, 0, fmt.Errorf("reading nodes JSONL: %w", err)
	}
	edges, err := LoadEdges(edgesPath)
	if err != nil {
		return 0, 0, fmt.Errorf("reading edges JSONL: %w", err)
	}
	degrees := graph.ComputeDegrees(nodes, edges)

	if _, err := d.db.Exec("DELETE FROM nodes"); err != nil {
		return 0, 0, fmt.Errorf("clearing nodes table: %w", err)
	}
	if _, err := d.db.Exec("DELETE FROM edges"); err != nil {
		return 0, 0, fmt.Errorf("clearing edges table: %w", err)
	}

	nodeStmt, err := d.db.Prepare(`
		INSERT INTO nodes (id, label, degree, citations, year, attrs_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("preparing nodes insert: %w", err)
	}
	defer nodeStmt.Close()

	edgeStmt, err := d.db.Prepare(`
		INSERT OR REPLACE INTO edges (source, target, weight, directed, kind)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("preparing edges insert: %w", err)
	}
	defer edgeStmt.Close()

	for _, n := range nodes {
		var attrsJSON []byte
		if len(n.Attrs) > 0 {
			attrsJSON, err = json.Marshal(n.Attrs)
			if err != nil {
				return 0, 0, fmt.Errorf("marshaling attrs for %s: %w", n.ID, err)
			}
		}
		_, err = nodeStmt.Exec(
			n.ID, nullableStringValue(n.Label), degrees[n.ID], n.Citations,
			nullableInt(n.Year), nullableString(attrsJSON),
		)
		if err != nil {
			return 0, 0, fmt.Errorf("inserting node %s: %w", n.ID, err)
		}
	}

	for _, e := range edges {
		weight := e.Weight
		if weight == 0 {
			weight = 1
		}
		_, err = edgeStmt.Exec(e.Source, e.Target, weight, boolInt(e.Directed), nullableStringValue(e.Kind))
		if err != nil {
			return 0, 0, fmt.Errorf("inserting edge %s: %w", e.Key(), err)
		}
	}

	hash, err := ContentHash(nodesPath, edgesPath)
	if err != nil {
		return 0, 0, fmt.Errorf("hashing JSONL: %w", err)
	}
	if err := d.setMeta(metaContentHash, hash); err != nil {
		return 0, 0, fmt.Errorf("recording content hash: %w", err)
	}

	return len(nodes), len(edges), nil
}

// Stale reports whether the JSONL files have changed since the last
// rebuild. A cache that has never been rebuilt is stale.
func (d *DB) Stale(nodesPath, edgesPath string) (bool, error) {
	stored, ok, err := d.getMeta(metaContentHash)
	if err != nil {
		return false, fmt.Errorf("reading content hash: %w", err)
	}
	if !ok {
		return true, nil
	}

	current, err := ContentHash(nodesPath, edgesPath)
	if err != nil {
		return false, fmt.Errorf("hashing JSONL: %w", err)
	}
	return current != stored, nil
}

// NodeCount returns the number of cached nodes.
func (d *DB) NodeCount() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&count)
	return count, err
}

// Degrees returns the cached degree of every node.
func (d *DB) Degrees() (graph.DegreeMap, error) {
	rows, err := d.db.Query("SELECT id, degree FROM nodes")
	if err != nil {
		return nil, fmt.Errorf("querying degrees: %w", err)
	}
	defer rows.Close()

	degrees := make(graph.DegreeMap)
	for rows.Next() {
		var id string
		var degree int
		if err := rows.Scan(&id, &degree); err != nil {
			return nil, err
		}
		degrees[id] = degree
	}
	return degrees, rows.Err()
}

// TopByDegree returns the limit highest-degree nodes, ties broken by id
// so repeated calls page stably.
func (d *DB) TopByDegree(limit int) ([]graph.Node, error) {
	rows, err := d.db.Query(`
		SELECT `+selectNodeFields+`
		FROM nodes
		ORDER BY degree DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top degrees: %w", err)
	}
	defer rows.Close()

	return scanNodes(rows)
}

// GetNode retrieves a single node by id, nil if absent.
func (d *DB) GetNode(id string) (*graph.Node, error) {
	row := d.db.QueryRow(`SELECT `+selectNodeFields+` FROM nodes WHERE id = ?`, id)
	return scanNode(row)
}

func (d *DB) setMeta(key, value string) error {
	_, err := d.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

func (d *DB) getMeta(key string) (string, bool, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(s scanner) (*graph.Node, error) {
	var n graph.Node
	var label, attrsJSON sql.NullString
	var year sql.NullInt64

	err := s.Scan(&n.ID, &label, &n.Degree, &n.Citations, &year, &attrsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	n.Label = label.String
	if year.Valid {
		n.Year = int(year.Int64)
	}
	if attrsJSON.Valid && attrsJSON.String != "" {
		if err := json.Unmarshal([]byte(attrsJSON.String), &n.Attrs); err != nil {
			return nil, fmt.Errorf("parsing attrs JSON for %s: %w", n.ID, err)
		}
	}

	return &n, nil
}

func scanNodes(rows *sql.Rows) ([]graph.Node, error) {
	var nodes []graph.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		if n != nil {
			nodes = append(nodes, *n)
		}
	}
	return nodes, rows.Err()
}

func nullableString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullableInt converts an int to sql.NullInt64, treating zero as NULL.
func nullableInt(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
