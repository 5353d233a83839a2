// Package storage persists graphs as JSONL files and maintains a
// disposable SQLite cache for queries that should not load the whole
// graph. The JSONL files are the source of truth; the cache can be
// deleted and rebuilt at any time.
package storage

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
// This constant is shared across all JSONL file readers.
const MaxJSONLLineCapacity = 1024 * 1024

// Standard file names inside a repository's data directory.
const (
	NodesFile = "nodes.jsonl"
	EdgesFile = "edges.jsonl"
	CacheFile = "cache.db"
)
