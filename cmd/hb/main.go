// Package main provides the hb CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/matsen/hairball/internal/config"
	"github.com/matsen/hairball/internal/graph"
	"github.com/matsen/hairball/internal/storage"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hb",
	Short: "Graph reduction and rendering CLI",
	Long: `hb reduces large citation and co-authorship networks to a drawable
size and renders them.

Core features:
  - Sanitizing and analyzing node/edge data (degrees, hubs, isolates)
  - Degree-threshold reduction with hub preservation and community merge
  - Deterministic force-directed layout
  - Rendering to SVG, PNG, and self-contained HTML viewers

Data is stored in git-versionable JSONL with ephemeral SQLite for queries.
All commands output JSON by default for scripted use.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// mustFindRepository finds and validates the repository, exits on error.
// Returns the repository root path.
func mustFindRepository() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	repoRoot, err := config.FindRepository(cwd)
	if err != nil {
		exitWithError(ExitConfigError, "not in a hairball repository\n\nRun 'hb init' to create one here.")
	}
	return repoRoot
}

// mustResolveConfig resolves the effective configuration, exits on error.
func mustResolveConfig(repoRoot string) *config.Config {
	cfg, err := config.Resolve(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenDatabase opens the SQLite cache, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustLoadGraph reads the stored graph, exits on error.
func mustLoadGraph(repoRoot string) ([]graph.Node, []graph.Edge) {
	nodes, err := storage.LoadNodes(config.NodesPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "loading nodes: %v", err)
	}
	edges, err := storage.LoadEdges(config.EdgesPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "loading edges: %v", err)
	}
	return nodes, edges
}
