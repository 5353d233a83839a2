package main

import (
	"fmt"

	"github.com/matsen/hairball/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query cache from source data",
	Long: `Rebuild the SQLite query cache from the JSONL source files.

Use this after pulling changes from git or importing a large graph.
Commands that could use the cache fall back to reading the JSONL files
whenever it is stale, so rebuilding is an optimization, never a
requirement.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status string `json:"status"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	nodeCount, edgeCount, err := db.RebuildCache(config.NodesPath(repoRoot), config.EdgesPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "rebuilding cache: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt cache with %d nodes and %d edges\n", nodeCount, edgeCount)
	} else {
		outputJSON(RebuildResult{
			Status: "rebuilt",
			Nodes:  nodeCount,
			Edges:  edgeCount,
		})
	}

	return nil
}
