package main

import (
	"fmt"
	"strings"

	"github.com/matsen/hairball/internal/config"
	"github.com/matsen/hairball/internal/graph"
	"github.com/matsen/hairball/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cleanDryRun bool
	cleanStrict bool
)

func init() {
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Report what would be dropped without writing")
	cleanCmd.Flags().BoolVar(&cleanStrict, "strict", false, "Fail if the stored graph has validation issues")
	rootCmd.AddCommand(cleanCmd)
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Sanitize the stored graph",
	Long: `Drop duplicate nodes, self-loops, duplicate edges, and edges whose
endpoints are missing, then rewrite the JSONL files.

First occurrence wins for duplicates. Use --dry-run to see the counts
without modifying anything, and --strict to exit with an error instead
of repairing when the stored graph has issues.`,
	RunE: runClean,
}

// CleanResult is the response for the clean command.
type CleanResult struct {
	Status         string `json:"status"`
	Nodes          int    `json:"nodes"`
	Edges          int    `json:"edges"`
	DuplicateNodes int    `json:"duplicate_nodes"`
	SelfLoops      int    `json:"self_loops"`
	DuplicateEdges int    `json:"duplicate_edges"`
	DanglingEdges  int    `json:"dangling_edges"`
}

func runClean(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	nodes, edges := mustLoadGraph(repoRoot)

	if cleanStrict {
		if issues := graph.Validate(nodes, edges); len(issues) > 0 {
			exitWithError(ExitDataError, "validation failed: %s", summarizeIssues(issues))
		}
	}

	res := graph.Sanitize(nodes, edges)

	status := "cleaned"
	if cleanDryRun {
		status = "dry-run"
	} else {
		if err := storage.SaveNodes(config.NodesPath(repoRoot), res.Nodes); err != nil {
			exitWithError(ExitError, "saving nodes: %v", err)
		}
		if err := storage.SaveEdges(config.EdgesPath(repoRoot), res.Edges); err != nil {
			exitWithError(ExitError, "saving edges: %v", err)
		}
	}

	if humanOutput {
		outputHuman("%d nodes, %d edges kept\n", len(res.Nodes), len(res.Edges))
		outputHuman("dropped: %d duplicate nodes, %d self-loops, %d duplicate edges, %d dangling edges\n",
			res.DuplicateNodes, res.SelfLoops, res.DuplicateEdges, res.DanglingEdges)
		if cleanDryRun {
			outputHuman("(dry run, nothing written)\n")
		}
	} else {
		outputJSON(CleanResult{
			Status:         status,
			Nodes:          len(res.Nodes),
			Edges:          len(res.Edges),
			DuplicateNodes: res.DuplicateNodes,
			SelfLoops:      res.SelfLoops,
			DuplicateEdges: res.DuplicateEdges,
			DanglingEdges:  res.DanglingEdges,
		})
	}
	return nil
}

// summarizeIssues flattens a validation issue list into one message,
// capped at five issues.
func summarizeIssues(issues []string) string {
	const max = 5
	if len(issues) <= max {
		return strings.Join(issues, "; ")
	}
	return fmt.Sprintf("%s; and %d more", strings.Join(issues[:max], "; "), len(issues)-max)
}
