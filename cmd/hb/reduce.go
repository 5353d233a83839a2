package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/matsen/hairball/internal/config"
	"github.com/matsen/hairball/internal/graph"
	"github.com/matsen/hairball/internal/reduce"
	"github.com/matsen/hairball/internal/storage"
	"github.com/spf13/cobra"
)

var (
	reduceMaxNodes int
	reduceFloor    int
	reduceNoMerge  bool
	reduceSeed     int64
	reduceWrite    bool
)

var reduceCmd = &cobra.Command{
	Use:   "reduce",
	Short: "Reduce the graph to a renderable size",
	Long: `Reduce the graph to a renderable size.

Keeps the highest-degree hubs, searches for a degree threshold that
fits the node budget, and merges tightly coupled low-degree nodes into
their hubs. Prints the reduction report; --write replaces the stored
graph with the reduced one.`,
	Args: cobra.NoArgs,
	RunE: runReduce,
}

func init() {
	reduceCmd.Flags().IntVar(&reduceMaxNodes, "max-nodes", 0, "Node budget (default from config)")
	reduceCmd.Flags().IntVar(&reduceFloor, "min-degree", 0, "Lowest degree threshold to consider")
	reduceCmd.Flags().BoolVar(&reduceNoMerge, "no-merge", false, "Skip the community merge pass")
	reduceCmd.Flags().Int64Var(&reduceSeed, "seed", 0, "Seed for the sampling fallback (default from config)")
	reduceCmd.Flags().BoolVar(&reduceWrite, "write", false, "Replace the stored graph with the reduced one")
	rootCmd.AddCommand(reduceCmd)
}

// ReduceResult is the JSON output of the reduce command.
type ReduceResult struct {
	Status          string       `json:"status"`
	BeforeNodes     int          `json:"before_nodes"`
	BeforeEdges     int          `json:"before_edges"`
	Nodes           int          `json:"nodes"`
	Edges           int          `json:"edges"`
	Removed         int          `json:"removed"`
	CompressionRate int          `json:"compression_rate"`
	Level           reduce.Level `json:"level"`
	Threshold       int          `json:"threshold,omitempty"`
}

func runReduce(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	root := mustFindRepository()
	cfg := mustResolveConfig(root)
	nodes, edges := mustLoadGraph(root)

	// Reduction assumes clean input. Sanitize first so duplicates and
	// dangling edges do not skew the degree counts.
	clean := graph.Sanitize(nodes, edges)

	opts := reduce.DefaultOptions()
	opts.MaxNodes = cfg.DefaultMaxNodes
	opts.Seed = cfg.Seed
	if reduceMaxNodes > 0 {
		opts.MaxNodes = reduceMaxNodes
	}
	if reduceFloor > 0 {
		opts.MinDegreeFloor = reduceFloor
	}
	if reduceNoMerge {
		opts.EnableCommunityMerge = false
	}
	if reduceSeed != 0 {
		opts.Seed = reduceSeed
	}

	res := reduce.Reduce(clean.Nodes, clean.Edges, opts)

	status := "reduced"
	if reduceWrite {
		if err := storage.SaveNodes(config.NodesPath(root), res.Nodes); err != nil {
			exitWithError(ExitDataError, "writing nodes: %v", err)
		}
		if err := storage.SaveEdges(config.EdgesPath(root), res.Edges); err != nil {
			exitWithError(ExitDataError, "writing edges: %v", err)
		}
	} else {
		status = "preview"
	}

	out := ReduceResult{
		Status:          status,
		BeforeNodes:     len(clean.Nodes),
		BeforeEdges:     len(clean.Edges),
		Nodes:           len(res.Nodes),
		Edges:           len(res.Edges),
		Removed:         res.RemovedCount,
		CompressionRate: res.CompressionRate,
		Level:           res.Level,
		Threshold:       res.Threshold,
	}

	if humanOutput {
		fmt.Printf("Reduced %d nodes to %d (%d%% compression, %s)\n",
			out.BeforeNodes, out.Nodes, out.CompressionRate, out.Level)
		fmt.Printf("Edges: %d to %d\n", out.BeforeEdges, out.Edges)
		if out.Threshold > 0 {
			fmt.Printf("Degree threshold: %d\n", out.Threshold)
		}
		if !reduceWrite {
			fmt.Println("(preview, use --write to replace the stored graph)")
		}
		return nil
	}
	return outputJSON(out)
}
