package main

import (
	"fmt"
	"sort"

	"github.com/matsen/hairball/internal/config"
	"github.com/matsen/hairball/internal/graph"
	"github.com/matsen/hairball/internal/storage"
	"github.com/spf13/cobra"
)

var (
	statsTop  int
	statsNode string
	statsRank bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the stored graph",
	Long: `Summarize the stored graph.

Prints node and edge counts plus degree distribution statistics.
Reads from the SQLite cache when it is current, otherwise from the
JSONL files directly. Use --node to inspect a single node instead.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsTop, "top", 0, "Include the N highest-degree nodes")
	statsCmd.Flags().StringVar(&statsNode, "node", "", "Show a single node by id")
	statsCmd.Flags().BoolVar(&statsRank, "rank", false, "Include PageRank scores in the top list")
	rootCmd.AddCommand(statsCmd)
}

// TopNode is one row of the --top listing.
type TopNode struct {
	ID     string  `json:"id"`
	Label  string  `json:"label,omitempty"`
	Degree int     `json:"degree"`
	Rank   float64 `json:"rank,omitempty"`
}

// StatsResult is the JSON output of the stats command.
type StatsResult struct {
	graph.Distribution
	Source string    `json:"source"`
	Top    []TopNode `json:"top,omitempty"`
}

// NodeStatsResult is the JSON output of stats --node.
type NodeStatsResult struct {
	ID        string   `json:"id"`
	Label     string   `json:"label,omitempty"`
	Degree    int      `json:"degree"`
	Citations int      `json:"citations"`
	Year      int      `json:"year,omitempty"`
	Neighbors []string `json:"neighbors"`
}

func runStats(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()

	if statsNode != "" {
		return runNodeStats(root, statsNode)
	}

	// PageRank needs the full edge list, which the cache does not hand
	// back, so --rank always reads the JSONL files.
	if statsRank && statsTop == 0 {
		statsTop = 10
	}
	if !statsRank {
		if res, ok := statsFromCache(root); ok {
			printStats(res)
			return nil
		}
	}

	nodes, edges := mustLoadGraph(root)
	degrees := graph.ComputeDegrees(nodes, edges)

	res := StatsResult{
		Distribution: graph.DegreeDistribution(degrees),
		Source:       "files",
	}
	if statsTop > 0 {
		var ranks map[string]float64
		if statsRank {
			ranks = graph.PageRank(nodes, edges, 0, 0)
		}
		for _, n := range graph.TopByDegree(nodes, degrees, statsTop) {
			row := TopNode{ID: n.ID, Label: n.Label, Degree: degrees[n.ID]}
			if ranks != nil {
				row.Rank = ranks[n.ID]
			}
			res.Top = append(res.Top, row)
		}
	}

	printStats(res)
	return nil
}

// statsFromCache answers from SQLite when the cache is current. Any
// failure falls back to the JSONL files rather than erroring out.
func statsFromCache(root string) (StatsResult, bool) {
	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		return StatsResult{}, false
	}
	defer db.Close()

	stale, err := db.Stale(config.NodesPath(root), config.EdgesPath(root))
	if err != nil || stale {
		return StatsResult{}, false
	}

	degrees, err := db.Degrees()
	if err != nil {
		return StatsResult{}, false
	}

	res := StatsResult{
		Distribution: graph.DegreeDistribution(degrees),
		Source:       "cache",
	}
	if statsTop > 0 {
		top, err := db.TopByDegree(statsTop)
		if err != nil {
			return StatsResult{}, false
		}
		for _, n := range top {
			res.Top = append(res.Top, TopNode{ID: n.ID, Label: n.Label, Degree: n.Degree})
		}
	}
	return res, true
}

func runNodeStats(root, id string) error {
	nodes, edges := mustLoadGraph(root)
	degrees := graph.ComputeDegrees(nodes, edges)
	adjacency := graph.BuildAdjacency(nodes, edges)

	var found *graph.Node
	for i := range nodes {
		if nodes[i].ID == id {
			found = &nodes[i]
			break
		}
	}
	if found == nil {
		exitWithError(ExitDataError, "node %q not found", id)
	}

	res := NodeStatsResult{
		ID:        found.ID,
		Label:     found.Label,
		Degree:    degrees[found.ID],
		Citations: found.Citations,
		Year:      found.Year,
		Neighbors: []string{},
	}
	for neighbor := range adjacency[found.ID] {
		res.Neighbors = append(res.Neighbors, neighbor)
	}
	sort.Strings(res.Neighbors)

	if humanOutput {
		fmt.Printf("%s", res.ID)
		if res.Label != "" {
			fmt.Printf("  %s", truncateString(res.Label, ListLabelMaxLen))
		}
		fmt.Println()
		fmt.Printf("  degree %d, citations %d", res.Degree, res.Citations)
		if res.Year != 0 {
			fmt.Printf(", year %d", res.Year)
		}
		fmt.Println()
		if len(res.Neighbors) > 0 {
			fmt.Printf("  neighbors: %v\n", res.Neighbors)
		}
		return nil
	}
	return outputJSON(res)
}

func printStats(res StatsResult) {
	if !humanOutput {
		if err := outputJSON(res); err != nil {
			exitWithError(ExitError, "encoding output: %v", err)
		}
		return
	}

	fmt.Printf("Nodes: %d (%d isolated)\n", res.Nodes, res.Isolated)
	fmt.Printf("Edges: %d\n", res.Edges)
	fmt.Printf("Degree: min %d, median %.1f, mean %.2f, p90 %.1f, max %d\n",
		res.MinDeg, res.Median, res.Mean, res.P90, res.MaxDeg)
	if len(res.Top) > 0 {
		fmt.Println()
		fmt.Println("Top nodes by degree:")
		for _, n := range res.Top {
			line := fmt.Sprintf("  %4d  %s", n.Degree, n.ID)
			if n.Label != "" {
				line += "  " + truncateString(n.Label, ListLabelMaxLen)
			}
			if n.Rank > 0 {
				line += fmt.Sprintf("  (rank %.4f)", n.Rank)
			}
			fmt.Println(line)
		}
	}
}
