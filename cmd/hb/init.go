package main

import (
	"os"

	"github.com/matsen/hairball/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a hairball repository",
	Long: `Create a .hairball directory with default configuration.

The repository holds nodes.jsonl and edges.jsonl as the source of truth
plus an ephemeral cache directory.

Examples:
  hb init
  hb init ~/graphs/citations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	abs, err := os.Getwd()
	if err == nil && root == "." {
		root = abs
	}

	if _, err := config.Init(root); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if humanOutput {
		outputHuman("Initialized hairball repository in %s\n", config.HairballPath(root))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.HairballPath(root)})
	}
	return nil
}
