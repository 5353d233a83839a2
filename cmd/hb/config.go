package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/matsen/hairball/internal/config"
	"github.com/matsen/hairball/internal/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  hb config                  # Show the resolved config
  hb config theme            # Get a specific value
  hb config theme light      # Set a value in the repository config

Keys:
  max-nodes   Node budget for reduction
  theme       Color theme (dark, light)
  renderer    Backend preference (auto, vector, raster, soft)
  frame-rate  Scheduler frames per second
  seed        Seed for reproducible reduction and layout

Shown values are resolved from defaults, the global config, the
repository config, and HAIRBALL_* environment variables, in that
order. Setting a value writes the repository config only.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	repoRoot := mustFindRepository()

	// No args: show the resolved config
	if len(args) == 0 {
		cfg := mustResolveConfig(repoRoot)
		if humanOutput {
			fmt.Printf("max-nodes:  %d\n", cfg.DefaultMaxNodes)
			fmt.Printf("theme:      %s\n", cfg.Theme)
			fmt.Printf("renderer:   %s\n", cfg.Renderer)
			fmt.Printf("frame-rate: %d\n", cfg.FrameRate)
			if cfg.Seed != 0 {
				fmt.Printf("seed:       %d\n", cfg.Seed)
			}
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := normalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		cfg := mustResolveConfig(repoRoot)
		switch key {
		case "max-nodes":
			printValue("max_nodes", cfg.DefaultMaxNodes)
		case "theme":
			printValue("theme", cfg.Theme)
		case "renderer":
			printValue("renderer", cfg.Renderer)
		case "frame-rate":
			printValue("frame_rate", cfg.FrameRate)
		case "seed":
			printValue("seed", cfg.Seed)
		default:
			exitWithError(ExitError, "unknown configuration key: %s", args[0])
		}
		return nil
	}

	// Two args: set value in the repository config
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	value := args[1]

	switch key {
	case "max-nodes":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			exitWithError(ExitConfigError, "max-nodes must be a positive integer, got %q", value)
		}
		cfg.DefaultMaxNodes = n

	case "theme":
		if _, err := style.ThemeByName(value); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.Theme = value

	case "renderer":
		if err := config.ValidateRenderer(value); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.Renderer = value

	case "frame-rate":
		fps, err := strconv.Atoi(value)
		if err != nil {
			exitWithError(ExitConfigError, "frame-rate must be an integer, got %q", value)
		}
		if err := config.ValidateFrameRate(fps); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.FrameRate = fps

	case "seed":
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			exitWithError(ExitConfigError, "seed must be an integer, got %q", value)
		}
		cfg.Seed = seed

	default:
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}

	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    key,
			Value:  value,
		})
	}

	return nil
}

// printValue writes a single config value, bare for humans and as a
// one-key object for JSON consumers.
func printValue(key string, value interface{}) {
	if humanOutput {
		fmt.Println(value)
		return
	}
	outputJSON(map[string]interface{}{key: value})
}

// normalizeKey converts key formats (max_nodes, MaxNodes) to the
// dashed form used in documentation.
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
