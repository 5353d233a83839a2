package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/matsen/hairball/internal/graph"
	"github.com/matsen/hairball/internal/layout"
	"github.com/matsen/hairball/internal/reduce"
	"github.com/matsen/hairball/internal/render"
	"github.com/matsen/hairball/internal/style"
	"github.com/matsen/hairball/internal/worker"
	"github.com/spf13/cobra"
)

var (
	renderOut            string
	renderWidth          int
	renderHeight         int
	renderTheme          string
	renderBackendName    string
	renderMaxNodes       int
	renderTicks          int
	renderSeed           int64
	renderDegreeWeighted bool
	renderAttribute      string
	renderLogScale       bool
	renderOffline        bool
	renderTitle          string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the graph to SVG, PNG, or HTML",
	Long: `Render the graph to SVG, PNG, or HTML.

Runs the full pipeline: sanitize, reduce to the node budget, style,
force layout, draw. The output format follows the --out extension.
SVG needs the vector backend; PNG uses the raster backend with a
pure-Go fallback; HTML embeds the positions in a standalone viewer
page (--offline skips the CDN script so the page works without a
network).`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderOut, "out", "graph.html", "Output file (.svg, .png, or .html)")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "Viewport width in pixels")
	renderCmd.Flags().IntVar(&renderHeight, "height", 0, "Viewport height in pixels")
	renderCmd.Flags().StringVar(&renderTheme, "theme", "", "Color theme (default from config)")
	renderCmd.Flags().StringVar(&renderBackendName, "renderer", "", "Backend: auto, vector, raster, or soft (default from config)")
	renderCmd.Flags().IntVar(&renderMaxNodes, "max-nodes", 0, "Node budget for reduction (default from config)")
	renderCmd.Flags().IntVar(&renderTicks, "ticks", DefaultLayoutTicks, "Maximum simulation ticks")
	renderCmd.Flags().Int64Var(&renderSeed, "seed", 0, "Seed for reproducible output (default from config)")
	renderCmd.Flags().BoolVar(&renderDegreeWeighted, "degree-weighted", false, "Scale layout forces by node degree")
	renderCmd.Flags().StringVar(&renderAttribute, "attribute", "", "Color nodes by attribute (degree or citations)")
	renderCmd.Flags().BoolVar(&renderLogScale, "log-scale", false, "Log-compress the attribute range")
	renderCmd.Flags().BoolVar(&renderOffline, "offline", false, "Self-contained HTML without CDN scripts")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "HTML page title")
	rootCmd.AddCommand(renderCmd)
}

// RenderResult is the JSON output of the render command.
type RenderResult struct {
	Status  string       `json:"status"`
	Out     string       `json:"out"`
	Format  string       `json:"format"`
	Backend string       `json:"backend"`
	Nodes   int          `json:"nodes"`
	Edges   int          `json:"edges"`
	Removed int          `json:"removed,omitempty"`
	Level   reduce.Level `json:"level"`
	Ticks   int          `json:"ticks"`
	LOD     bool         `json:"lod"`
}

func runRender(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	root := mustFindRepository()
	cfg := mustResolveConfig(root)

	format, err := outputFormat(renderOut)
	if err != nil {
		exitWithError(ExitRenderError, "%v", err)
	}

	themeName := cfg.Theme
	if renderTheme != "" {
		themeName = renderTheme
	}
	theme, err := style.ThemeByName(themeName)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	backendName := cfg.Renderer
	if renderBackendName != "" {
		backendName = renderBackendName
	}
	seed := cfg.Seed
	if renderSeed != 0 {
		seed = renderSeed
	}

	// Sanitize and reduce before anything touches a backend.
	nodes, edges := mustLoadGraph(root)
	clean := graph.Sanitize(nodes, edges)

	ropts := reduce.DefaultOptions()
	ropts.MaxNodes = cfg.DefaultMaxNodes
	ropts.Seed = seed
	if renderMaxNodes > 0 {
		ropts.MaxNodes = renderMaxNodes
	}
	red := reduce.Reduce(clean.Nodes, clean.Edges, ropts)
	degrees := graph.ComputeDegrees(red.Nodes, red.Edges)

	// Colors and sizes are independent, so they run on the worker pool
	// in parallel.
	sopts := style.DefaultOptions()
	sopts.Theme = themeName
	sopts.LogScale = renderLogScale
	if renderAttribute != "" {
		if renderAttribute != style.AttrDegree && renderAttribute != style.AttrCitations {
			exitWithError(ExitConfigError, "unknown attribute %q (valid: degree, citations)", renderAttribute)
		}
		sopts.Attribute = renderAttribute
	}
	styles, err := computeStyles(cmd.Context(), red.Nodes, degrees, sopts)
	if err != nil {
		exitWithError(ExitRenderError, "computing styles: %v", err)
	}

	var simCfg layout.SimulationConfig
	if renderDegreeWeighted {
		simCfg = layout.ConfigureDegreeWeightedFor(len(red.Nodes))
	} else {
		simCfg = layout.ConfigureFor(len(red.Nodes))
	}
	sim := layout.NewSimulation(red.Nodes, red.Edges, simCfg, seed)
	ticks := sim.Run(renderTicks)

	elements := len(red.Nodes) + len(red.Edges)
	chain, err := backendChain(backendName, format, elements)
	if err != nil {
		exitWithError(ExitRenderError, "%v", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sched := render.NewFrameScheduler(ctx, float64(cfg.FrameRate))
	defer sched.Stop()

	engine, err := render.NewEngine(chain, sched, render.EngineOptions{
		Width:  renderWidth,
		Height: renderHeight,
		Theme:  theme,
	})
	if err != nil {
		exitWithError(ExitRenderError, "initializing renderer: %v", err)
	}
	if err := engine.Render(red.Nodes, red.Edges, styles); err != nil {
		exitWithError(ExitRenderError, "rendering: %v", err)
	}
	if err := engine.UpdatePositions(sim.Positions()); err != nil {
		exitWithError(ExitRenderError, "applying layout: %v", err)
	}

	if err := exportTo(engine, renderOut, format, &simCfg); err != nil {
		exitWithError(ExitRenderError, "exporting: %v", err)
	}

	res := RenderResult{
		Status:  "rendered",
		Out:     renderOut,
		Format:  format,
		Backend: chain.Name(),
		Nodes:   len(red.Nodes),
		Edges:   len(red.Edges),
		Removed: red.RemovedCount,
		Level:   red.Level,
		Ticks:   ticks,
		LOD:     elements > render.DefaultLODThreshold,
	}

	if humanOutput {
		fmt.Printf("Rendered %d nodes and %d edges to %s (%s backend)\n",
			res.Nodes, res.Edges, res.Out, res.Backend)
		if res.Removed > 0 {
			fmt.Printf("Reduction: removed %d nodes (%s)\n", res.Removed, res.Level)
		}
		return nil
	}
	return outputJSON(res)
}

// computeStyles fans color and size generation out to the worker pool
// and waits for both results.
func computeStyles(ctx context.Context, nodes []graph.Node, degrees graph.DegreeMap, opts style.Options) (render.Styles, error) {
	mbox := worker.NewMailbox(0)
	pool := worker.NewPool(ctx, 0, 0, mbox)
	defer pool.Stop()

	pl := worker.Payload{Nodes: nodes, Degrees: degrees, Style: opts}
	if _, err := pool.Submit(ctx, worker.TaskGenerateColors, pl); err != nil {
		return render.Styles{}, err
	}
	if _, err := pool.Submit(ctx, worker.TaskCalculateSizes, pl); err != nil {
		return render.Styles{}, err
	}

	var st render.Styles
	for i := 0; i < 2; i++ {
		select {
		case resp := <-mbox.Receive():
			if !resp.Success {
				return render.Styles{}, fmt.Errorf("%s: %s", resp.Type, resp.Error)
			}
			switch resp.Type {
			case worker.TaskGenerateColors:
				st.Colors = resp.Result.Colors
			case worker.TaskCalculateSizes:
				st.Sizes = resp.Result.Sizes
			}
		case <-ctx.Done():
			return render.Styles{}, ctx.Err()
		}
	}
	return st, nil
}

// outputFormat maps the output file extension to an export format.
func outputFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return "svg", nil
	case ".png":
		return "png", nil
	case ".html", ".htm":
		return "html", nil
	default:
		return "", fmt.Errorf("cannot infer format of %s (use .svg, .png, or .html)", path)
	}
}

// backendChain picks the backend stack for a renderer name and output
// format. Vector can only write SVG and the raster pair can only write
// PNG, so explicit choices are checked against the format up front.
func backendChain(name, format string, elements int) (*render.Chain, error) {
	switch name {
	case "", "auto":
		switch format {
		case "svg":
			return render.NewChain(render.NewVectorBackend()), nil
		case "png":
			return render.NewChain(render.NewRasterBackend(), render.NewSoftBackend()), nil
		default:
			return render.ChainFor(elements), nil
		}
	case "vector":
		if format == "png" {
			return nil, fmt.Errorf("the vector renderer cannot write png (use an .svg or .html output)")
		}
		return render.NewChain(render.NewVectorBackend()), nil
	case "raster":
		if format == "svg" {
			return nil, fmt.Errorf("the raster renderer cannot write svg (use a .png or .html output)")
		}
		return render.NewChain(render.NewRasterBackend(), render.NewSoftBackend()), nil
	case "soft":
		if format == "svg" {
			return nil, fmt.Errorf("the soft renderer cannot write svg (use a .png or .html output)")
		}
		return render.NewChain(render.NewSoftBackend()), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", name)
	}
}

// exportTo writes the rendered scene to the output file.
func exportTo(engine *render.Engine, path, format string, simCfg *layout.SimulationConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if format == "html" {
		opts := render.DefaultHTMLOptions()
		opts.Offline = renderOffline
		if renderTitle != "" {
			opts.Title = renderTitle
		}
		if !opts.Offline {
			opts.Sim = simCfg
		}
		return engine.ExportHTML(f, opts)
	}
	return engine.ExportImage(f, format)
}
