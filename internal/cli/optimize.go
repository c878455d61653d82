package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/untangle/pkg/cache"
	"github.com/matzehuels/untangle/pkg/graph"
	"github.com/matzehuels/untangle/pkg/layout"
	"github.com/matzehuels/untangle/pkg/pipeline"
	"github.com/matzehuels/untangle/pkg/render/svg"
)

// optimizeOpts holds the command-line flags for the optimize command.
type optimizeOpts struct {
	output   string // output base path for file formats (json, svg)
	formats  []string
	noCache  bool // disable the layout cache entirely
	refresh  bool // bypass the cache on read, still write back
	validate bool // reject graphs with duplicate IDs or dangling edges

	layout layout.Options
	render svg.Options
}

// newOptimizeCmd creates the optimize command. It reads a graph drawing
// from a JSON file, runs the force simulation, and reports the metric
// deltas.
//
// Default settings:
//   - format: report (text summary to stdout)
//   - simulation: 300 iterations on an 800x600 internal canvas
//   - caching: enabled, keyed by graph content and simulation options
func newOptimizeCmd(configPath *string) *cobra.Command {
	var formatsStr string
	var opts optimizeOpts

	cmd := &cobra.Command{
		Use:   "optimize [file]",
		Short: "Optimize a graph drawing and report the metric changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return runOptimize(cmd.Context(), args[0], *configPath, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path for json/svg files (default: input path)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): report (default), json, svg (comma-separated)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute the layout even when cached")
	cmd.Flags().BoolVar(&opts.validate, "validate", false, "reject graphs with duplicate vertex IDs or unknown edge endpoints")

	cmd.Flags().Float64Var(&opts.layout.Width, "width", 0, "simulation canvas width (default 800)")
	cmd.Flags().Float64Var(&opts.layout.Height, "height", 0, "simulation canvas height (default 600)")
	cmd.Flags().IntVar(&opts.layout.Iterations, "iterations", 0, "simulation ticks (default 300)")
	cmd.Flags().Float64Var(&opts.layout.Alpha, "alpha", 0, "initial simulation temperature (default 1.0)")
	cmd.Flags().Float64Var(&opts.layout.AlphaDecay, "alpha-decay", 0, "per-tick alpha decay rate (default 0.0228)")
	cmd.Flags().Float64Var(&opts.layout.VelocityDecay, "velocity-decay", 0, "per-tick velocity friction (default 0.4)")
	cmd.Flags().Float64Var(&opts.layout.ChargeStrength, "charge", 0, "vertex repulsion strength (default -30)")
	cmd.Flags().Float64Var(&opts.layout.LinkDistance, "link-distance", 0, "edge spring rest length (default 30)")
	cmd.Flags().Float64Var(&opts.layout.LinkStrength, "link-strength", 0, "edge spring stiffness (default 0.7)")
	cmd.Flags().Float64Var(&opts.layout.CollideRadius, "collide-radius", 0, "vertex collision radius (default 12)")

	cmd.Flags().Float64Var(&opts.render.Radius, "radius", 0, "svg vertex disc radius (default 8)")
	cmd.Flags().BoolVar(&opts.render.ShowLabels, "labels", true, "draw vertex labels in svg output")

	return cmd
}

// runOptimize executes the optimization pipeline and writes the requested
// outputs.
func runOptimize(ctx context.Context, input, configPath string, opts *optimizeOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	mergeLayoutOptions(&opts.layout, cfg.Layout)
	mergeRenderOptions(&opts.render, cfg.Render)

	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return err
	}
	if opts.validate {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("invalid graph %s: %w", input, err)
		}
	}
	logger.Debug("loaded graph", "file", input, "vertices", g.VertexCount(), "edges", g.EdgeCount())

	var backend cache.Cache
	if opts.noCache {
		backend = cache.NewNullCache()
	} else {
		backend, err = openCache(ctx, cfg.Cache)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
	}

	runner := pipeline.NewRunner(backend, nil, logger)
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Optimizing %s...", filepath.Base(input)))
	spinner.Start()

	result, err := runner.Execute(ctx, g, pipeline.Options{
		Layout:  opts.layout,
		Formats: opts.formats,
		Refresh: opts.refresh,
		Logger:  logger,
	})
	if err != nil {
		if spinner.Cancelled() || errors.Is(err, context.Canceled) {
			spinner.Stop()
			return context.Canceled
		}
		spinner.StopWithError(fmt.Sprintf("Optimization failed: %v", err))
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Optimized %d vertices", result.Stats.VertexCount))

	printStats(result.Stats.VertexCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
	return writeOutputs(ctx, runner, input, result, opts)
}

// writeOutputs produces each requested format. The report goes to
// stdout; json and svg go to files next to the input (or opts.output).
func writeOutputs(ctx context.Context, runner *pipeline.Runner, input string, result *pipeline.Result, opts *optimizeOpts) error {
	base := outputBase(opts.output, input)

	for _, format := range opts.formats {
		switch format {
		case pipeline.FormatReport:
			if err := pipeline.WriteReport(os.Stdout, result); err != nil {
				return err
			}

		case pipeline.FormatJSON:
			data, err := pipeline.MarshalResult(result)
			if err != nil {
				return err
			}
			path := base + ".untangled.json"
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			printFile(path)

		case pipeline.FormatSVG:
			data, err := runner.RenderArtifact(ctx, result.Optimized, result.Edges, opts.render)
			if err != nil {
				return err
			}
			path := base + ".untangled.svg"
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			printFile(path)
		}
	}
	return nil
}

// outputBase derives the base output path. An explicit -o wins; known
// output extensions are stripped so "-o out.svg" and "-o out" agree.
func outputBase(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".json", ".svg":
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return output
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["report"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatReport}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// mergeLayoutOptions fills zero-valued flag fields from the config file.
// ApplyDefaults later fills whatever is still zero.
func mergeLayoutOptions(dst *layout.Options, src layout.Options) {
	if dst.Width == 0 {
		dst.Width = src.Width
	}
	if dst.Height == 0 {
		dst.Height = src.Height
	}
	if dst.Iterations == 0 {
		dst.Iterations = src.Iterations
	}
	if dst.Alpha == 0 {
		dst.Alpha = src.Alpha
	}
	if dst.AlphaDecay == 0 {
		dst.AlphaDecay = src.AlphaDecay
	}
	if dst.VelocityDecay == 0 {
		dst.VelocityDecay = src.VelocityDecay
	}
	if dst.ChargeStrength == 0 {
		dst.ChargeStrength = src.ChargeStrength
	}
	if dst.LinkDistance == 0 {
		dst.LinkDistance = src.LinkDistance
	}
	if dst.LinkStrength == 0 {
		dst.LinkStrength = src.LinkStrength
	}
	if dst.CollideRadius == 0 {
		dst.CollideRadius = src.CollideRadius
	}
}

// mergeRenderOptions fills zero-valued flag fields from the config file.
func mergeRenderOptions(dst *svg.Options, src svg.Options) {
	if dst.Width == 0 {
		dst.Width = src.Width
	}
	if dst.Height == 0 {
		dst.Height = src.Height
	}
	if dst.Radius == 0 {
		dst.Radius = src.Radius
	}
	if dst.Background == "" {
		dst.Background = src.Background
	}
	if dst.VertexFill == "" {
		dst.VertexFill = src.VertexFill
	}
	if dst.EdgeStroke == "" {
		dst.EdgeStroke = src.EdgeStroke
	}
	if dst.LabelFill == "" {
		dst.LabelFill = src.LabelFill
	}
}
