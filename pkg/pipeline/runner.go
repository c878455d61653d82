package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/untangle/pkg/cache"
	"github.com/matzehuels/untangle/pkg/graph"
	"github.com/matzehuels/untangle/pkg/layout"
	"github.com/matzehuels/untangle/pkg/metrics"
	"github.com/matzehuels/untangle/pkg/observability"
	"github.com/matzehuels/untangle/pkg/render/svg"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different graphs and options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete measure → layout → measure pipeline.
// The input graph is treated as read-only throughout.
func (r *Runner) Execute(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:    uuid.NewString(),
		Original: g.Clone().Vertices,
		Edges:    g.Clone().Edges,
	}
	result.Stats.VertexCount = g.VertexCount()
	result.Stats.EdgeCount = g.EdgeCount()

	// Stage 1: Measure the input drawing
	measureStart := time.Now()
	observability.Pipeline().OnMeasureStart(ctx, observability.PhaseBefore, g.VertexCount(), g.EdgeCount())
	result.Before = metrics.Measure(g.Vertices, g.Edges)
	observability.Pipeline().OnMeasureComplete(ctx, observability.PhaseBefore, result.Before.Crossings, time.Since(measureStart))
	result.Stats.MeasureTime = time.Since(measureStart)

	r.Logger.Info("measured input drawing",
		"vertices", g.VertexCount(),
		"edges", g.EdgeCount(),
		"crossings", result.Before.Crossings)

	// Stage 2: Layout
	layoutStart := time.Now()
	optimized, layoutHit, err := r.OptimizeWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Optimized = optimized
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"iterations", opts.Layout.Iterations,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Measure the optimized drawing
	measureStart = time.Now()
	observability.Pipeline().OnMeasureStart(ctx, observability.PhaseAfter, len(optimized), len(g.Edges))
	result.After = metrics.Measure(optimized, g.Edges)
	observability.Pipeline().OnMeasureComplete(ctx, observability.PhaseAfter, result.After.Crossings, time.Since(measureStart))
	result.Stats.MeasureTime += time.Since(measureStart)

	result.Bounded = graph.WithinUnitSquare(optimized)

	r.Logger.Info("measured optimized drawing",
		"crossings", result.After.Crossings,
		"bounded", result.Bounded)

	return result, nil
}

// OptimizeWithCacheInfo runs the layout stage with caching and returns
// cache hit info. The cache key covers the graph content and every
// simulation parameter, so any change recomputes.
func (r *Runner) OptimizeWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) ([]graph.Vertex, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(graphData), opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, ok := decodeVertices(data, g.VertexCount()); ok {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			// Corrupt or stale entry - fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	// Run the simulation
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, g.VertexCount(), g.EdgeCount())
	optimized, err := layout.Optimize(g, opts.Layout)
	observability.Pipeline().OnLayoutComplete(ctx, time.Since(layoutStart), err)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := json.Marshal(optimized); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return optimized, false, nil
}

// Optimize is a convenience wrapper that discards the cache hit info.
func (r *Runner) Optimize(ctx context.Context, g *graph.Graph, opts Options) ([]graph.Vertex, error) {
	optimized, _, err := r.OptimizeWithCacheInfo(ctx, g, opts)
	return optimized, err
}

// RenderArtifact renders the drawing to SVG, caching the document by
// layout content and render options. Artifacts are derived data, so they
// get the shorter [cache.TTLArtifact] lifetime.
func (r *Runner) RenderArtifact(ctx context.Context, vertices []graph.Vertex, edges []graph.Edge, opts svg.Options) ([]byte, error) {
	content, err := json.Marshal(struct {
		Vertices []graph.Vertex `json:"nodes"`
		Edges    []graph.Edge   `json:"edges"`
	}{vertices, edges})
	if err != nil {
		return nil, fmt.Errorf("serialize drawing for cache key: %w", err)
	}
	key := r.Keyer.ArtifactKey(cache.Hash(content), cache.ArtifactKeyOpts{
		Format: FormatSVG,
		Radius: opts.Radius,
		Labels: opts.ShowLabels,
	})

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	data := svg.Render(vertices, edges, opts)
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return data, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// decodeVertices parses a cached vertex slice and sanity-checks it
// against the expected count. A mismatch means the entry belongs to a
// different graph shape (hash collision or corruption) and is unusable.
func decodeVertices(data []byte, want int) ([]graph.Vertex, bool) {
	var vertices []graph.Vertex
	if err := json.Unmarshal(data, &vertices); err != nil {
		return nil, false
	}
	if len(vertices) != want {
		return nil, false
	}
	return vertices, true
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
