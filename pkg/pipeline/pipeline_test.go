package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/untangle/pkg/cache"
	"github.com/matzehuels/untangle/pkg/errors"
	"github.com/matzehuels/untangle/pkg/graph"
	"github.com/matzehuels/untangle/pkg/render/svg"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// crossedGraph returns a drawing with exactly one edge crossing.
func crossedGraph() *graph.Graph {
	return &graph.Graph{
		Vertices: []graph.Vertex{
			{ID: "a", X: 0, Y: 0},
			{ID: "b", X: 1, Y: 1},
			{ID: "c", X: 0, Y: 1},
			{ID: "d", X: 1, Y: 0},
		},
		Edges: []graph.Edge{
			{Source: "a", Target: "b"},
			{Source: "c", Target: "d"},
		},
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		var opts Options
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatalf("ValidateAndSetDefaults error: %v", err)
		}
		if len(opts.Formats) != 1 || opts.Formats[0] != FormatReport {
			t.Errorf("Formats = %v, want [report]", opts.Formats)
		}
		if opts.Layout.Iterations == 0 {
			t.Error("layout defaults were not applied")
		}
		if opts.Logger == nil {
			t.Error("logger default was not applied")
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		opts := Options{Formats: []string{"gif"}}
		err := opts.ValidateAndSetDefaults()
		if err == nil {
			t.Fatal("expected error for unknown format")
		}
		if !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		opts := Options{Formats: []string{FormatJSON}}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatalf("first call error: %v", err)
		}
		first := opts.Layout
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatalf("second call error: %v", err)
		}
		if opts.Layout != first {
			t.Error("second call changed the options")
		}
	})
}

func TestRunnerExecute(t *testing.T) {
	runner := NewRunner(cache.NewNullCache(), nil, quietLogger())
	defer runner.Close()

	g := crossedGraph()
	original := g.Clone()

	result, err := runner.Execute(context.Background(), g, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if result.RunID == "" {
		t.Error("RunID should be set")
	}
	if result.Before.Crossings != 1 {
		t.Errorf("Before.Crossings = %d, want 1", result.Before.Crossings)
	}
	if !result.Bounded {
		t.Error("optimized drawing should lie within the unit square")
	}
	if result.Stats.VertexCount != 4 || result.Stats.EdgeCount != 2 {
		t.Errorf("Stats = %d/%d, want 4/2", result.Stats.VertexCount, result.Stats.EdgeCount)
	}

	// The input graph is read-only for the pipeline
	for i, v := range g.Vertices {
		if v != original.Vertices[i] {
			t.Errorf("input vertex %d changed: %+v vs %+v", i, v, original.Vertices[i])
		}
	}

	// Optimized preserves identity and order
	for i, v := range result.Optimized {
		if v.ID != original.Vertices[i].ID {
			t.Errorf("optimized vertex %d ID = %q, want %q", i, v.ID, original.Vertices[i].ID)
		}
	}
}

func TestRunnerLayoutCache(t *testing.T) {
	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	runner := NewRunner(backend, nil, quietLogger())
	defer runner.Close()

	ctx := context.Background()
	g := crossedGraph()
	opts := Options{Logger: quietLogger()}

	// First run computes
	first, err := runner.Execute(ctx, g, opts)
	if err != nil {
		t.Fatalf("first Execute error: %v", err)
	}
	if first.CacheInfo.LayoutHit {
		t.Error("first run should not hit the cache")
	}

	// Second run hits the cache and returns the same layout
	second, err := runner.Execute(ctx, g, Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("second Execute error: %v", err)
	}
	if !second.CacheInfo.LayoutHit {
		t.Error("second run should hit the cache")
	}
	for i := range first.Optimized {
		if first.Optimized[i] != second.Optimized[i] {
			t.Errorf("cached layout differs at vertex %d", i)
		}
	}

	// Refresh bypasses the cache
	third, err := runner.Execute(ctx, g, Options{Refresh: true, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("refresh Execute error: %v", err)
	}
	if third.CacheInfo.LayoutHit {
		t.Error("refresh run should not hit the cache")
	}
}

func TestRunnerCacheKeyCoversOptions(t *testing.T) {
	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	runner := NewRunner(backend, nil, quietLogger())
	defer runner.Close()

	ctx := context.Background()
	g := crossedGraph()

	if _, err := runner.Execute(ctx, g, Options{Logger: quietLogger()}); err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	// A different iteration count must not reuse the entry
	opts := Options{Logger: quietLogger()}
	opts.Layout.Iterations = 100
	result, err := runner.Execute(ctx, g, opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.CacheInfo.LayoutHit {
		t.Error("changed options should produce a cache miss")
	}
}

func TestRenderArtifactCached(t *testing.T) {
	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	runner := NewRunner(backend, nil, quietLogger())
	defer runner.Close()

	ctx := context.Background()
	g := crossedGraph()
	opts := svg.DefaultOptions()

	first, err := runner.RenderArtifact(ctx, g.Vertices, g.Edges, opts)
	if err != nil {
		t.Fatalf("RenderArtifact error: %v", err)
	}
	if !bytes.Contains(first, []byte("<svg")) {
		t.Fatal("artifact is not an SVG document")
	}

	second, err := runner.RenderArtifact(ctx, g.Vertices, g.Edges, opts)
	if err != nil {
		t.Fatalf("second RenderArtifact error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("cached artifact differs from the rendered one")
	}

	// Different render options must not reuse the entry
	opts.Radius = 3
	third, err := runner.RenderArtifact(ctx, g.Vertices, g.Edges, opts)
	if err != nil {
		t.Fatalf("third RenderArtifact error: %v", err)
	}
	if bytes.Equal(first, third) {
		t.Error("changed radius should re-render the artifact")
	}
}

func TestMarshalResultRoundTrip(t *testing.T) {
	runner := NewRunner(cache.NewNullCache(), nil, quietLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), crossedGraph(), Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	data, err := MarshalResult(result)
	if err != nil {
		t.Fatalf("MarshalResult error: %v", err)
	}

	back, err := UnmarshalResult(data)
	if err != nil {
		t.Fatalf("UnmarshalResult error: %v", err)
	}
	if back.RunID != result.RunID {
		t.Errorf("RunID = %q, want %q", back.RunID, result.RunID)
	}
	if !back.Before.Equal(result.Before) || !back.After.Equal(result.After) {
		t.Error("metrics changed across the round trip")
	}
	if len(back.Optimized) != len(result.Optimized) {
		t.Errorf("got %d vertices, want %d", len(back.Optimized), len(result.Optimized))
	}
	if back.Bounded != result.Bounded {
		t.Error("bounded flag changed across the round trip")
	}
}

func TestWriteReport(t *testing.T) {
	runner := NewRunner(cache.NewNullCache(), nil, quietLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), crossedGraph(), Options{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, result); err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"4 vertices", "2 edges", "crossings", "min vertex distance", result.RunID} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestCrossingReduction(t *testing.T) {
	tests := []struct {
		name     string
		before   int
		after    int
		want     float64
		wantOK   bool
	}{
		{"halved", 4, 2, 0.5, true},
		{"eliminated", 3, 0, 1, true},
		{"got worse", 2, 3, -0.5, true},
		{"undefined when none before", 0, 0, 0, false},
		{"undefined even when added", 0, 2, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Result{}
			r.Before.Crossings = tt.before
			r.After.Crossings = tt.after

			got, ok := r.CrossingReduction()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("CrossingReduction() = %g, want %g", got, tt.want)
			}
		})
	}
}
