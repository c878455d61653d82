package layout

import (
	"testing"

	"github.com/matzehuels/untangle/pkg/errors"
	"github.com/matzehuels/untangle/pkg/graph"
)

func triangle() *graph.Graph {
	return &graph.Graph{
		Vertices: []graph.Vertex{
			{ID: "a", X: 0.2, Y: 0.2},
			{ID: "b", X: 0.8, Y: 0.2},
			{ID: "c", X: 0.5, Y: 0.8},
		},
		Edges: []graph.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
			{Source: "c", Target: "a"},
		},
	}
}

func TestOptimizePreservesIdentityAndOrder(t *testing.T) {
	g := triangle()
	out, err := Optimize(g, DefaultOptions())
	if err != nil {
		t.Fatalf("Optimize error: %v", err)
	}

	if len(out) != g.VertexCount() {
		t.Fatalf("got %d vertices, want %d", len(out), g.VertexCount())
	}
	for i, v := range out {
		if v.ID != g.Vertices[i].ID {
			t.Errorf("vertex %d ID = %q, want %q", i, v.ID, g.Vertices[i].ID)
		}
	}
}

func TestOptimizeStaysInUnitSquare(t *testing.T) {
	tests := []struct {
		name string
		g    *graph.Graph
		opts Options
	}{
		{"triangle defaults", triangle(), DefaultOptions()},
		{
			"strong repulsion pushes against bounds",
			triangle(),
			func() Options {
				o := DefaultOptions()
				o.ChargeStrength = -5000
				return o
			}(),
		},
		{
			"zero iterations clamps out-of-range input",
			&graph.Graph{Vertices: []graph.Vertex{
				{ID: "a", X: -0.5, Y: 1.5},
				{ID: "b", X: 0.5, Y: 0.5},
			}},
			func() Options {
				o := DefaultOptions()
				o.Iterations = 0
				return o
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Optimize(tt.g, tt.opts)
			if err != nil {
				t.Fatalf("Optimize error: %v", err)
			}
			if !graph.WithinUnitSquare(out) {
				t.Errorf("output escaped the unit square: %+v", out)
			}
		})
	}
}

func TestOptimizeZeroIterationsKeepsPositions(t *testing.T) {
	g := triangle()
	opts := DefaultOptions()
	opts.Iterations = 0

	out, err := Optimize(g, opts)
	if err != nil {
		t.Fatalf("Optimize error: %v", err)
	}
	for i, v := range out {
		orig := g.Vertices[i]
		if !approx(v.X, orig.X) || !approx(v.Y, orig.Y) {
			t.Errorf("vertex %s moved with zero iterations: (%g,%g) vs (%g,%g)",
				v.ID, v.X, v.Y, orig.X, orig.Y)
		}
	}
}

func TestOptimizeDoesNotMutateInput(t *testing.T) {
	g := triangle()
	before := g.Clone()

	if _, err := Optimize(g, DefaultOptions()); err != nil {
		t.Fatalf("Optimize error: %v", err)
	}

	for i, v := range g.Vertices {
		if v != before.Vertices[i] {
			t.Errorf("input vertex %d changed: %+v vs %+v", i, v, before.Vertices[i])
		}
	}
}

func TestOptimizeDeterministic(t *testing.T) {
	g := triangle()
	opts := DefaultOptions()

	a, err := Optimize(g, opts)
	if err != nil {
		t.Fatalf("first run error: %v", err)
	}
	b, err := Optimize(g, opts)
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Errorf("runs diverged at vertex %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestOptimizeSeparatesCoincidentVertices(t *testing.T) {
	g := &graph.Graph{
		Vertices: []graph.Vertex{
			{ID: "a", X: 0.5, Y: 0.5},
			{ID: "b", X: 0.5, Y: 0.5},
		},
	}

	out, err := Optimize(g, DefaultOptions())
	if err != nil {
		t.Fatalf("Optimize error: %v", err)
	}
	if out[0].X == out[1].X && out[0].Y == out[1].Y {
		t.Error("coincident vertices were not separated")
	}
}

func TestOptimizeToleratesDanglingEdges(t *testing.T) {
	g := &graph.Graph{
		Vertices: []graph.Vertex{
			{ID: "a", X: 0.3, Y: 0.3},
			{ID: "b", X: 0.7, Y: 0.7},
		},
		Edges: []graph.Edge{
			{Source: "a", Target: "b"},
			{Source: "a", Target: "ghost"},
			{Source: "b", Target: "b"},
		},
	}

	out, err := Optimize(g, DefaultOptions())
	if err != nil {
		t.Fatalf("Optimize error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d vertices, want 2", len(out))
	}
}

func TestOptimizeEmptyGraph(t *testing.T) {
	out, err := Optimize(&graph.Graph{}, DefaultOptions())
	if err != nil {
		t.Fatalf("Optimize error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %d vertices, want 0", len(out))
	}
}

func TestOptimizeRejectsInvalidDimensions(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 0

	_, err := Optimize(triangle(), opts)
	if err == nil {
		t.Fatal("Optimize should reject zero width")
	}
	if !errors.Is(err, errors.ErrCodeInvalidDimensions) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidDimensions)
	}
}

func approx(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
