package layout

import (
	"github.com/matzehuels/untangle/pkg/graph"
)

// Optimize runs the force simulation and returns new vertex positions.
//
// The result has the same length, identifiers, and order as g.Vertices -
// only positions change. Every output coordinate is clamped to [0,1]:
// vertices that drift outside the workspace are pinned to the boundary
// rather than the whole drawing being renormalized, which would compress
// the layout against an edge.
//
// Input positions are expected in [0,1] but out-of-range values are not
// rejected; they are rescaled into the workspace like any other. Edges
// whose endpoints do not resolve to a vertex contribute no link force and
// are otherwise ignored - use [graph.Graph.Validate] to fail eagerly
// instead. Self-loops are skipped for the same reason: a spring from a
// vertex to itself has no direction.
//
// The input graph is never mutated, and no state survives the call.
func Optimize(g *graph.Graph, opts Options) ([]graph.Vertex, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	bodies := makeBodies(g.Vertices, opts.Width, opts.Height)
	springs := makeSprings(g)
	jig := newJiggler()

	cx, cy := opts.Width/2, opts.Height/2
	alpha := opts.Alpha
	for step := 0; step < opts.Iterations; step++ {
		applyLink(bodies, springs, alpha, opts.LinkDistance, opts.LinkStrength, jig)
		applyCharge(bodies, alpha, opts.ChargeStrength, jig)
		applyCenter(bodies, alpha, cx, cy)
		applyCollide(bodies, opts.CollideRadius, jig)

		for i := range bodies {
			bodies[i].vx *= 1 - opts.VelocityDecay
			bodies[i].vy *= 1 - opts.VelocityDecay
			bodies[i].x += bodies[i].vx
			bodies[i].y += bodies[i].vy
		}
		alpha *= 1 - opts.AlphaDecay
	}

	out := make([]graph.Vertex, len(g.Vertices))
	for i, v := range g.Vertices {
		out[i] = graph.Vertex{
			ID: v.ID,
			X:  clamp01(bodies[i].x / opts.Width),
			Y:  clamp01(bodies[i].y / opts.Height),
		}
	}
	return out, nil
}

// makeBodies rescales normalized positions into the simulation workspace.
func makeBodies(vertices []graph.Vertex, width, height float64) []body {
	bodies := make([]body, len(vertices))
	for i, v := range vertices {
		bodies[i] = body{x: v.X * width, y: v.Y * height}
	}
	return bodies
}

// makeSprings resolves edges to index pairs, dropping self-loops and
// edges with unknown endpoints.
func makeSprings(g *graph.Graph) []spring {
	idx := g.Index()
	springs := make([]spring, 0, len(g.Edges))
	for _, e := range g.Edges {
		a, ok := idx[e.Source]
		if !ok {
			continue
		}
		b, ok := idx[e.Target]
		if !ok {
			continue
		}
		if a == b {
			continue
		}
		springs = append(springs, spring{a: a, b: b})
	}
	return springs
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
