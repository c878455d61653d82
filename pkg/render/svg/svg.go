// Package svg renders a graph drawing to SVG.
//
// The renderer is a pure consumer of (vertices, edges) plus cosmetic
// options - it knows nothing about how the positions were produced and is
// never called by the layout or metric engines. Positions are expected in
// the unit square and are scaled onto the pixel canvas with a margin so
// vertex discs at the boundary are not clipped.
package svg

import (
	"bytes"

	svgo "github.com/ajstarks/svgo"

	"github.com/matzehuels/untangle/pkg/graph"
)

// Options controls the cosmetic aspects of the rendering.
type Options struct {
	// Width and Height are the canvas size in pixels.
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// Radius is the vertex disc radius in pixels.
	Radius float64 `toml:"radius"`

	// Colors, as SVG fill/stroke values.
	Background string `toml:"background"`
	VertexFill string `toml:"vertex_fill"`
	EdgeStroke string `toml:"edge_stroke"`
	LabelFill  string `toml:"label_fill"`

	// ShowLabels draws vertex IDs next to the discs.
	ShowLabels bool `toml:"show_labels"`
}

// DefaultOptions returns the standard rendering options.
func DefaultOptions() Options {
	return Options{
		Width:      800,
		Height:     600,
		Radius:     8,
		Background: "#ffffff",
		VertexFill: "#2b6cb0",
		EdgeStroke: "#a0aec0",
		LabelFill:  "#1a202c",
		ShowLabels: true,
	}
}

// Render draws the vertices and edges onto an SVG canvas and returns the
// document bytes. Edges with unresolvable endpoints are skipped, matching
// the engines' tolerance for dangling references.
func Render(vertices []graph.Vertex, edges []graph.Edge, opts Options) []byte {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultOptions().Width, DefaultOptions().Height
	}
	if opts.Radius <= 0 {
		opts.Radius = DefaultOptions().Radius
	}

	var buf bytes.Buffer
	canvas := svgo.New(&buf)
	canvas.Start(opts.Width, opts.Height)
	if opts.Background != "" {
		canvas.Rect(0, 0, opts.Width, opts.Height, "fill:"+opts.Background)
	}

	margin := opts.Radius * 2
	px := func(x float64) int { return int(margin + x*(float64(opts.Width)-2*margin) + 0.5) }
	py := func(y float64) int { return int(margin + y*(float64(opts.Height)-2*margin) + 0.5) }

	// Edges first so discs draw on top of them.
	idx := graph.IndexVertices(vertices)
	for _, e := range edges {
		si, ok := idx[e.Source]
		if !ok {
			continue
		}
		ti, ok := idx[e.Target]
		if !ok {
			continue
		}
		s, t := vertices[si], vertices[ti]
		canvas.Line(px(s.X), py(s.Y), px(t.X), py(t.Y),
			"stroke:"+opts.EdgeStroke+";stroke-width:1.5")
	}

	for _, v := range vertices {
		canvas.Circle(px(v.X), py(v.Y), int(opts.Radius+0.5), "fill:"+opts.VertexFill)
		if opts.ShowLabels {
			canvas.Text(px(v.X)+int(opts.Radius)+3, py(v.Y)+4, v.ID,
				"font-family:sans-serif;font-size:11px;fill:"+opts.LabelFill)
		}
	}

	canvas.End()
	return buf.Bytes()
}
