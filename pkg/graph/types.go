package graph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidVertexID is returned by [Graph.Validate] when a vertex has
	// an empty identifier. All vertices must have non-empty identifiers.
	ErrInvalidVertexID = errors.New("vertex ID must not be empty")

	// ErrDuplicateVertexID is returned by [Graph.Validate] when two vertices
	// share the same identifier. Vertex IDs must be unique within a graph.
	ErrDuplicateVertexID = errors.New("duplicate vertex ID")

	// ErrUnknownEndpoint is returned by [Graph.Validate] when an edge
	// references a vertex that does not exist in the graph. The layout and
	// metric engines tolerate such edges (they are skipped), so validation
	// is opt-in for callers that want to fail early instead.
	ErrUnknownEndpoint = errors.New("edge references unknown vertex")
)

// =============================================================================
// Vertex, Edge, Graph
// =============================================================================

// Vertex is a graph endpoint with a stable identifier and a 2-D position.
// Both coordinates are expected to lie in [0,1] before and after layout;
// the layout engine rescales internally and clamps on output.
type Vertex struct {
	ID string  `json:"id" bson:"id"`
	X  float64 `json:"x" bson:"x"`
	Y  float64 `json:"y" bson:"y"`
}

// Edge is an unordered, unweighted connection between two vertices,
// referenced by ID. Direction carries no meaning; (a,b) and (b,a) describe
// the same edge.
type Edge struct {
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// Graph is an ordered vertex list plus an edge list. The zero value is a
// valid empty graph. Graph is a plain value type with no hidden indices;
// use [Graph.Index] to build a position lookup when needed.
type Graph struct {
	Vertices []Vertex `json:"nodes" bson:"nodes"`
	Edges    []Edge   `json:"edges" bson:"edges"`
}

// VertexCount returns the number of vertices in the graph.
func (g *Graph) VertexCount() int { return len(g.Vertices) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Index returns a map from vertex ID to its position in the vertex list.
// If duplicate IDs exist, the first occurrence wins. The map is rebuilt on
// every call; cache it when resolving many edges.
func (g *Graph) Index() map[string]int {
	idx := make(map[string]int, len(g.Vertices))
	for i, v := range g.Vertices {
		if _, ok := idx[v.ID]; !ok {
			idx[v.ID] = i
		}
	}
	return idx
}

// Clone returns a deep copy of the graph. Mutating the copy never affects
// the original.
func (g *Graph) Clone() *Graph {
	return &Graph{
		Vertices: slices.Clone(g.Vertices),
		Edges:    slices.Clone(g.Edges),
	}
}

// Validate checks structural integrity and returns nil if the graph is
// well-formed. It verifies that every vertex has a non-empty unique ID and
// that every edge endpoint resolves to a vertex.
//
// Validation is stricter than what the engines require: both the layout
// and metric engines silently skip edges with unresolvable endpoints.
// Call Validate when malformed input should be surfaced to the user.
func (g *Graph) Validate() error {
	seen := make(map[string]struct{}, len(g.Vertices))
	for _, v := range g.Vertices {
		if v.ID == "" {
			return ErrInvalidVertexID
		}
		if _, dup := seen[v.ID]; dup {
			return ErrDuplicateVertexID
		}
		seen[v.ID] = struct{}{}
	}
	for _, e := range g.Edges {
		if _, ok := seen[e.Source]; !ok {
			return ErrUnknownEndpoint
		}
		if _, ok := seen[e.Target]; !ok {
			return ErrUnknownEndpoint
		}
	}
	return nil
}

// =============================================================================
// Vertex Slice Helpers
// =============================================================================

// VertexIDs extracts the ID from each vertex, preserving order.
// Returns an empty slice for a nil or empty input.
func VertexIDs(vertices []Vertex) []string {
	ids := make([]string, len(vertices))
	for i, v := range vertices {
		ids[i] = v.ID
	}
	return ids
}

// IndexVertices returns a map from vertex ID to slice position.
// The first occurrence wins for duplicate IDs.
func IndexVertices(vertices []Vertex) map[string]int {
	idx := make(map[string]int, len(vertices))
	for i, v := range vertices {
		if _, ok := idx[v.ID]; !ok {
			idx[v.ID] = i
		}
	}
	return idx
}

// WithinUnitSquare reports whether every vertex position lies in
// [0,1]×[0,1] inclusive. An empty slice is vacuously within bounds.
// NaN coordinates fail the comparison and report false.
func WithinUnitSquare(vertices []Vertex) bool {
	for _, v := range vertices {
		if !(v.X >= 0 && v.X <= 1 && v.Y >= 0 && v.Y <= 1) {
			return false
		}
	}
	return true
}
