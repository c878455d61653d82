// Package metrics scores graph drawings by aesthetic quality.
//
// Three independent measurements are provided, all pure functions over a
// vertex slice and an edge slice:
//
//   - [Crossings]: how many pairs of non-adjacent edges properly intersect
//   - [AverageEdgeLength]: mean Euclidean distance between connected vertices
//   - [MinVertexDistance]: smallest distance between any two vertices
//
// The functions never mutate their inputs and hold no state, so repeated
// calls on the same data are safe and cheap for the graph sizes this tool
// targets (tens of vertices). There is deliberately no memoization layer:
// recomputation keeps the functions trivially composable.
//
// Edges whose endpoints do not resolve to a vertex are skipped rather than
// rejected, matching the layout engine's tolerance for dangling references.
package metrics

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/matzehuels/untangle/pkg/graph"
)

// =============================================================================
// Metrics - Aggregate Result
// =============================================================================

// Metrics bundles the three aesthetic measurements for one drawing.
// Values have no identity or lifecycle beyond the call that produced them.
type Metrics struct {
	// Crossings is the number of unordered pairs of edges whose segments
	// properly intersect. Always >= 0.
	Crossings int `json:"crossings" bson:"crossings"`

	// AvgEdgeLength is the mean Euclidean distance between the endpoints
	// of resolvable edges. 0 when no edge resolves.
	AvgEdgeLength float64 `json:"avg_edge_length" bson:"avg_edge_length"`

	// MinVertexDistance is the minimum pairwise distance over all distinct
	// vertices, adjacency ignored. +Inf when fewer than two vertices exist;
	// callers must treat the sentinel as "not measurable", not as a value.
	MinVertexDistance float64 `json:"min_vertex_distance" bson:"min_vertex_distance"`
}

// Measure computes all three metrics for the given drawing.
func Measure(vertices []graph.Vertex, edges []graph.Edge) Metrics {
	return Metrics{
		Crossings:         Crossings(vertices, edges),
		AvgEdgeLength:     AverageEdgeLength(vertices, edges),
		MinVertexDistance: MinVertexDistance(vertices),
	}
}

// MarshalJSON encodes the metrics, mapping a non-finite minimum distance to
// null. encoding/json cannot represent +Inf, and the sentinel means "fewer
// than two vertices" rather than a measurement.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type alias Metrics
	if !math.IsInf(m.MinVertexDistance, 0) && !math.IsNaN(m.MinVertexDistance) {
		return json.Marshal(alias(m))
	}
	proxy := struct {
		alias
		MinVertexDistance *float64 `json:"min_vertex_distance"`
	}{alias: alias(m)}
	return json.Marshal(proxy)
}

// UnmarshalJSON decodes metrics, mapping a null minimum distance back to
// the +Inf sentinel so a round trip preserves semantics.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	type alias Metrics
	proxy := struct {
		alias
		MinVertexDistance *float64 `json:"min_vertex_distance"`
	}{}
	if err := json.Unmarshal(data, &proxy); err != nil {
		return err
	}
	*m = Metrics(proxy.alias)
	if proxy.MinVertexDistance == nil {
		m.MinVertexDistance = math.Inf(1)
	} else {
		m.MinVertexDistance = *proxy.MinVertexDistance
	}
	return nil
}

// Equal reports whether two metric sets carry the same values.
// Infinite minimum distances compare equal to each other.
func (m Metrics) Equal(o Metrics) bool {
	if m.Crossings != o.Crossings || m.AvgEdgeLength != o.AvgEdgeLength {
		return false
	}
	if math.IsInf(m.MinVertexDistance, 1) && math.IsInf(o.MinVertexDistance, 1) {
		return true
	}
	return m.MinVertexDistance == o.MinVertexDistance
}

var _ json.Marshaler = Metrics{}
var _ json.Unmarshaler = (*Metrics)(nil)

// =============================================================================
// Crossing Count
// =============================================================================

// segment is an edge resolved to concrete coordinates.
type segment struct {
	src, dst       string
	x1, y1, x2, y2 float64
}

// Crossings counts the unordered pairs of distinct edges whose segments
// properly intersect. Two edges that share an endpoint never cross (this
// avoids false positives at junctions), self-loops never cross anything,
// and edges with an unresolvable endpoint are skipped.
//
// The count is symmetric and order-independent: each crossing pair is
// counted exactly once regardless of edge order. Cost is O(E²) over the
// resolvable edges, acceptable for the small graphs this tool targets.
func Crossings(vertices []graph.Vertex, edges []graph.Edge) int {
	segments := resolveSegments(vertices, edges)

	count := 0
	for i := 0; i < len(segments); i++ {
		for j := i + 1; j < len(segments); j++ {
			a, b := segments[i], segments[j]
			if sharesEndpoint(a, b) {
				continue
			}
			if SegmentsCross(a.x1, a.y1, a.x2, a.y2, b.x1, b.y1, b.x2, b.y2) {
				count++
			}
		}
	}
	return count
}

// resolveSegments maps edges to coordinate segments, dropping self-loops
// and edges with unknown endpoints.
func resolveSegments(vertices []graph.Vertex, edges []graph.Edge) []segment {
	idx := graph.IndexVertices(vertices)
	segments := make([]segment, 0, len(edges))
	for _, e := range edges {
		si, ok := idx[e.Source]
		if !ok {
			continue
		}
		ti, ok := idx[e.Target]
		if !ok {
			continue
		}
		if e.Source == e.Target {
			continue
		}
		s, t := vertices[si], vertices[ti]
		segments = append(segments, segment{
			src: e.Source, dst: e.Target,
			x1: s.X, y1: s.Y, x2: t.X, y2: t.Y,
		})
	}
	return segments
}

// sharesEndpoint reports whether two segments have a vertex in common.
func sharesEndpoint(a, b segment) bool {
	return a.src == b.src || a.src == b.dst || a.dst == b.src || a.dst == b.dst
}

// =============================================================================
// Distance Metrics
// =============================================================================

// AverageEdgeLength returns the mean Euclidean distance between the two
// endpoints of each resolvable edge. Edges with an unresolved endpoint are
// skipped and do not affect the denominator. Returns 0 when no edge
// resolves - never NaN, never an error.
//
// Self-loops resolve to a zero-length segment and do count toward the
// average, pulling it down; they carry no other meaning in the model.
func AverageEdgeLength(vertices []graph.Vertex, edges []graph.Edge) float64 {
	idx := graph.IndexVertices(vertices)

	sum, n := 0.0, 0
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
		sum += math.Hypot(t.X-s.X, t.Y-s.Y)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// MinVertexDistance returns the minimum Euclidean distance over all
// unordered pairs of distinct vertices, regardless of adjacency. This is
// the anti-overlap quality signal: small values indicate crowded or
// overlapping vertices.
//
// Returns +Inf when fewer than two vertices exist. Callers must handle the
// sentinel explicitly rather than treat it as a normal measurement.
func MinVertexDistance(vertices []graph.Vertex) float64 {
	if len(vertices) < 2 {
		return math.Inf(1)
	}
	min := math.Inf(1)
	for i := 0; i < len(vertices); i++ {
		for j := i + 1; j < len(vertices); j++ {
			d := math.Hypot(vertices[j].X-vertices[i].X, vertices[j].Y-vertices[i].Y)
			if d < min {
				min = d
			}
		}
	}
	return min
}

// =============================================================================
// Formatting
// =============================================================================

// FormatDistance renders a distance value for reports, using "∞" for the
// fewer-than-two-vertices sentinel.
func FormatDistance(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
