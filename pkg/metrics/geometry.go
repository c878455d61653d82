package metrics

// orient returns the signed area of the triangle (a, b, c), doubled.
// Positive means c lies left of the directed line a→b, negative means
// right, zero means collinear.
func orient(ax, ay, bx, by, cx, cy float64) float64 {
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}

// SegmentsCross reports whether the segments p1–q1 and p2–q2 properly
// intersect: each segment must strictly straddle the other's supporting
// line. Configurations that merely touch (a shared point, an endpoint on
// the other segment, collinear overlap) are not crossings.
//
// The test is symmetric: swapping the two segments, or the endpoints
// within a segment, never changes the result.
func SegmentsCross(p1x, p1y, q1x, q1y, p2x, p2y, q2x, q2y float64) bool {
	d1 := orient(p2x, p2y, q2x, q2y, p1x, p1y)
	d2 := orient(p2x, p2y, q2x, q2y, q1x, q1y)
	d3 := orient(p1x, p1y, q1x, q1y, p2x, p2y)
	d4 := orient(p1x, p1y, q1x, q1y, q2x, q2y)

	// Strict inequalities: collinear or touching endpoints don't count.
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}
