package layout

import (
	"math"
	"math/rand"
)

// body is one vertex in workspace coordinates with accumulated velocity.
type body struct {
	x, y   float64
	vx, vy float64
}

// spring is an edge resolved to body indices.
type spring struct {
	a, b int
}

// jiggleSeed makes coincident-vertex separation reproducible: the same
// input always produces the same layout.
const jiggleSeed = 42

// jiggler hands out tiny deterministic offsets used when two bodies
// occupy the exact same point and a force has no direction to push along.
type jiggler struct {
	rng *rand.Rand
}

func newJiggler() *jiggler {
	return &jiggler{rng: rand.New(rand.NewSource(jiggleSeed))}
}

// offset returns a small non-zero displacement.
func (j *jiggler) offset() float64 {
	return (j.rng.Float64() - 0.5) * 1e-6
}

// =============================================================================
// Force Contributions
// =============================================================================

// applyLink pulls each spring's endpoints toward the rest distance.
// The displacement is measured on projected positions (position plus
// pending velocity) so springs react to movement already accumulated in
// this step. Each endpoint takes half the correction.
func applyLink(bodies []body, springs []spring, alpha, distance, strength float64, jig *jiggler) {
	for _, s := range springs {
		a, b := &bodies[s.a], &bodies[s.b]
		dx := (b.x + b.vx) - (a.x + a.vx)
		dy := (b.y + b.vy) - (a.y + a.vy)
		l := math.Hypot(dx, dy)
		if l == 0 {
			dx, dy = jig.offset(), jig.offset()
			l = math.Hypot(dx, dy)
		}
		f := (l - distance) / l * alpha * strength
		dx, dy = dx*f*0.5, dy*f*0.5
		b.vx -= dx
		b.vy -= dy
		a.vx += dx
		a.vy += dy
	}
}

// applyCharge applies the pairwise charge force: every body pushes every
// other with magnitude strength*alpha/d, falling off with distance.
// Negative strength repels. O(n²) over all pairs; fine for tens of
// vertices, which is what this engine is sized for.
func applyCharge(bodies []body, alpha, strength float64, jig *jiggler) {
	for i := range bodies {
		for j := range bodies {
			if i == j {
				continue
			}
			dx := bodies[j].x - bodies[i].x
			dy := bodies[j].y - bodies[i].y
			l2 := dx*dx + dy*dy
			if l2 == 0 {
				dx, dy = jig.offset(), jig.offset()
				l2 = dx*dx + dy*dy
			}
			w := strength * alpha / l2
			bodies[i].vx += dx * w
			bodies[i].vy += dy * w
		}
	}
}

// applyCenter nudges every body toward the workspace center, keeping the
// drawing from drifting off-canvas. The pull is deliberately weak relative
// to link and charge forces.
func applyCenter(bodies []body, alpha, cx, cy float64) {
	for i := range bodies {
		bodies[i].vx += (cx - bodies[i].x) * centerStrength * alpha
		bodies[i].vy += (cy - bodies[i].y) * centerStrength * alpha
	}
}

// applyCollide resolves overlaps between vertex discs of the given radius.
// Overlap is measured on projected positions and the separating correction
// is split evenly between the two bodies. Unlike the other forces this is
// a hard constraint and is not scaled by alpha, so discs stay separated
// even late in the simulation when alpha is tiny.
func applyCollide(bodies []body, radius float64, jig *jiggler) {
	minDist := 2 * radius
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			dx := (bodies[j].x + bodies[j].vx) - (bodies[i].x + bodies[i].vx)
			dy := (bodies[j].y + bodies[j].vy) - (bodies[i].y + bodies[i].vy)
			l := math.Hypot(dx, dy)
			if l >= minDist {
				continue
			}
			if l == 0 {
				dx, dy = jig.offset(), jig.offset()
				l = math.Hypot(dx, dy)
			}
			push := (minDist - l) / l * 0.5
			dx, dy = dx*push, dy*push
			bodies[j].vx += dx
			bodies[j].vy += dy
			bodies[i].vx -= dx
			bodies[i].vy -= dy
		}
	}
}
