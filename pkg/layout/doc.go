// Package layout computes vertex positions with a force-directed
// simulation, keeping the drawing inside the unit square.
//
// # Model
//
// Four force contributions act on every simulation step:
//
//   - link: springs pull each edge's endpoints toward a rest distance
//   - charge: all vertex pairs repel (or attract, for positive strength)
//   - center: a weak pull keeps the drawing around the workspace center
//   - collide: vertices are discs of fixed radius that may not overlap
//
// Each step accumulates forces into per-vertex velocity, applies velocity
// decay, integrates velocity into position, and decays the kinetic-energy
// scalar alpha. The decaying alpha proportionally weakens the forces, so
// the system converges toward an equilibrium instead of oscillating.
//
// The simulation always runs the configured iteration count - it never
// detects convergence. This caps run time deterministically and stands in
// for cancellation: a caller that wants cheaper runs lowers Iterations.
//
// # Statelessness
//
// [Optimize] is a self-contained value-returning function. It allocates a
// fresh working set per call, never mutates its input, and retains no
// simulation object between calls, so concurrent calls on independent (or
// shared read-only) graphs are race-free.
package layout
