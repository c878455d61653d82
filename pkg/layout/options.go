package layout

import (
	"math"

	"github.com/matzehuels/untangle/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Config
// =============================================================================

const (
	// DefaultWidth is the default simulation workspace width.
	// Workspace units only affect internal force magnitudes; output is
	// always rescaled to [0,1].
	DefaultWidth = 800.0

	// DefaultHeight is the default simulation workspace height.
	DefaultHeight = 600.0

	// DefaultIterations is the default number of simulation steps.
	DefaultIterations = 300

	// DefaultAlpha is the initial kinetic-energy scalar.
	DefaultAlpha = 1.0

	// DefaultAlphaDecay is the per-step decay applied as
	// alpha *= (1 - DefaultAlphaDecay). The value brings alpha from 1.0
	// to ~0.001 over 300 steps.
	DefaultAlphaDecay = 0.0228

	// DefaultVelocityDecay is the per-step drag applied as
	// v *= (1 - DefaultVelocityDecay).
	DefaultVelocityDecay = 0.4

	// DefaultChargeStrength is the pairwise charge strength.
	// Negative repels; positive would attract.
	DefaultChargeStrength = -30.0

	// DefaultLinkDistance is the rest length springs pull edges toward,
	// in workspace units.
	DefaultLinkDistance = 30.0

	// DefaultLinkStrength is the spring stiffness for connected pairs.
	DefaultLinkStrength = 0.7

	// DefaultCollideRadius is the disc radius used for overlap
	// resolution, in workspace units.
	DefaultCollideRadius = 12.0
)

// centerStrength scales the pull toward the workspace center. Kept as a
// constant: the centering force only needs to counteract drift, and tuning
// it per run has no visible effect on small graphs.
const centerStrength = 0.05

// =============================================================================
// Options
// =============================================================================

// Options configures one simulation run. The struct is consumed by value:
// a run never writes back into it, and two runs with equal options and
// equal input produce identical output.
//
// Construct with [DefaultOptions] and override a subset, or start from the
// zero value and call [Options.ApplyDefaults] to fill unset (zero) fields.
type Options struct {
	// Width and Height span the simulation workspace. Input positions are
	// rescaled from [0,1] into this box and back on output. Must be > 0.
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`

	// Iterations is the exact number of simulation steps to run.
	// Zero is valid and returns the input positions (clamped).
	Iterations int `json:"iterations" toml:"iterations"`

	// Alpha is the initial kinetic energy; AlphaDecay shrinks it each step.
	Alpha      float64 `json:"alpha" toml:"alpha"`
	AlphaDecay float64 `json:"alpha_decay" toml:"alpha_decay"`

	// VelocityDecay is the per-step drag factor in [0,1).
	VelocityDecay float64 `json:"velocity_decay" toml:"velocity_decay"`

	// ChargeStrength controls pairwise repulsion. Negative repels.
	ChargeStrength float64 `json:"charge_strength" toml:"charge_strength"`

	// LinkDistance and LinkStrength define the spring acting on each edge.
	LinkDistance float64 `json:"link_distance" toml:"link_distance"`
	LinkStrength float64 `json:"link_strength" toml:"link_strength"`

	// CollideRadius is the no-overlap disc radius per vertex.
	CollideRadius float64 `json:"collide_radius" toml:"collide_radius"`
}

// DefaultOptions returns a fully populated option set.
func DefaultOptions() Options {
	return Options{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		Iterations:     DefaultIterations,
		Alpha:          DefaultAlpha,
		AlphaDecay:     DefaultAlphaDecay,
		VelocityDecay:  DefaultVelocityDecay,
		ChargeStrength: DefaultChargeStrength,
		LinkDistance:   DefaultLinkDistance,
		LinkStrength:   DefaultLinkStrength,
		CollideRadius:  DefaultCollideRadius,
	}
}

// ApplyDefaults fills zero-valued fields with their defaults. Note the
// zero-value convention: an explicit zero cannot be expressed for fields
// with non-zero defaults (e.g. a zero ChargeStrength becomes the default);
// use the layout package directly with hand-built Options for such runs.
func (o *Options) ApplyDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.Alpha == 0 {
		o.Alpha = DefaultAlpha
	}
	if o.AlphaDecay == 0 {
		o.AlphaDecay = DefaultAlphaDecay
	}
	if o.VelocityDecay == 0 {
		o.VelocityDecay = DefaultVelocityDecay
	}
	if o.ChargeStrength == 0 {
		o.ChargeStrength = DefaultChargeStrength
	}
	if o.LinkDistance == 0 {
		o.LinkDistance = DefaultLinkDistance
	}
	if o.LinkStrength == 0 {
		o.LinkStrength = DefaultLinkStrength
	}
	if o.CollideRadius == 0 {
		o.CollideRadius = DefaultCollideRadius
	}
}

// Validate checks the options and returns a structured error for the
// first violation found. Zero workspace dimensions would divide by zero
// during rescaling, so Width and Height are rejected eagerly here rather
// than producing non-finite positions downstream.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidDimensions,
			"workspace dimensions must be positive (got %gx%g)", o.Width, o.Height)
	}
	if o.Iterations < 0 {
		return errors.New(errors.ErrCodeInvalidOptions,
			"iterations must be >= 0 (got %d)", o.Iterations)
	}
	if o.AlphaDecay < 0 || o.AlphaDecay >= 1 {
		return errors.New(errors.ErrCodeInvalidOptions,
			"alpha decay must be in [0,1) (got %g)", o.AlphaDecay)
	}
	if o.VelocityDecay < 0 || o.VelocityDecay >= 1 {
		return errors.New(errors.ErrCodeInvalidOptions,
			"velocity decay must be in [0,1) (got %g)", o.VelocityDecay)
	}
	for name, v := range map[string]float64{
		"width":           o.Width,
		"height":          o.Height,
		"alpha":           o.Alpha,
		"charge_strength": o.ChargeStrength,
		"link_distance":   o.LinkDistance,
		"link_strength":   o.LinkStrength,
		"collide_radius":  o.CollideRadius,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidOptions,
				"%s must be finite (got %g)", name, v)
		}
	}
	return nil
}
