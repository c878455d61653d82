// Package pipeline orchestrates the measure → layout → measure flow.
//
// This package implements the optimization pipeline shared by the CLI and
// the HTTP API. By centralizing this logic, both entry points report the
// exact same metrics for the same input and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Measure the input drawing (crossings, edge lengths, vertex spacing)
//  2. Layout: run the force simulation to compute new positions
//  3. Measure the optimized drawing with the same metric engine
//
// The layout stage is cached by graph content hash plus simulation
// options; the metric stages are cheap and always recomputed. Rendered
// SVG artifacts are cached separately with a shorter TTL.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{}
//	result, err := runner.Execute(ctx, g, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pipeline.WriteReport(os.Stdout, result)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/untangle/pkg/cache"
	"github.com/matzehuels/untangle/pkg/errors"
	"github.com/matzehuels/untangle/pkg/graph"
	"github.com/matzehuels/untangle/pkg/layout"
	"github.com/matzehuels/untangle/pkg/metrics"
)

// Format constants for output formats.
const (
	FormatReport = "report"
	FormatJSON   = "json"
	FormatSVG    = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatReport: true,
	FormatJSON:   true,
	FormatSVG:    true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: report, json, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the optimization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout holds the simulation configuration. Zero-valued fields are
	// filled with defaults by ValidateAndSetDefaults.
	Layout layout.Options `json:"layout,omitempty"`

	// Formats selects the outputs to produce (CLI only; the API always
	// returns the JSON document). Defaults to ["report"].
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses the layout cache and recomputes.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.Layout.ApplyDefaults()
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatReport}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:          o.Layout.Width,
		Height:         o.Layout.Height,
		Iterations:     o.Layout.Iterations,
		Alpha:          o.Layout.Alpha,
		AlphaDecay:     o.Layout.AlphaDecay,
		VelocityDecay:  o.Layout.VelocityDecay,
		ChargeStrength: o.Layout.ChargeStrength,
		LinkDistance:   o.Layout.LinkDistance,
		LinkStrength:   o.Layout.LinkStrength,
		CollideRadius:  o.Layout.CollideRadius,
	}
}

// =============================================================================
// Result - Pipeline Output
// =============================================================================

// Result contains the outputs of a pipeline run. The report and JSON
// document are both derived from this one struct, so the two surfaces can
// never drift apart.
type Result struct {
	// RunID uniquely identifies this execution.
	RunID string

	// Original holds the input positions, Optimized the computed ones.
	// Both share length, identifiers, and order with the input graph.
	Original  []graph.Vertex
	Optimized []graph.Vertex

	// Edges echoes the input edge list.
	Edges []graph.Edge

	// Before and After are the metric sets for the two drawings.
	Before metrics.Metrics
	After  metrics.Metrics

	// Bounded reports whether every optimized vertex lies in the unit
	// square. The layout engine clamps, so this should always be true;
	// it is recorded rather than assumed.
	Bounded bool

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	VertexCount int
	EdgeCount   int
	MeasureTime time.Duration // both measurement passes combined
	LayoutTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
}

// CrossingReduction returns the relative reduction in crossings as a
// fraction in [-inf, 1], and false when the input had no crossings to
// reduce (the fraction is undefined then, not zero).
func (r *Result) CrossingReduction() (float64, bool) {
	if r.Before.Crossings == 0 {
		return 0, false
	}
	delta := float64(r.Before.Crossings-r.After.Crossings) / float64(r.Before.Crossings)
	return delta, true
}
