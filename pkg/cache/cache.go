// Package cache provides layout-result caching for the optimization pipeline.
//
// Running the force simulation is the expensive part of a pipeline
// execution, and its output is a pure function of (graph, layout options).
// The cache keys layouts by a SHA-256 hash of the serialized graph plus
// the full option set, so any change to either recomputes.
//
// Three backends implement the [Cache] interface:
//   - [FileCache]: on-disk entries for CLI usage
//   - [RedisCache]: shared cache for serve mode
//   - [NullCache]: caching disabled (tests, --no-cache)
//
// Keys are generated through a [Keyer]; wrap one in a [ScopedKeyer] to
// namespace entries per tenant in serve mode.
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries. Layout results are pure, so the TTL exists only
// to bound cache growth, not for correctness.
const (
	// TTLLayout is how long computed layouts are kept.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact is how long rendered artifacts (SVG) are kept.
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key-value store with TTL support.
// Implementations must treat a missing key as (nil, false, nil), not as
// an error.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts carries the layout options that affect the cache key.
// Every field of the simulation configuration participates: two runs that
// differ in any parameter must not share an entry.
type LayoutKeyOpts struct {
	Width          float64
	Height         float64
	Iterations     int
	Alpha          float64
	AlphaDecay     float64
	VelocityDecay  float64
	ChargeStrength float64
	LinkDistance   float64
	LinkStrength   float64
	CollideRadius  float64
}

// ArtifactKeyOpts carries the render options that affect artifact keys.
type ArtifactKeyOpts struct {
	Format string
	Radius float64
	Labels bool
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// LayoutKey generates a key for a computed layout, from the graph
	// content hash and the simulation options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact, from the
	// layout content hash and the render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key of the form "layout:<sha256>".
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key of the form "artifact:<sha256>".
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
