// Package cache provides caching backends and key derivation for the
// engine's intermediate results.
//
// A Cache stores opaque byte blobs under string keys with optional TTLs.
// Three backends exist: a file cache for CLI usage, a Redis cache for
// server deployments, and a null cache for tests and cache-disabled runs.
// A Keyer derives deterministic keys from pipeline inputs so identical
// inputs with identical options hit the same entry.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found;
	// a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GraphKeyOpts captures the build options that change the resulting graph.
type GraphKeyOpts struct {
	NodeLimit         int
	MinEdgeConfidence float64
	SkipEdgeFiltering bool
}

// LayoutKeyOpts captures the layout options that change node placement.
type LayoutKeyOpts struct {
	Seed                  uint64
	ForceIterations       int
	OverlapIterations     int
	DenseClusterThreshold int
	ViewportSize          float64
}

// Keyer derives cache keys for the pipeline's stages.
type Keyer interface {
	// GraphKey keys a built graph by its raw input hash and build options.
	GraphKey(inputHash string, opts GraphKeyOpts) string

	// LayoutKey keys a layout by the processed graph's hash and layout
	// options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ElementsKey keys a final export document by its layout hash.
	ElementsKey(layoutHash string) string
}

// DefaultKeyer derives keys by hashing the inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for a built graph.
func (k *DefaultKeyer) GraphKey(inputHash string, opts GraphKeyOpts) string {
	return hashKey("graph", inputHash, opts.NodeLimit, opts.MinEdgeConfidence, opts.SkipEdgeFiltering)
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts.Seed, opts.ForceIterations, opts.OverlapIterations, opts.DenseClusterThreshold, opts.ViewportSize)
}

// ElementsKey generates a key for an export document.
func (k *DefaultKeyer) ElementsKey(layoutHash string) string {
	return hashKey("elements", layoutHash)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
