// Package pipeline provides the core graph processing pipeline for Knotmap.
//
// This package implements the complete build → sparsify → metrics → layout
// → export pipeline that can be used by CLI and API components. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of five stages:
//
//  1. Build: Assemble a clean graph from raw node and edge lists
//  2. Sparsify: Thin oversized graphs while preserving connectivity, so
//     the metric and layout passes stay cheap
//  3. Metrics: Score every node of the reduced graph (PageRank,
//     betweenness, descendants, composite importance)
//  4. Layout: Position, size, and color nodes for rendering
//  5. Export: Flatten everything into a render-ready element document
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Seed: 42}
//	result, err := runner.Execute(ctx, input, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc := result.Document
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/knotmap/knotmap/pkg/cache"
	"github.com/knotmap/knotmap/pkg/elements"
	kerrors "github.com/knotmap/knotmap/pkg/errors"
	"github.com/knotmap/knotmap/pkg/graph"
	"github.com/knotmap/knotmap/pkg/layout"
	"github.com/knotmap/knotmap/pkg/metrics"
	"github.com/knotmap/knotmap/pkg/sparsify"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultCacheTTL is how long cached element documents stay valid.
	DefaultCacheTTL = 24 * time.Hour
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests. Zero values
// mean "use the default" throughout; SkipEdgeFiltering is the switch for
// disabling confidence filtering, not a zero threshold.
type Options struct {
	// Build options
	NodeLimit         int     `json:"node_limit,omitempty"`
	MinEdgeConfidence float64 `json:"min_edge_confidence,omitempty"`
	SkipEdgeFiltering bool    `json:"skip_edge_filtering,omitempty"`

	// Metrics options
	PageRankIterations int `json:"pagerank_iterations,omitempty"`

	// Sparsify options
	SkipSparsify bool `json:"skip_sparsify,omitempty"`

	// Layout options
	DenseClusterThreshold int     `json:"dense_cluster_threshold,omitempty"`
	ForceIterations       int     `json:"force_iterations,omitempty"`
	OverlapIterations     int     `json:"overlap_iterations,omitempty"`
	ViewportSize          float64 `json:"viewport_size,omitempty"`
	Seed                  uint64  `json:"seed,omitempty"`

	// Refresh bypasses the cache and recomputes everything.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. This method is idempotent - calling it multiple times has the
// same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.NodeLimit < 0 {
		return kerrors.New(kerrors.ErrCodeInvalidOption, "node_limit cannot be negative: %d", o.NodeLimit)
	}
	if o.MinEdgeConfidence < 0 || o.MinEdgeConfidence > 1 {
		return kerrors.New(kerrors.ErrCodeInvalidOption, "min_edge_confidence must be in [0, 1]: %f", o.MinEdgeConfidence)
	}
	if o.ViewportSize < 0 {
		return kerrors.New(kerrors.ErrCodeInvalidOption, "viewport_size cannot be negative: %f", o.ViewportSize)
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.ViewportSize == 0 {
		o.ViewportSize = layout.DefaultViewportSize
	}
	o.validated = true
	return nil
}

// BuildOptions converts to the graph builder's option set.
func (o *Options) BuildOptions() graph.BuildOptions {
	return graph.BuildOptions{
		NodeLimit:         o.NodeLimit,
		MinEdgeConfidence: o.MinEdgeConfidence,
		SkipEdgeFiltering: o.SkipEdgeFiltering,
	}
}

// MetricsOptions converts to the importance calculator's option set. The
// random generator is derived from the seed so runs are reproducible.
func (o *Options) MetricsOptions() metrics.Options {
	return metrics.Options{
		PageRankIterations: o.PageRankIterations,
		Rand:               seededRand(o.Seed),
	}
}

// LayoutOptions converts to the layout engine's option set. The random
// generator is derived from the seed so runs are reproducible.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		DenseClusterThreshold: o.DenseClusterThreshold,
		ForceIterations:       o.ForceIterations,
		OverlapIterations:     o.OverlapIterations,
		ViewportSize:          o.ViewportSize,
		Rand:                  seededRand(o.Seed),
	}
}

// GraphKeyOpts returns the cache key options for the build stage.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		NodeLimit:         o.NodeLimit,
		MinEdgeConfidence: o.MinEdgeConfidence,
		SkipEdgeFiltering: o.SkipEdgeFiltering,
	}
}

// LayoutKeyOpts returns the cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Seed:                  o.Seed,
		ForceIterations:       o.ForceIterations,
		OverlapIterations:     o.OverlapIterations,
		DenseClusterThreshold: o.DenseClusterThreshold,
		ViewportSize:          o.ViewportSize,
	}
}

// =============================================================================
// Result - Pipeline Outputs
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this execution.
	RunID string

	// Graph is the processed graph (after sparsification, if applied).
	Graph *graph.Graph

	// GraphHash is the content hash of the raw input.
	GraphHash string

	// Importance holds the per-node importance records.
	Importance *metrics.Result

	// SparsifyStats reports what sparsification did.
	SparsifyStats sparsify.Stats

	// Layout contains positions, sizes, communities, and colors.
	Layout layout.Result

	// Document is the final exported element document.
	Document elements.Document

	// Quality holds layout quality metrics over the document.
	Quality elements.Quality

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Build        graph.BuildStats
	NodeCount    int
	EdgeCount    int
	BuildTime    time.Duration
	MetricsTime  time.Duration
	SparsifyTime time.Duration
	LayoutTime   time.Duration
	ExportTime   time.Duration
	TotalTime    time.Duration
}

// CacheInfo tracks cache hits for the pipeline.
type CacheInfo struct {
	ElementsHit bool // Whether the final document came from cache
}
