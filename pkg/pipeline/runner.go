package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/knotmap/knotmap/pkg/cache"
	"github.com/knotmap/knotmap/pkg/elements"
	"github.com/knotmap/knotmap/pkg/graph"
	kio "github.com/knotmap/knotmap/pkg/io"
	"github.com/knotmap/knotmap/pkg/layout"
	"github.com/knotmap/knotmap/pkg/metrics"
	"github.com/knotmap/knotmap/pkg/observability"
	"github.com/knotmap/knotmap/pkg/sparsify"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// seededRand derives an independent generator from a seed.
func seededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Execute runs the complete build → sparsify → metrics → layout → export
// pipeline with caching.
func (r *Runner) Execute(ctx context.Context, in kio.Input, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.logger(opts)

	runID := uuid.NewString()
	start := time.Now()
	hooks := observability.Engine()
	hooks.OnRunStart(ctx, runID, len(in.Nodes), len(in.Edges))

	result := &Result{RunID: runID}

	rawInput, err := json.Marshal(in)
	if err != nil {
		hooks.OnRunComplete(ctx, runID, time.Since(start), err)
		return nil, fmt.Errorf("hash input: %w", err)
	}
	result.GraphHash = cache.Hash(rawInput)

	// Stage 1: Build
	buildStart := time.Now()
	hooks.OnStageStart(ctx, observability.StageBuild, len(in.Nodes))
	g, buildStats := graph.Build(in.Nodes, in.Edges, opts.BuildOptions())
	result.Stats.Build = buildStats
	result.Stats.BuildTime = time.Since(buildStart)
	hooks.OnStageComplete(ctx, observability.StageBuild, g.NodeCount(), result.Stats.BuildTime, nil)

	logger.Info("built graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"dropped", buildStats.Dropped(),
		"duration", result.Stats.BuildTime)

	// A cached document short-circuits the expensive stages.
	docKey := r.documentKey(result.GraphHash, opts)
	if !opts.Refresh {
		if doc, ok := r.cachedDocument(ctx, docKey); ok {
			logger.Info("elements cache hit", "key", docKey)
			result.Graph = g
			result.Document = doc
			result.Quality = elements.Measure(doc, opts.ViewportSize)
			result.CacheInfo.ElementsHit = true
			result.Stats.NodeCount = len(doc.Nodes)
			result.Stats.EdgeCount = len(doc.Edges)
			result.Stats.TotalTime = time.Since(start)
			hooks.OnRunComplete(ctx, runID, result.Stats.TotalTime, nil)
			return result, nil
		}
	}

	// Stage 2: Sparsify. Runs before the metric pass so importance and
	// layout both operate on the reduced graph.
	work := g
	if !opts.SkipSparsify {
		sparsifyStart := time.Now()
		hooks.OnStageStart(ctx, observability.StageSparsify, g.NodeCount())
		var sstats sparsify.Stats
		work, sstats = sparsify.Sparsify(g)
		result.SparsifyStats = sstats
		result.Stats.SparsifyTime = time.Since(sparsifyStart)
		hooks.OnStageComplete(ctx, observability.StageSparsify, work.NodeCount(), result.Stats.SparsifyTime, nil)

		if sstats.Applied {
			logger.Info("sparsified graph",
				"nodesKept", sstats.NodesKept,
				"edgesKept", sstats.EdgesKept,
				"bridges", sstats.BridgesAdded,
				"compression", sstats.CompressionRatio)
		}
	}
	result.Graph = work
	result.Stats.NodeCount = work.NodeCount()
	result.Stats.EdgeCount = work.EdgeCount()

	// Stage 3: Metrics
	metricsStart := time.Now()
	hooks.OnStageStart(ctx, observability.StageMetrics, work.NodeCount())
	imp := metrics.Compute(work, opts.MetricsOptions())
	result.Importance = &imp
	result.Stats.MetricsTime = time.Since(metricsStart)
	hooks.OnStageComplete(ctx, observability.StageMetrics, work.NodeCount(), result.Stats.MetricsTime, nil)

	if len(imp.CycleNodes) > 0 {
		logger.Warn("parent hierarchy contains cycles", "nodes", imp.CycleNodes)
	}
	logger.Info("computed importance",
		"records", len(imp.Records),
		"duration", result.Stats.MetricsTime)

	// Stage 4: Layout
	layoutStart := time.Now()
	hooks.OnStageStart(ctx, observability.StageLayout, work.NodeCount())
	lay := layout.Build(work, opts.LayoutOptions())
	result.Layout = lay
	result.Stats.LayoutTime = time.Since(layoutStart)
	hooks.OnStageComplete(ctx, observability.StageLayout, work.NodeCount(), result.Stats.LayoutTime, nil)

	logger.Info("computed layout",
		"communities", lay.Stats.Communities,
		"refined", lay.Stats.RefinedCommunities,
		"duration", result.Stats.LayoutTime)

	// Stage 5: Export
	exportStart := time.Now()
	hooks.OnStageStart(ctx, observability.StageExport, work.NodeCount())
	doc := elements.Export(work, &imp, lay)
	result.Document = doc
	result.Quality = elements.Measure(doc, opts.ViewportSize)
	result.Stats.ExportTime = time.Since(exportStart)
	hooks.OnStageComplete(ctx, observability.StageExport, len(doc.Nodes), result.Stats.ExportTime, nil)

	r.storeDocument(ctx, docKey, doc)

	result.Stats.TotalTime = time.Since(start)
	hooks.OnRunComplete(ctx, runID, result.Stats.TotalTime, nil)

	logger.Info("exported elements",
		"nodes", len(doc.Nodes),
		"edges", len(doc.Edges),
		"duration", result.Stats.ExportTime)

	return result, nil
}

// documentKey derives the cache key for the final element document.
// The key chains the build and layout option keys so any option that
// changes the output changes the key.
func (r *Runner) documentKey(inputHash string, opts Options) string {
	graphKey := r.Keyer.GraphKey(inputHash, opts.GraphKeyOpts())
	layoutKey := r.Keyer.LayoutKey(graphKey, opts.LayoutKeyOpts())
	return r.Keyer.ElementsKey(layoutKey)
}

// cachedDocument looks up and decodes a cached element document.
// Decode failures are treated as misses.
func (r *Runner) cachedDocument(ctx context.Context, key string) (elements.Document, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "elements")
		return elements.Document{}, false
	}

	var doc elements.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		observability.Cache().OnCacheMiss(ctx, "elements")
		_ = r.Cache.Delete(ctx, key)
		return elements.Document{}, false
	}

	observability.Cache().OnCacheHit(ctx, "elements")
	return doc, true
}

// storeDocument writes the document to cache. Failures are logged, not
// fatal: a broken cache must never fail a successful run.
func (r *Runner) storeDocument(ctx context.Context, key string, doc elements.Document) {
	data, err := json.Marshal(doc)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, DefaultCacheTTL); err != nil {
		r.Logger.Warn("failed to cache elements", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "elements", len(data))
}

// logger returns the per-run logger, preferring the one on opts.
func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
