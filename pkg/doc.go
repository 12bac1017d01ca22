// Package pkg provides the core libraries for Knotmap graph processing.
//
// # Overview
//
// Knotmap turns raw knowledge-graph exports (topic nodes plus typed,
// weighted edges) into render-ready layouts: every node scored for
// importance, oversized graphs thinned without losing connectivity, and
// positions, sizes, and colors computed for a frontend to draw directly.
//
// # Architecture
//
// The typical data flow through Knotmap:
//
//	Raw nodes + edges (JSON)
//	         ↓
//	    [io] package (decode the input contract)
//	         ↓
//	    [graph] package (filter, dedupe, assemble the graph)
//	         ↓
//	    [sparsify] package (thin oversized graphs, keep bridges)
//	         ↓
//	    [metrics] package (PageRank, betweenness, descendants, importance)
//	         ↓
//	    [layout] package (communities, force simulation, viewport)
//	         ↓
//	    [elements] package (render-ready element document)
//
// # Quick Start
//
// Run the full pipeline over a decoded input:
//
//	import (
//	    "context"
//	    "github.com/knotmap/knotmap/pkg/io"
//	    "github.com/knotmap/knotmap/pkg/pipeline"
//	)
//
//	in, _ := io.ImportJSON("graph.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(context.Background(), in, pipeline.Options{})
//	_ = io.ExportElements(result.Document, "elements.json")
//
// Or use the stages directly:
//
//	g, stats := graph.Build(in.Nodes, in.Edges, graph.BuildOptions{})
//	g2, _ := sparsify.Sparsify(g)
//	imp := metrics.Compute(g2, metrics.Options{})
//	lay := layout.Build(g2, layout.Options{})
//	doc := elements.Export(g2, &imp, lay)
//
// # Main Packages
//
// [graph] - Graph model and builder. Undirected weighted edges with
// deduplication by unordered endpoint pair, plus a separate parent
// hierarchy derived from node metadata.
//
// [metrics] - Node importance: PageRank with degree-proxy shortcut for
// tiny graphs, betweenness centrality with three size-adaptive regimes,
// memoized descendant counts, and a level-weighted composite score.
//
// [sparsify] - Degree and strength based thinning for oversized graphs,
// with union-find bridge reinsertion so components stay connected.
//
// [layout] - Louvain community detection, force-directed placement with
// grid far-field approximation, overlap resolution, and viewport
// normalization.
//
// [elements] - Flat render contract (node and edge elements, bounds,
// quality metrics) serialized by [io].
//
// [pipeline] - Orchestration with caching, used by both CLI and API.
//
// [cache] - File, Redis, and null cache backends plus deterministic key
// derivation.
//
// [errors] - Structured error codes shared by CLI and API.
//
// [observability] - Optional instrumentation hooks with no-op defaults.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/layout/...   # Specific package
//
// [graph]: https://pkg.go.dev/github.com/knotmap/knotmap/pkg/graph
// [metrics]: https://pkg.go.dev/github.com/knotmap/knotmap/pkg/metrics
// [sparsify]: https://pkg.go.dev/github.com/knotmap/knotmap/pkg/sparsify
// [layout]: https://pkg.go.dev/github.com/knotmap/knotmap/pkg/layout
// [elements]: https://pkg.go.dev/github.com/knotmap/knotmap/pkg/elements
// [pipeline]: https://pkg.go.dev/github.com/knotmap/knotmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/knotmap/knotmap/pkg/cache
// [errors]: https://pkg.go.dev/github.com/knotmap/knotmap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/knotmap/knotmap/pkg/observability
// [io]: https://pkg.go.dev/github.com/knotmap/knotmap/pkg/io
package pkg
