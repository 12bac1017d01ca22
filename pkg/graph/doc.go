// Package graph provides the core graph structure and the build pipeline
// that turns raw topic/entity node and edge lists into a clean, validated
// graph instance.
//
// # Model
//
// Nodes form a hierarchy via Level and ParentID (level 0 is a root). Edges
// are weighted, typed relationships treated as unordered pairs: at most one
// edge may exist between any two nodes, and self-loops are rejected.
//
// # Building
//
// [Build] runs the full validation pipeline on raw input:
//
//	g, stats := graph.Build(nodes, edges, graph.BuildOptions{})
//
// Content anomalies (self-loops, dangling endpoints, duplicates, low
// confidence, missing types) never fail the build - they are filtered and
// tallied per reason in [BuildStats]. After edge insertion, nodes with
// degree 0 are removed, so the resulting graph contains no isolated nodes.
//
// # Ownership
//
// A built graph is exclusively owned by the pipeline run that created it.
// Accessors return copies or read-only views; nothing in this package keeps
// state between builds.
package graph
