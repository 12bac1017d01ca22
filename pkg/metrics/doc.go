// Package metrics computes per-node importance metrics over a built graph:
// PageRank, betweenness centrality, descendant counts, and a normalized
// composite importance score.
//
// Algorithm variants are chosen adaptively by graph size so worst-case
// latency stays bounded as graphs grow into the thousands of nodes:
//
//   - PageRank falls back to a degree proxy below 10 nodes, where the
//     iterative method is numerically unstable.
//   - Betweenness runs exact Brandes up to 100 nodes, source-sampled
//     Brandes up to 500, and a sqrt-degree approximation beyond that.
//
// All entry points are pure functions over an immutable graph; the only
// randomness (betweenness source sampling) sits behind an injectable,
// seedable source.
package metrics
