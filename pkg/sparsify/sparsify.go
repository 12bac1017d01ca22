// Package sparsify prunes weakly connected nodes and low-strength edges
// from large graphs so the downstream metric and layout passes stay cheap,
// while a bridge-reinsertion pass preserves overall connectivity.
package sparsify

import (
	"math"
	"slices"

	"github.com/knotmap/knotmap/pkg/graph"
)

// Trigger thresholds: graphs at or below both sizes pass through untouched.
const (
	TriggerNodes = 50
	TriggerEdges = 100
)

// Stats reports what sparsification kept and dropped.
type Stats struct {
	Applied      bool    `json:"applied"`
	NodesIn      int     `json:"nodes_in"`
	NodesKept    int     `json:"nodes_kept"`
	EdgesIn      int     `json:"edges_in"`
	EdgesKept    int     `json:"edges_kept"`
	BridgesAdded int     `json:"bridges_added,omitempty"`
	Threshold    float64 `json:"strength_threshold,omitempty"`

	// CompressionRatio is the product of the node and edge fractions
	// retained; 1.0 means nothing was removed.
	CompressionRatio float64 `json:"compression_ratio"`
}

// Sparsify reduces a large graph to its structurally significant core.
// Graphs at or below the trigger thresholds (50 nodes, 100 edges) are
// returned unchanged.
//
// Node retention: a node survives if it is a root (level 0), has at least
// one child, or its degree is at least ceil(log2(nodeCount)).
//
// Edge retention: an edge survives if both endpoints survived and its
// strength meets an adaptive threshold chosen by edge count (>10000 edges:
// 0.8, >1000: 0.7, >500: 0.6, else 0.5). A Kruskal-style union-find pass
// over all edges in descending strength order collects bridges - edges that
// first connect two disjoint clusters - and merges them back in so the
// filtered graph does not fall apart.
//
// The input graph is never mutated; the result is a fresh instance.
func Sparsify(g *graph.Graph) (*graph.Graph, Stats) {
	stats := Stats{
		NodesIn:          g.NodeCount(),
		EdgesIn:          g.EdgeCount(),
		NodesKept:        g.NodeCount(),
		EdgesKept:        g.EdgeCount(),
		CompressionRatio: 1,
	}
	if g.NodeCount() <= TriggerNodes || g.EdgeCount() <= TriggerEdges {
		return g, stats
	}

	stats.Applied = true
	stats.Threshold = strengthThreshold(g.EdgeCount())

	keep := retainedNodes(g)
	edges := g.Edges()

	// Bridge pass runs over the full pre-threshold edge list so weak edges
	// can still stitch clusters together when nothing stronger does.
	bridges := bridgeEdges(g.NodeIDs(), edges)

	out := graph.New()
	for _, n := range g.Nodes() {
		if keep[n.ID] {
			out.AddNode(n)
		}
	}

	for _, e := range edges {
		if !keep[e.From] || !keep[e.To] {
			continue
		}
		isBridge := bridges[e.Key()]
		if e.Strength < stats.Threshold && !isBridge {
			continue
		}
		if err := out.AddEdge(e); err == nil && isBridge && e.Strength < stats.Threshold {
			stats.BridgesAdded++
		}
	}

	stats.NodesKept = out.NodeCount()
	stats.EdgesKept = out.EdgeCount()
	if stats.NodesIn > 0 && stats.EdgesIn > 0 {
		nodeFrac := float64(stats.NodesKept) / float64(stats.NodesIn)
		edgeFrac := float64(stats.EdgesKept) / float64(stats.EdgesIn)
		stats.CompressionRatio = nodeFrac * edgeFrac
	}
	return out, stats
}

// retainedNodes applies the node-retention rules: roots, parents, and nodes
// whose degree clears the logarithmic floor.
func retainedNodes(g *graph.Graph) map[string]bool {
	minDegree := int(math.Ceil(math.Log2(float64(g.NodeCount()))))
	keep := make(map[string]bool, g.NodeCount())
	for _, n := range g.Nodes() {
		switch {
		case n.IsRoot():
			keep[n.ID] = true
		case len(g.Children(n.ID)) > 0:
			keep[n.ID] = true
		case g.Degree(n.ID) >= minDegree:
			keep[n.ID] = true
		}
	}
	return keep
}

// strengthThreshold picks the adaptive edge-strength floor by edge count.
func strengthThreshold(edgeCount int) float64 {
	switch {
	case edgeCount > 10000:
		return 0.8
	case edgeCount > 1000:
		return 0.7
	case edgeCount > 500:
		return 0.6
	default:
		return 0.5
	}
}

// bridgeEdges performs a spanning-forest construction over edges sorted by
// strength descending, marking each edge that connects two previously
// disjoint clusters.
func bridgeEdges(ids []string, edges []graph.Edge) map[string]bool {
	sorted := slices.Clone(edges)
	slices.SortStableFunc(sorted, func(a, b graph.Edge) int {
		switch {
		case a.Strength > b.Strength:
			return -1
		case a.Strength < b.Strength:
			return 1
		default:
			return 0
		}
	})

	uf := newUnionFind(ids)
	bridges := make(map[string]bool)
	for _, e := range sorted {
		if uf.union(e.From, e.To) {
			bridges[e.Key()] = true
		}
	}
	return bridges
}
