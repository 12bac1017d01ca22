package metrics

import (
	"math"

	"github.com/knotmap/knotmap/pkg/graph"
)

const (
	// Damping is the PageRank damping factor.
	Damping = 0.85

	// ConvergenceEpsilon stops iteration early once the max per-node delta
	// between rounds falls below it.
	ConvergenceEpsilon = 0.001

	// MinIterations and MaxIterations bound the configurable iteration
	// budget.
	MinIterations = 5
	MaxIterations = 20

	// smallGraphNodes is the size below which the iterative method is
	// skipped in favor of a degree proxy.
	smallGraphNodes = 10
)

// PageRank computes link-based importance for every node. The iteration
// budget is clamped to [MinIterations, MaxIterations]; zero selects
// MaxIterations. Iteration exits early once the max per-node delta drops
// below ConvergenceEpsilon.
//
// Graphs with fewer than 10 nodes use normalized degree (degree divided by
// total edge count) instead of the iterative method, which is numerically
// unstable at that size. A graph with a single node and no edges yields
// rank 1.0.
//
// Nodes with no neighbors contribute no forward mass: rank parked on them
// stays put instead of being redistributed. This is a deliberate
// simplification, not full teleportation PageRank.
func PageRank(g *graph.Graph, iterations int) map[string]float64 {
	ids := g.NodeIDs()
	n := len(ids)
	if n == 0 {
		return map[string]float64{}
	}
	if n < smallGraphNodes {
		return degreeProxy(g, ids)
	}

	switch {
	case iterations <= 0:
		iterations = MaxIterations
	case iterations < MinIterations:
		iterations = MinIterations
	case iterations > MaxIterations:
		iterations = MaxIterations
	}

	nf := float64(n)
	base := (1.0 - Damping) / nf
	rank := make(map[string]float64, n)
	for _, id := range ids {
		rank[id] = 1.0 / nf
	}

	for iter := 0; iter < iterations; iter++ {
		next := make(map[string]float64, n)
		for _, v := range ids {
			var sum float64
			for _, u := range g.Neighbors(v) {
				if deg := g.Degree(u); deg > 0 {
					sum += rank[u] / float64(deg)
				}
			}
			next[v] = base + Damping*sum
		}

		maxDelta := 0.0
		for _, id := range ids {
			if delta := math.Abs(next[id] - rank[id]); delta > maxDelta {
				maxDelta = delta
			}
		}
		rank = next
		if maxDelta < ConvergenceEpsilon {
			break
		}
	}

	return rank
}

// degreeProxy assigns degree/totalEdges to every node. With no edges at all,
// rank is split uniformly so a lone node scores 1.0.
func degreeProxy(g *graph.Graph, ids []string) map[string]float64 {
	rank := make(map[string]float64, len(ids))
	total := g.EdgeCount()
	if total == 0 {
		uniform := 1.0 / float64(len(ids))
		for _, id := range ids {
			rank[id] = uniform
		}
		return rank
	}
	for _, id := range ids {
		rank[id] = float64(g.Degree(id)) / float64(total)
	}
	return rank
}
