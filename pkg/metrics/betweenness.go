package metrics

import (
	"math"
	"math/rand/v2"

	"github.com/knotmap/knotmap/pkg/graph"
)

const (
	// exactBrandesMax is the largest node count for which every node is
	// used as a BFS source.
	exactBrandesMax = 100

	// sampledBrandesMax is the largest node count for which sampled
	// Brandes runs; larger graphs use the degree approximation.
	sampledBrandesMax = 500

	// sampleFraction and sampleCap bound the number of sampled sources.
	sampleFraction = 0.3
	sampleCap      = 100

	// betweennessStrengthFloor restricts the BFS adjacency to reasonably
	// strong edges. This filter exists purely to bound fan-out; it is
	// independent of (and stricter than) builder-level edge filtering.
	betweennessStrengthFloor = 0.4
)

// Betweenness computes betweenness centrality for every node, choosing a
// regime by node count n:
//
//   - n > 500: sqrt(degree/maxDegree), a degree approximation shaped to
//     betweenness's more concentrated distribution.
//   - 100 < n <= 500: Brandes' algorithm from a ~30% sample of sources
//     (capped at 100), scaled by n/sampleSize to estimate the
//     full-population accumulator.
//   - n <= 100: exact Brandes over all sources.
//
// Values are raw accumulators, not normalized to [0,1]. The graph is
// treated as undirected and restricted to edges with strength >= 0.4.
// rng drives source sampling; pass a seeded source for reproducible runs.
// A node with no qualifying adjacency always scores 0.
func Betweenness(g *graph.Graph, rng *rand.Rand) map[string]float64 {
	ids := g.NodeIDs()
	n := len(ids)

	switch {
	case n == 0:
		return map[string]float64{}
	case n > sampledBrandesMax:
		return degreeApproximation(g, ids)
	case n > exactBrandesMax:
		return sampledBrandes(g, ids, rng)
	default:
		adj := strongAdjacency(g, ids)
		cb := zeroScores(ids)
		for _, s := range ids {
			brandesAccumulate(s, adj, cb)
		}
		return cb
	}
}

// degreeApproximation maps each node to sqrt(degree/maxDegree).
func degreeApproximation(g *graph.Graph, ids []string) map[string]float64 {
	maxDegree := 0
	for _, id := range ids {
		if d := g.Degree(id); d > maxDegree {
			maxDegree = d
		}
	}
	cb := zeroScores(ids)
	if maxDegree == 0 {
		return cb
	}
	for _, id := range ids {
		cb[id] = math.Sqrt(float64(g.Degree(id)) / float64(maxDegree))
	}
	return cb
}

// sampledBrandes estimates betweenness from a random subset of BFS sources,
// scaling the accumulator by n/sampleSize.
func sampledBrandes(g *graph.Graph, ids []string, rng *rand.Rand) map[string]float64 {
	n := len(ids)
	sampleSize := int(float64(n) * sampleFraction)
	if sampleSize > sampleCap {
		sampleSize = sampleCap
	}
	if sampleSize < 1 {
		sampleSize = 1
	}

	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	sources := make([]string, n)
	copy(sources, ids)
	rng.Shuffle(n, func(i, j int) { sources[i], sources[j] = sources[j], sources[i] })
	sources = sources[:sampleSize]

	adj := strongAdjacency(g, ids)
	cb := zeroScores(ids)
	for _, s := range sources {
		brandesAccumulate(s, adj, cb)
	}

	scale := float64(n) / float64(sampleSize)
	for id := range cb {
		cb[id] *= scale
	}
	return cb
}

// strongAdjacency builds the undirected adjacency restricted to edges at or
// above the strength floor.
func strongAdjacency(g *graph.Graph, ids []string) map[string][]string {
	adj := make(map[string][]string, len(ids))
	for _, e := range g.Edges() {
		if e.Strength < betweennessStrengthFloor {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
	}
	return adj
}

// brandesAccumulate runs one source iteration of Brandes' algorithm: a BFS
// from s counting shortest paths, then back-propagation of pair
// dependencies into cb.
func brandesAccumulate(s string, adj map[string][]string, cb map[string]float64) {
	stack := make([]string, 0, len(cb))
	pred := make(map[string][]string)
	sigma := map[string]float64{s: 1}
	dist := map[string]int{s: 0}

	queue := []string{s}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		stack = append(stack, v)

		for _, w := range adj[v] {
			if _, seen := dist[w]; !seen {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}
			if dist[w] == dist[v]+1 {
				sigma[w] += sigma[v]
				pred[w] = append(pred[w], v)
			}
		}
	}

	delta := make(map[string]float64, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		w := stack[i]
		for _, v := range pred[w] {
			delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
		}
		if w != s {
			cb[w] += delta[w]
		}
	}
}

// zeroScores initializes a score map with every node at 0.
func zeroScores(ids []string) map[string]float64 {
	cb := make(map[string]float64, len(ids))
	for _, id := range ids {
		cb[id] = 0
	}
	return cb
}
