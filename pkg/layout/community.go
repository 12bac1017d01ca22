package layout

import (
	"errors"
	"math"
	"sort"

	"github.com/knotmap/knotmap/pkg/graph"
)

// errDegenerateWeights signals that the graph's edge weights cannot support
// modularity optimization. Callers fall back to a single community.
var errDegenerateWeights = errors.New("degenerate edge weights")

// louvainMaxLevels bounds the aggregation depth. Topic graphs flatten out
// well before this.
const louvainMaxLevels = 3

// weightedGraph is the compact adjacency the Louvain passes operate on.
// Nodes are dense ints; weights are symmetric.
type weightedGraph struct {
	neighbors [][]int
	weights   [][]float64
	total     float64 // sum of all edge weights (each edge counted once)
}

// Communities partitions the graph by modularity maximization (Louvain:
// greedy local moving plus graph aggregation). Edge strength is the weight.
// The returned map assigns every node a community ID, compacted to
// 0..k-1 in order of each community's smallest member ID so results are
// deterministic.
//
// On degenerate input (no usable weights) every node lands in community 0
// rather than an error propagating: partition quality degrades, the
// pipeline does not.
func Communities(g *graph.Graph) map[string]int {
	ids := g.NodeIDs()
	assignment, err := louvain(g, ids)
	if err != nil {
		assignment = make([]int, len(ids))
	}

	// Compact community IDs deterministically by first appearance in ID
	// order.
	compact := make(map[int]int)
	result := make(map[string]int, len(ids))
	for i, id := range ids {
		c := assignment[i]
		if _, ok := compact[c]; !ok {
			compact[c] = len(compact)
		}
		result[id] = compact[c]
	}
	return result
}

// louvain runs the multi-level algorithm and returns a community index per
// node position in ids.
func louvain(g *graph.Graph, ids []string) ([]int, error) {
	n := len(ids)
	if n == 0 {
		return nil, nil
	}

	index := make(map[string]int, n)
	for i, id := range ids {
		index[id] = i
	}

	wg := &weightedGraph{
		neighbors: make([][]int, n),
		weights:   make([][]float64, n),
	}
	for _, e := range g.Edges() {
		w := e.Strength
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			continue
		}
		u, v := index[e.From], index[e.To]
		wg.neighbors[u] = append(wg.neighbors[u], v)
		wg.weights[u] = append(wg.weights[u], w)
		wg.neighbors[v] = append(wg.neighbors[v], u)
		wg.weights[v] = append(wg.weights[v], w)
		wg.total += w
	}
	if wg.total <= 0 || math.IsNaN(wg.total) || math.IsInf(wg.total, 0) {
		return nil, errDegenerateWeights
	}

	// membership[i] tracks node i's community in the original graph;
	// communities are renumbered at each aggregation level.
	membership := make([]int, n)
	for i := range membership {
		membership[i] = i
	}

	current := wg
	for level := 0; level < louvainMaxLevels; level++ {
		assignment, improved := localMove(current)
		if !improved && level > 0 {
			break
		}

		// Fold the level's assignment into the original-node membership.
		relabel := compactLabels(assignment)
		for i := range membership {
			membership[i] = relabel[assignment[membership[i]]]
		}

		next := aggregate(current, assignment, relabel)
		if len(next.neighbors) == len(current.neighbors) {
			break // no contraction happened; further levels are futile
		}
		current = next
	}

	return membership, nil
}

// localMove greedily reassigns each node to the neighboring community with
// the highest modularity gain until a full sweep makes no move.
func localMove(g *weightedGraph) ([]int, bool) {
	n := len(g.neighbors)
	community := make([]int, n)
	degree := make([]float64, n)       // weighted degree per node
	communityTot := make([]float64, n) // total weighted degree per community

	for i := range g.neighbors {
		community[i] = i
		for _, w := range g.weights[i] {
			degree[i] += w
		}
		communityTot[i] = degree[i]
	}

	m2 := 2 * g.total
	anyMove := false

	for sweep := 0; sweep < 10; sweep++ {
		moved := false
		for i := 0; i < n; i++ {
			// Weight from i into each adjacent community.
			linkTo := make(map[int]float64)
			for j, nb := range g.neighbors[i] {
				if nb != i {
					linkTo[community[nb]] += g.weights[i][j]
				}
			}

			current := community[i]
			communityTot[current] -= degree[i]

			// Candidates sorted so gain ties resolve the same way every
			// run.
			candidates := make([]int, 0, len(linkTo))
			for c := range linkTo {
				candidates = append(candidates, c)
			}
			sort.Ints(candidates)

			best, bestGain := current, 0.0
			for _, c := range candidates {
				gain := linkTo[c] - communityTot[c]*degree[i]/m2
				if gain > bestGain {
					best, bestGain = c, gain
				}
			}

			communityTot[best] += degree[i]
			if best != current {
				community[i] = best
				moved = true
				anyMove = true
			}
		}
		if !moved {
			break
		}
	}

	return community, anyMove
}

// compactLabels maps sparse community labels to dense 0..k-1.
func compactLabels(assignment []int) map[int]int {
	relabel := make(map[int]int)
	for _, c := range assignment {
		if _, ok := relabel[c]; !ok {
			relabel[c] = len(relabel)
		}
	}
	return relabel
}

// aggregate contracts each community into a super-node, merging parallel
// edge weights. Self-weights (intra-community edges) are retained so later
// levels see them.
func aggregate(g *weightedGraph, assignment []int, relabel map[int]int) *weightedGraph {
	k := len(relabel)
	merged := make([]map[int]float64, k)
	for i := range merged {
		merged[i] = make(map[int]float64)
	}

	var total float64
	for i := range g.neighbors {
		ci := relabel[assignment[i]]
		for j, nb := range g.neighbors[i] {
			cj := relabel[assignment[nb]]
			// Each undirected edge appears twice in the adjacency; halve
			// to count once.
			merged[ci][cj] += g.weights[i][j] / 2
		}
	}

	out := &weightedGraph{
		neighbors: make([][]int, k),
		weights:   make([][]float64, k),
	}
	for i, adj := range merged {
		js := make([]int, 0, len(adj))
		for j := range adj {
			js = append(js, j)
		}
		sort.Ints(js)
		for _, j := range js {
			w := adj[j]
			if j < i {
				continue // emit each pair once; self-loops via j == i
			}
			out.neighbors[i] = append(out.neighbors[i], j)
			out.weights[i] = append(out.weights[i], w)
			if j != i {
				out.neighbors[j] = append(out.neighbors[j], i)
				out.weights[j] = append(out.weights[j], w)
				total += w
			} else {
				total += w
			}
		}
	}
	out.total = total
	return out
}
