package metrics

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/knotmap/knotmap/pkg/graph"
)

// Composite importance weights. Each raw metric is normalized by its
// maximum across all nodes before weighting; the level bonus is tiered by
// hierarchy depth. This is the level-tiered scheme; there is no flat-weight
// variant in this codebase.
const (
	weightPageRank    = 0.25
	weightEntityCount = 0.25
	weightDescendants = 0.20
	weightBetweenness = 0.15

	levelBonusRoot   = 0.15
	levelBonusFirst  = 0.10
	levelBonusSecond = 0.05
)

// Record holds every importance metric computed for a single node.
type Record struct {
	NodeID      string  `json:"node_id"`
	PageRank    float64 `json:"page_rank"`
	Betweenness float64 `json:"betweenness"`

	// DescendantCount is the subtree size under the node's hierarchy.
	DescendantCount int `json:"descendant_count"`

	// EntityCount is supplied externally (or falls back to the node's
	// entity references).
	EntityCount int `json:"entity_count"`

	// CompositeImportance is the weighted, normalized score in [0,1].
	CompositeImportance float64 `json:"composite_importance"`
}

// Options configures a Compute run.
type Options struct {
	// PageRankIterations bounds the iterative PageRank; zero selects the
	// default (see PageRank).
	PageRankIterations int

	// EntityCounts overrides the per-node entity count. Nodes absent from
	// the map fall back to len(EntityReferences).
	EntityCounts map[string]int

	// Rand drives betweenness source sampling. Nil selects an unseeded
	// source; tests should pass a seeded one.
	Rand *rand.Rand
}

// Result is the output of Compute: one record per node, keyed by node ID,
// plus hierarchy anomalies encountered along the way.
type Result struct {
	Records map[string]Record `json:"records"`

	// CycleNodes lists nodes at which a ParentID cycle was detected while
	// counting descendants. A non-empty list indicates malformed caller
	// input, reported rather than raised.
	CycleNodes []string `json:"cycle_nodes,omitempty"`
}

// Ranked returns the records sorted by composite importance descending,
// breaking ties by node ID for determinism.
func (r Result) Ranked() []Record {
	out := make([]Record, 0, len(r.Records))
	for _, rec := range r.Records {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b Record) int {
		switch {
		case a.CompositeImportance > b.CompositeImportance:
			return -1
		case a.CompositeImportance < b.CompositeImportance:
			return 1
		default:
			return strings.Compare(a.NodeID, b.NodeID)
		}
	})
	return out
}

// Compute runs every metric over the graph and combines them into composite
// importance scores.
//
// Composite importance per node:
//
//	0.25·pageRankNorm + 0.25·entityCountNorm + 0.20·descendantNorm +
//	0.15·betweennessNorm + levelBonus
//
// where each norm divides by the metric's maximum across all nodes (taken
// as 0 when the maximum is 0) and levelBonus is 0.15 at level 0, 0.10 at
// level 1, 0.05 at level 2, and 0 below. The result is clamped to [0,1].
// An empty graph yields an empty result rather than an error.
func Compute(g *graph.Graph, opts Options) Result {
	nodes := g.Nodes()
	result := Result{Records: make(map[string]Record, len(nodes))}
	if len(nodes) == 0 {
		return result
	}

	pageRank := PageRank(g, opts.PageRankIterations)
	betweenness := Betweenness(g, opts.Rand)
	descendants, cycles := DescendantCounts(g)
	result.CycleNodes = cycles

	var maxPR, maxBW float64
	var maxDesc, maxEnt int
	entityCount := func(n graph.Node) int {
		if c, ok := opts.EntityCounts[n.ID]; ok {
			return c
		}
		return n.EntityCount()
	}
	for _, n := range nodes {
		maxPR = max(maxPR, pageRank[n.ID])
		maxBW = max(maxBW, betweenness[n.ID])
		maxDesc = max(maxDesc, descendants[n.ID])
		maxEnt = max(maxEnt, entityCount(n))
	}

	for _, n := range nodes {
		rec := Record{
			NodeID:          n.ID,
			PageRank:        pageRank[n.ID],
			Betweenness:     betweenness[n.ID],
			DescendantCount: descendants[n.ID],
			EntityCount:     entityCount(n),
		}

		score := weightPageRank*normalize(rec.PageRank, maxPR) +
			weightEntityCount*normalize(float64(rec.EntityCount), float64(maxEnt)) +
			weightDescendants*normalize(float64(rec.DescendantCount), float64(maxDesc)) +
			weightBetweenness*normalize(rec.Betweenness, maxBW) +
			levelBonus(n.Level)
		rec.CompositeImportance = clamp01(score)

		result.Records[n.ID] = rec
	}
	return result
}

// normalize divides v by the population maximum, yielding 0 for an all-zero
// metric instead of dividing by zero.
func normalize(v, maxV float64) float64 {
	if maxV <= 0 {
		return 0
	}
	return v / maxV
}

// levelBonus rewards nodes near the top of the hierarchy.
func levelBonus(level int) float64 {
	switch level {
	case 0:
		return levelBonusRoot
	case 1:
		return levelBonusFirst
	case 2:
		return levelBonusSecond
	default:
		return 0
	}
}

// clamp01 clamps v into [0,1].
func clamp01(v float64) float64 {
	return min(1, max(0, v))
}
