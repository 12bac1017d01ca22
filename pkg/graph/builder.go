package graph

// =============================================================================
// Build Options
// =============================================================================

const (
	// DefaultNodeLimit caps the number of input nodes retained by Build.
	DefaultNodeLimit = 2000

	// DefaultMinEdgeConfidence is the confidence floor below which
	// non-parent edges are dropped.
	DefaultMinEdgeConfidence = 0.2
)

// BuildOptions configures the validation and filtering pipeline.
// The zero value yields the documented defaults.
type BuildOptions struct {
	// NodeLimit truncates the input node list; nodes beyond the limit are
	// dropped, not rejected. Defaults to DefaultNodeLimit.
	NodeLimit int

	// MinEdgeConfidence is the confidence floor for non-parent edges.
	// Defaults to DefaultMinEdgeConfidence.
	MinEdgeConfidence float64

	// SkipEdgeFiltering disables confidence filtering entirely.
	SkipEdgeFiltering bool
}

// withDefaults returns a copy with zero fields replaced by defaults.
func (o BuildOptions) withDefaults() BuildOptions {
	if o.NodeLimit <= 0 {
		o.NodeLimit = DefaultNodeLimit
	}
	if o.MinEdgeConfidence == 0 {
		o.MinEdgeConfidence = DefaultMinEdgeConfidence
	}
	return o
}

// =============================================================================
// Build Stats
// =============================================================================

// BuildStats counts everything the builder dropped, by reason. The counters
// are diagnostic: content anomalies are filtered silently and never surface
// as errors.
type BuildStats struct {
	NodesIn          int `json:"nodes_in"`
	NodesTruncated   int `json:"nodes_truncated,omitempty"`
	NodesIsolated    int `json:"nodes_isolated,omitempty"`
	NodesInsertError int `json:"nodes_insert_error,omitempty"`
	NodesOut         int `json:"nodes_out"`

	EdgesIn            int `json:"edges_in"`
	EdgesSelfLoop      int `json:"edges_self_loop,omitempty"`
	EdgesMissingNode   int `json:"edges_missing_node,omitempty"`
	EdgesDuplicate     int `json:"edges_duplicate,omitempty"`
	EdgesLowConfidence int `json:"edges_low_confidence,omitempty"`
	EdgesMissingType   int `json:"edges_missing_type,omitempty"`
	EdgesInsertError   int `json:"edges_insert_error,omitempty"`
	EdgesOut           int `json:"edges_out"`
}

// Dropped returns the total number of edges removed for any reason.
func (s BuildStats) Dropped() int {
	return s.EdgesSelfLoop + s.EdgesMissingNode + s.EdgesDuplicate +
		s.EdgesLowConfidence + s.EdgesInsertError
}

// =============================================================================
// Build
// =============================================================================

// Build validates and filters raw node and edge lists into a clean graph.
//
// Processing order:
//
//  1. Truncate the node list to NodeLimit.
//  2. Per edge, in sequence: drop self-loops, drop edges with a missing
//     endpoint, drop unordered-pair duplicates, drop non-parent edges below
//     MinEdgeConfidence (skipped entirely when SkipEdgeFiltering is set).
//     A missing Type defaults to "related" and is counted, not rejected.
//  3. Remove nodes that end up with degree 0.
//
// Missing edge confidence defaults to 0.5; missing strength defaults to the
// edge's confidence. Nodes with empty or duplicate IDs are counted as
// insertion errors and skipped. Build never fails on content anomalies -
// they are tallied in BuildStats. Malformed input shape is rejected before
// this point, at decode time (see pkg/io).
func Build(nodes []Node, edges []Edge, opts BuildOptions) (*Graph, BuildStats) {
	opts = opts.withDefaults()
	stats := BuildStats{NodesIn: len(nodes), EdgesIn: len(edges)}

	if len(nodes) > opts.NodeLimit {
		stats.NodesTruncated = len(nodes) - opts.NodeLimit
		nodes = nodes[:opts.NodeLimit]
	}

	g := New()
	for _, n := range nodes {
		// Empty or duplicate IDs are content anomalies, not fatal.
		if err := g.AddNode(n); err != nil {
			stats.NodesInsertError++
		}
	}

	for _, e := range edges {
		if e.Confidence == 0 {
			e.Confidence = DefaultEdgeConfidence
		}
		if e.Strength == 0 {
			e.Strength = e.Confidence
		}
		if e.Type == "" {
			e.Type = EdgeTypeRelated
			stats.EdgesMissingType++
		}
		switch {
		case e.From == e.To:
			stats.EdgesSelfLoop++
		case !g.HasNode(e.From) || !g.HasNode(e.To):
			stats.EdgesMissingNode++
		case g.hasEdgeKey(e.Key()):
			stats.EdgesDuplicate++
		case !opts.SkipEdgeFiltering && !e.IsParent() && e.Confidence < opts.MinEdgeConfidence:
			stats.EdgesLowConfidence++
		default:
			if err := g.AddEdge(e); err != nil {
				stats.EdgesInsertError++
			}
		}
	}

	for _, id := range g.NodeIDs() {
		if g.Degree(id) == 0 {
			g.RemoveNode(id)
			stats.NodesIsolated++
		}
	}

	g.refreshChildCounts()
	stats.NodesOut = g.NodeCount()
	stats.EdgesOut = g.EdgeCount()
	return g, stats
}

// hasEdgeKey reports whether the unordered pair key is already indexed.
func (g *Graph) hasEdgeKey(key string) bool {
	_, ok := g.edgeKeys[key]
	return ok
}

// refreshChildCounts recomputes the derived ChildCount for every node from
// the hierarchy index.
func (g *Graph) refreshChildCounts() {
	for id, n := range g.nodes {
		n.ChildCount = len(g.children[id])
	}
}
