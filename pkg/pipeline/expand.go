package pipeline

import (
	"context"
	"fmt"

	kerrors "github.com/knotmap/knotmap/pkg/errors"
	"github.com/knotmap/knotmap/pkg/graph"
	kio "github.com/knotmap/knotmap/pkg/io"
)

// NeighborhoodFetcher retrieves the nodes and edges surrounding one node
// from an external source. Implementations typically talk to the knowledge
// store that produced the original input.
type NeighborhoodFetcher interface {
	// FetchNeighborhood returns the delta (nodes and edges) around nodeID.
	// Returning an empty Input is valid and means nothing new was found.
	FetchNeighborhood(ctx context.Context, nodeID string) (kio.Input, error)
}

// Expand fetches the neighborhood of nodeID, merges it into the base
// input, and re-runs the full pipeline over the merged input. The merge
// deduplicates nodes by ID and edges by their unordered endpoint pair;
// existing entries win over fetched ones, so expansion never rewrites
// what the caller already has.
func (r *Runner) Expand(ctx context.Context, base kio.Input, nodeID string, fetcher NeighborhoodFetcher, opts Options) (*Result, error) {
	if fetcher == nil {
		return nil, kerrors.New(kerrors.ErrCodeInvalidInput, "neighborhood fetcher is required")
	}
	if err := kerrors.ValidateNodeID(nodeID); err != nil {
		return nil, err
	}

	delta, err := fetcher.FetchNeighborhood(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("fetch neighborhood of %s: %w", nodeID, err)
	}

	merged := MergeInputs(base, delta)
	r.logger(opts).Info("expanded neighborhood",
		"node", nodeID,
		"newNodes", len(merged.Nodes)-len(base.Nodes),
		"newEdges", len(merged.Edges)-len(base.Edges))

	// The merged input goes through a fresh build so all filtering rules
	// apply uniformly to old and new entries.
	return r.Execute(ctx, merged, opts)
}

// MergeInputs combines two raw inputs, deduplicating nodes by ID and edges
// by unordered endpoint pair. Entries from base take precedence. Delta
// edges with invalid endpoints (empty IDs, self-loops) are discarded; the
// delta comes from an external fetcher and gets no benefit of the doubt.
func MergeInputs(base, delta kio.Input) kio.Input {
	out := kio.Input{
		Nodes: make([]graph.Node, 0, len(base.Nodes)+len(delta.Nodes)),
		Edges: make([]graph.Edge, 0, len(base.Edges)+len(delta.Edges)),
	}

	seenNodes := make(map[string]bool, len(base.Nodes))
	for _, n := range base.Nodes {
		out.Nodes = append(out.Nodes, n)
		seenNodes[n.ID] = true
	}
	for _, n := range delta.Nodes {
		if n.ID == "" || seenNodes[n.ID] {
			continue
		}
		out.Nodes = append(out.Nodes, n)
		seenNodes[n.ID] = true
	}

	seenEdges := make(map[string]bool, len(base.Edges))
	for _, e := range base.Edges {
		out.Edges = append(out.Edges, e)
		seenEdges[e.Key()] = true
	}
	for _, e := range delta.Edges {
		if kerrors.ValidateEdgeEndpoints(e.From, e.To) != nil {
			continue
		}
		if seenEdges[e.Key()] {
			continue
		}
		out.Edges = append(out.Edges, e)
		seenEdges[e.Key()] = true
	}

	return out
}
