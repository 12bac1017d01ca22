package metrics

import "github.com/knotmap/knotmap/pkg/graph"

// DescendantCounts returns the subtree size (number of transitive
// descendants) for every node, derived from the parent→child hierarchy.
// A node with no children counts 0. Results are memoized so each node is
// visited once.
//
// Malformed ParentID chains can form cycles; traversal carries a visited
// set and reports each node at which a cycle was detected in the second
// return value instead of recursing forever. Nodes on a cycle count only
// the descendants reachable before the cycle closes.
func DescendantCounts(g *graph.Graph) (map[string]int, []string) {
	counts := make(map[string]int, g.NodeCount())
	var anomalies []string

	var visit func(id string, path map[string]bool) int
	visit = func(id string, path map[string]bool) int {
		if c, ok := counts[id]; ok {
			return c
		}
		if path[id] {
			anomalies = append(anomalies, id)
			return 0
		}
		path[id] = true
		total := 0
		for _, child := range g.Children(id) {
			total += 1 + visit(child, path)
		}
		delete(path, id)
		counts[id] = total
		return total
	}

	for _, id := range g.NodeIDs() {
		visit(id, make(map[string]bool))
	}
	return counts, anomalies
}
