package metrics

import (
	"testing"

	"github.com/knotmap/knotmap/pkg/graph"
)

// buildGraph wires the given nodes and edge pairs directly, bypassing the
// builder's isolation filter so tests control the exact topology.
func buildGraph(t *testing.T, nodes []graph.Node, pairs [][2]string) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s) = %v", n.ID, err)
		}
	}
	for _, p := range pairs {
		if err := g.AddEdge(graph.Edge{From: p[0], To: p[1], Confidence: 0.9, Strength: 0.9}); err != nil {
			t.Fatalf("AddEdge(%s, %s) = %v", p[0], p[1], err)
		}
	}
	return g
}

func idNodes(ids ...string) []graph.Node {
	nodes := make([]graph.Node, len(ids))
	for i, id := range ids {
		nodes[i] = graph.Node{ID: id}
	}
	return nodes
}

func TestPageRankSingleNode(t *testing.T) {
	g := buildGraph(t, idNodes("only"), nil)

	rank := PageRank(g, 0)

	if rank["only"] != 1.0 {
		t.Errorf("PageRank of lone node = %v, want 1.0", rank["only"])
	}
}

func TestPageRankNonNegative(t *testing.T) {
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}
	pairs := make([][2]string, 0, 19)
	for i := 1; i < len(ids); i++ {
		pairs = append(pairs, [2]string{ids[0], ids[i]})
	}
	g := buildGraph(t, idNodes(ids...), pairs)

	rank := PageRank(g, 0)

	for id, r := range rank {
		if r < 0 {
			t.Errorf("PageRank(%s) = %v, want >= 0", id, r)
		}
	}
	// The hub should dominate its spokes.
	if rank[ids[0]] <= rank[ids[1]] {
		t.Errorf("hub rank %v should exceed spoke rank %v", rank[ids[0]], rank[ids[1]])
	}
}

func TestPageRankSmallGraphUsesDegreeProxy(t *testing.T) {
	// 3 nodes, 2 edges: degrees are b=2, a=c=1.
	g := buildGraph(t, idNodes("a", "b", "c"), [][2]string{{"a", "b"}, {"b", "c"}})

	rank := PageRank(g, 0)

	if rank["b"] != 1.0 { // 2 edges touching / 2 total
		t.Errorf("rank(b) = %v, want 1.0 (degree proxy)", rank["b"])
	}
	if rank["a"] != 0.5 || rank["c"] != 0.5 {
		t.Errorf("rank(a)/rank(c) = %v/%v, want 0.5/0.5", rank["a"], rank["c"])
	}
}

func TestPageRankEmptyGraph(t *testing.T) {
	if got := PageRank(graph.New(), 0); len(got) != 0 {
		t.Errorf("PageRank of empty graph = %v, want empty", got)
	}
}

func TestPageRankIterationClamping(t *testing.T) {
	ids := make([]string, 12)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}
	var pairs [][2]string
	for i := 1; i < len(ids); i++ {
		pairs = append(pairs, [2]string{ids[i-1], ids[i]})
	}
	g := buildGraph(t, idNodes(ids...), pairs)

	// Out-of-range budgets must still converge to sane values.
	for _, iters := range []int{-1, 1, 100} {
		rank := PageRank(g, iters)
		for id, r := range rank {
			if r < 0 || r > 1 {
				t.Errorf("iters=%d: rank(%s) = %v out of range", iters, id, r)
			}
		}
	}
}
