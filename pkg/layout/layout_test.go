package layout

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/knotmap/knotmap/pkg/graph"
)

func buildGraph(t *testing.T, nodes []graph.Node, edges []graph.Edge) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s-%s): %v", e.From, e.To, err)
		}
	}
	return g
}

func idNodes(ids ...string) []graph.Node {
	nodes := make([]graph.Node, len(ids))
	for i, id := range ids {
		nodes[i] = graph.Node{ID: id, Name: id}
	}
	return nodes
}

func seededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestBuildEmptyGraph(t *testing.T) {
	result := Build(graph.New(), Options{})
	if len(result.Nodes) != 0 {
		t.Fatalf("expected no nodes, got %d", len(result.Nodes))
	}
}

func TestBuildSingleNode(t *testing.T) {
	g := buildGraph(t, idNodes("only"), nil)
	result := Build(g, Options{Rand: seededRand(1)})

	node, ok := result.Nodes["only"]
	if !ok {
		t.Fatal("node missing from layout")
	}
	if math.IsNaN(node.X) || math.IsNaN(node.Y) {
		t.Fatalf("non-finite position (%f, %f)", node.X, node.Y)
	}
	wantSize := float64(MinNodeSize) + float64(MaxNodeSize-MinNodeSize)/2
	if node.Size != wantSize {
		t.Errorf("uniform-degree size = %f, want midpoint %f", node.Size, wantSize)
	}
	if node.Color == "" {
		t.Error("node has no color")
	}
}

func TestBuildCoordinatesWithinViewport(t *testing.T) {
	nodes := idNodes("a", "b", "c", "d", "e", "f", "g", "h")
	edges := []graph.Edge{
		{From: "a", To: "b", Type: "related", Strength: 0.9},
		{From: "b", To: "c", Type: "related", Strength: 0.9},
		{From: "c", To: "d", Type: "related", Strength: 0.9},
		{From: "d", To: "e", Type: "related", Strength: 0.9},
		{From: "e", To: "f", Type: "related", Strength: 0.9},
		{From: "f", To: "g", Type: "related", Strength: 0.9},
		{From: "g", To: "h", Type: "related", Strength: 0.9},
	}
	g := buildGraph(t, nodes, edges)

	result := Build(g, Options{ViewportSize: 500, Rand: seededRand(7)})
	for id, node := range result.Nodes {
		if math.IsNaN(node.X) || math.IsInf(node.X, 0) || math.IsNaN(node.Y) || math.IsInf(node.Y, 0) {
			t.Fatalf("node %s has non-finite position (%f, %f)", id, node.X, node.Y)
		}
		if node.X < -500 || node.X > 500 || node.Y < -500 || node.Y > 500 {
			t.Errorf("node %s at (%f, %f) outside viewport", id, node.X, node.Y)
		}
	}
	if result.Stats.FallbackPositions != 0 {
		t.Errorf("unexpected fallback positions: %d", result.Stats.FallbackPositions)
	}
}

func TestBuildDeterministicWithSeed(t *testing.T) {
	mk := func() *graph.Graph {
		return buildGraph(t, idNodes("a", "b", "c", "d"), []graph.Edge{
			{From: "a", To: "b", Type: "related", Strength: 0.8},
			{From: "b", To: "c", Type: "related", Strength: 0.8},
			{From: "c", To: "d", Type: "related", Strength: 0.8},
		})
	}

	first := Build(mk(), Options{Rand: seededRand(42)})
	second := Build(mk(), Options{Rand: seededRand(42)})

	for id, a := range first.Nodes {
		b := second.Nodes[id]
		if a.X != b.X || a.Y != b.Y {
			t.Errorf("node %s differs across seeded runs: (%f,%f) vs (%f,%f)", id, a.X, a.Y, b.X, b.Y)
		}
	}
}

func TestNodeSizesScaleWithDegree(t *testing.T) {
	// Star: hub has degree 4, leaves degree 1.
	nodes := idNodes("hub", "l1", "l2", "l3", "l4")
	edges := []graph.Edge{
		{From: "hub", To: "l1", Type: "related", Strength: 0.9},
		{From: "hub", To: "l2", Type: "related", Strength: 0.9},
		{From: "hub", To: "l3", Type: "related", Strength: 0.9},
		{From: "hub", To: "l4", Type: "related", Strength: 0.9},
	}
	g := buildGraph(t, nodes, edges)

	result := Build(g, Options{Rand: seededRand(3)})
	if got := result.Nodes["hub"].Size; got != MaxNodeSize {
		t.Errorf("hub size = %f, want %d", got, MaxNodeSize)
	}
	if got := result.Nodes["l1"].Size; got != MinNodeSize {
		t.Errorf("leaf size = %f, want %d", got, MinNodeSize)
	}
}

func TestCommunitiesSplitCliques(t *testing.T) {
	// Two triangles joined by one weak bridge.
	nodes := idNodes("a", "b", "c", "d", "e", "f")
	edges := []graph.Edge{
		{From: "a", To: "b", Type: "related", Strength: 1.0},
		{From: "b", To: "c", Type: "related", Strength: 1.0},
		{From: "a", To: "c", Type: "related", Strength: 1.0},
		{From: "d", To: "e", Type: "related", Strength: 1.0},
		{From: "e", To: "f", Type: "related", Strength: 1.0},
		{From: "d", To: "f", Type: "related", Strength: 1.0},
		{From: "c", To: "d", Type: "related", Strength: 0.1},
	}
	g := buildGraph(t, nodes, edges)

	communities := Communities(g)
	if communities["a"] != communities["b"] || communities["b"] != communities["c"] {
		t.Errorf("first clique split: %v", communities)
	}
	if communities["d"] != communities["e"] || communities["e"] != communities["f"] {
		t.Errorf("second clique split: %v", communities)
	}
	if communities["a"] == communities["d"] {
		t.Errorf("cliques merged into one community: %v", communities)
	}
}

func TestCommunitiesFallbackOnZeroWeights(t *testing.T) {
	nodes := idNodes("a", "b")
	edges := []graph.Edge{{From: "a", To: "b", Type: "related", Strength: 0}}
	g := buildGraph(t, nodes, edges)

	communities := Communities(g)
	if communities["a"] != 0 || communities["b"] != 0 {
		t.Errorf("expected single community 0, got %v", communities)
	}

	result := Build(g, Options{Rand: seededRand(5)})
	if !result.Stats.SingleCommunityFallback {
		t.Error("expected single-community fallback to be reported")
	}
}

func TestResolveOverlapsSeparatesCoincidentNodes(t *testing.T) {
	positions := []point{{0, 0}, {0, 0}}
	sizes := []float64{30, 30}

	resolveOverlaps(positions, sizes, 50)

	dx := math.Abs(positions[0].x - positions[1].x)
	dy := math.Abs(positions[0].y - positions[1].y)
	minGap := 30 + overlapPadding
	if dx < minGap && dy < minGap {
		t.Errorf("nodes still overlap: dx=%f dy=%f", dx, dy)
	}
}

func TestNormalizeAxis(t *testing.T) {
	tests := []struct {
		name             string
		v, min, max, out float64
	}{
		{"minimum maps to left edge", 0, 0, 10, -2000},
		{"maximum maps to right edge", 10, 0, 10, 2000},
		{"middle maps to center", 5, 0, 10, 0},
		{"degenerate range maps to midpoint", 7, 7, 7, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeAxis(tt.v, tt.min, tt.max, 2000); got != tt.out {
				t.Errorf("normalizeAxis(%f, %f, %f) = %f, want %f", tt.v, tt.min, tt.max, got, tt.out)
			}
		})
	}
}

func TestCommunityColorWraps(t *testing.T) {
	if CommunityColor(0) != CommunityColor(9) {
		t.Error("expected color to wrap at palette size")
	}
	if CommunityColor(0) == CommunityColor(1) {
		t.Error("adjacent communities share a color")
	}
	if CommunityColor(-3) == "" {
		t.Error("negative community produced empty color")
	}
}

func TestScaledIterations(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{10, 150},
		{500, 150},
		{501, 100},
		{1501, 50},
	}
	for _, tt := range tests {
		if got := scaledIterations(150, tt.n); got != tt.want {
			t.Errorf("scaledIterations(150, %d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestRefinementPreservesCentroid(t *testing.T) {
	const count = 120
	positions := make([]point, count)
	sizes := make([]float64, count)
	communities := make([]int, count)
	for i := range positions {
		positions[i] = point{float64(i % 12), float64(i / 12)}
		sizes[i] = 30
	}

	var before point
	for _, p := range positions {
		before.x += p.x
		before.y += p.y
	}
	before.x /= count
	before.y /= count

	var stats Stats
	refineDenseCommunities(positions, sizes, nil, communities, Options{}.withDefaults(), &stats)

	if stats.RefinedCommunities != 1 {
		t.Fatalf("RefinedCommunities = %d, want 1", stats.RefinedCommunities)
	}

	var after point
	for _, p := range positions {
		after.x += p.x
		after.y += p.y
	}
	after.x /= count
	after.y /= count

	if math.Abs(after.x-before.x) > 1e-6 || math.Abs(after.y-before.y) > 1e-6 {
		t.Errorf("centroid moved from (%f,%f) to (%f,%f)", before.x, before.y, after.x, after.y)
	}
}
