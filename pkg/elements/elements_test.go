package elements

import (
	"testing"

	"github.com/knotmap/knotmap/pkg/graph"
	"github.com/knotmap/knotmap/pkg/layout"
	"github.com/knotmap/knotmap/pkg/metrics"
)

func exportFixture(t *testing.T) (*graph.Graph, *metrics.Result, layout.Result) {
	t.Helper()
	g := graph.New()
	for _, n := range []graph.Node{
		{ID: "root", Name: "Root", Level: 0},
		{ID: "child", Name: "Child", Level: 1, ParentID: "root", Keywords: []string{"k1"}},
	} {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	if err := g.AddEdge(graph.Edge{From: "root", To: "child", Type: "parent", Confidence: 0.9, Strength: 0.9}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	imp := &metrics.Result{Records: map[string]metrics.Record{
		"root":  {NodeID: "root", CompositeImportance: 0.8, PageRank: 0.6, DescendantCount: 1},
		"child": {NodeID: "child", CompositeImportance: 0.3, PageRank: 0.4},
	}}

	lay := layout.Result{Nodes: map[string]layout.Node{
		"root":  {ID: "root", X: -100, Y: 0, Size: 60, Community: 0, Color: "#4E79A7"},
		"child": {ID: "child", X: 100, Y: 50, Size: 25, Community: 1, Color: "#F28E2B"},
	}}
	return g, imp, lay
}

func TestExportJoinsAllSources(t *testing.T) {
	g, imp, lay := exportFixture(t)
	doc := Export(g, imp, lay)

	if len(doc.Nodes) != 2 || len(doc.Edges) != 1 {
		t.Fatalf("got %d nodes, %d edges", len(doc.Nodes), len(doc.Edges))
	}

	// ID order: child before root.
	child := doc.Nodes[0]
	if child.ID != "child" {
		t.Fatalf("expected child first in ID order, got %s", child.ID)
	}
	if child.Importance != 0.3 || child.X != 100 || child.Size != 25 || child.Community != 1 {
		t.Errorf("child element misjoined: %+v", child)
	}
	if child.ParentID != "root" || len(child.Keywords) != 1 {
		t.Errorf("child metadata lost: %+v", child)
	}

	edge := doc.Edges[0]
	if edge.From != "root" || edge.To != "child" || edge.Type != "parent" {
		t.Errorf("edge misexported: %+v", edge)
	}
}

func TestExportBounds(t *testing.T) {
	g, imp, lay := exportFixture(t)
	doc := Export(g, imp, lay)

	// root at (-100, 0) size 60 -> minX = -130; child at (100, 50)
	// size 25 -> maxX = 112.5, maxY = 62.5.
	if doc.Bounds.MinX != -130 {
		t.Errorf("MinX = %f, want -130", doc.Bounds.MinX)
	}
	if doc.Bounds.MaxX != 112.5 {
		t.Errorf("MaxX = %f, want 112.5", doc.Bounds.MaxX)
	}
	if doc.Bounds.MaxY != 62.5 {
		t.Errorf("MaxY = %f, want 62.5", doc.Bounds.MaxY)
	}
}

func TestExportMissingLayoutZeroFills(t *testing.T) {
	g, imp, _ := exportFixture(t)
	doc := Export(g, imp, layout.Result{})

	for _, n := range doc.Nodes {
		if n.X != 0 || n.Y != 0 || n.Size != 0 {
			t.Errorf("node %s should zero-fill without layout: %+v", n.ID, n)
		}
	}
}

func TestExportNilImportance(t *testing.T) {
	g, _, lay := exportFixture(t)
	doc := Export(g, nil, lay)
	for _, n := range doc.Nodes {
		if n.Importance != 0 {
			t.Errorf("node %s has importance without records", n.ID)
		}
	}
}

func TestExportDoesNotMutateGraph(t *testing.T) {
	g, imp, lay := exportFixture(t)
	before := g.NodeCount()
	_ = Export(g, imp, lay)
	if g.NodeCount() != before {
		t.Error("export mutated the graph")
	}
}

func TestMeasure(t *testing.T) {
	doc := Document{
		Nodes: []NodeElement{
			{ID: "a", X: 0, Y: 0, Size: 30},
			{ID: "b", X: 100, Y: 0, Size: 30},
			{ID: "c", X: 105, Y: 0, Size: 30}, // overlaps b
		},
	}
	doc.Bounds = computeBounds(doc.Nodes)

	q := Measure(doc, 2000)
	if q.NodeCount != 3 {
		t.Fatalf("NodeCount = %d", q.NodeCount)
	}
	if q.OverlappingPairs != 1 {
		t.Errorf("OverlappingPairs = %d, want 1", q.OverlappingPairs)
	}
	// Nearest gaps: a->b 100, b->c 5, c->b 5.
	want := (100.0 + 5 + 5) / 3
	if q.AvgNearestNeighborGap != want {
		t.Errorf("AvgNearestNeighborGap = %f, want %f", q.AvgNearestNeighborGap, want)
	}
	if q.ViewportOccupancy <= 0 {
		t.Error("expected positive occupancy")
	}
}
