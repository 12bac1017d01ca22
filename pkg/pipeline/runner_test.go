package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/knotmap/knotmap/pkg/cache"
	"github.com/knotmap/knotmap/pkg/graph"
	kio "github.com/knotmap/knotmap/pkg/io"
	"github.com/knotmap/knotmap/pkg/metrics"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func testInput() kio.Input {
	return kio.Input{
		Nodes: []graph.Node{
			{ID: "root", Name: "Root", Level: 0},
			{ID: "a", Name: "A", Level: 1, ParentID: "root"},
			{ID: "b", Name: "B", Level: 1, ParentID: "root"},
			{ID: "c", Name: "C", Level: 2, ParentID: "a"},
		},
		Edges: []graph.Edge{
			{From: "root", To: "a", Type: "parent", Confidence: 0.9, Strength: 0.9},
			{From: "root", To: "b", Type: "parent", Confidence: 0.9, Strength: 0.9},
			{From: "a", To: "c", Type: "parent", Confidence: 0.9, Strength: 0.9},
			{From: "a", To: "b", Type: "related", Confidence: 0.7, Strength: 0.6},
		},
	}
}

func TestExecuteFullPipeline(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())

	result, err := runner.Execute(context.Background(), testInput(), Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.RunID == "" {
		t.Error("missing run ID")
	}
	if result.GraphHash == "" {
		t.Error("missing graph hash")
	}
	if result.Graph.NodeCount() != 4 {
		t.Errorf("NodeCount = %d, want 4", result.Graph.NodeCount())
	}
	if result.Importance == nil || len(result.Importance.Records) != 4 {
		t.Fatalf("importance records missing: %+v", result.Importance)
	}
	if len(result.Document.Nodes) != 4 || len(result.Document.Edges) != 4 {
		t.Errorf("document has %d nodes, %d edges", len(result.Document.Nodes), len(result.Document.Edges))
	}
	if result.Stats.TotalTime <= 0 {
		t.Error("missing total time")
	}
	if result.CacheInfo.ElementsHit {
		t.Error("first run should not hit cache")
	}

	// Root should outrank its grandchild.
	if result.Importance.Records["root"].CompositeImportance <= result.Importance.Records["c"].CompositeImportance {
		t.Error("root should outrank leaf")
	}
}

func TestExecuteCachesDocument(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()

	first, err := runner.Execute(ctx, testInput(), Options{})
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.ElementsHit {
		t.Error("first run should miss")
	}

	second, err := runner.Execute(ctx, testInput(), Options{})
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.ElementsHit {
		t.Error("second run should hit cache")
	}
	if len(second.Document.Nodes) != len(first.Document.Nodes) {
		t.Error("cached document differs from computed one")
	}

	// Different options must not share cache entries.
	third, err := runner.Execute(ctx, testInput(), Options{Seed: 99})
	if err != nil {
		t.Fatalf("third Execute: %v", err)
	}
	if third.CacheInfo.ElementsHit {
		t.Error("different seed should not hit the same entry")
	}
}

func TestExecuteRefreshBypassesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()

	if _, err := runner.Execute(ctx, testInput(), Options{}); err != nil {
		t.Fatalf("warm-up Execute: %v", err)
	}

	result, err := runner.Execute(ctx, testInput(), Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if result.CacheInfo.ElementsHit {
		t.Error("refresh run should not hit cache")
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())

	tests := []struct {
		name string
		opts Options
	}{
		{"negative node limit", Options{NodeLimit: -1}},
		{"confidence above one", Options{MinEdgeConfidence: 1.5}},
		{"negative viewport", Options{ViewportSize: -10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runner.Execute(context.Background(), testInput(), tt.opts); err == nil {
				t.Error("expected options error")
			}
		})
	}
}

func TestExecuteDeterministicWithSeed(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	ctx := context.Background()

	first, err := runner.Execute(ctx, testInput(), Options{Seed: 7})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	second, err := runner.Execute(ctx, testInput(), Options{Seed: 7})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	for i, n := range first.Document.Nodes {
		m := second.Document.Nodes[i]
		if n.X != m.X || n.Y != m.Y {
			t.Errorf("node %s differs across runs: (%f,%f) vs (%f,%f)", n.ID, n.X, n.Y, m.X, m.Y)
		}
	}
}

// largeInput builds a graph above the sparsify triggers: one root, ten
// level-1 parents, 49 leaves, and enough weak leaf-to-leaf edges to cross
// the edge threshold. The leaves have low degree and no children, so
// sparsification removes them.
func largeInput() kio.Input {
	var in kio.Input
	in.Nodes = append(in.Nodes, graph.Node{ID: "r", Level: 0})
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("a%02d", i)
		in.Nodes = append(in.Nodes, graph.Node{ID: id, Level: 1, ParentID: "r"})
		in.Edges = append(in.Edges, graph.Edge{From: "r", To: id, Type: "parent", Confidence: 0.9, Strength: 0.9})
	}
	for i := 0; i < 49; i++ {
		id := fmt.Sprintf("b%02d", i)
		parent := fmt.Sprintf("a%02d", i%10)
		in.Nodes = append(in.Nodes, graph.Node{ID: id, Level: 2, ParentID: parent})
		in.Edges = append(in.Edges, graph.Edge{From: parent, To: id, Type: "parent", Confidence: 0.9, Strength: 0.9})
	}
	for i := 0; i < 48; i++ {
		in.Edges = append(in.Edges, graph.Edge{
			From: fmt.Sprintf("b%02d", i), To: fmt.Sprintf("b%02d", i+1),
			Type: "related", Confidence: 0.7, Strength: 0.3,
		})
	}
	return in
}

func TestExecuteScoresReducedGraph(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	opts := Options{Seed: 3}

	result, err := runner.Execute(context.Background(), largeInput(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !result.SparsifyStats.Applied {
		t.Fatal("sparsification should trigger above the size thresholds")
	}
	if result.Graph.NodeCount() >= result.SparsifyStats.NodesIn {
		t.Fatalf("sparsify kept every node: %d", result.Graph.NodeCount())
	}

	// Importance is computed after sparsification, so records exist for
	// exactly the retained nodes.
	if len(result.Importance.Records) != result.Graph.NodeCount() {
		t.Errorf("got %d importance records for %d retained nodes",
			len(result.Importance.Records), result.Graph.NodeCount())
	}
	if _, ok := result.Importance.Records["b01"]; ok {
		t.Error("removed leaf should not carry an importance record")
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	recomputed := metrics.Compute(result.Graph, opts.MetricsOptions())
	for id, rec := range result.Importance.Records {
		if recomputed.Records[id] != rec {
			t.Errorf("record %s does not match a fresh computation on the reduced graph", id)
		}
	}
}

// fakeFetcher returns a fixed delta for any node.
type fakeFetcher struct {
	delta kio.Input
	err   error
}

func (f *fakeFetcher) FetchNeighborhood(ctx context.Context, nodeID string) (kio.Input, error) {
	return f.delta, f.err
}

func TestExpand(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	fetcher := &fakeFetcher{delta: kio.Input{
		Nodes: []graph.Node{{ID: "d", Name: "D", Level: 2, ParentID: "b"}},
		Edges: []graph.Edge{{From: "b", To: "d", Type: "parent", Confidence: 0.9, Strength: 0.9}},
	}}

	result, err := runner.Expand(context.Background(), testInput(), "b", fetcher, Options{})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if result.Graph.NodeCount() != 5 {
		t.Errorf("NodeCount = %d, want 5 after expansion", result.Graph.NodeCount())
	}
	if !result.Graph.HasNode("d") {
		t.Error("expanded node missing")
	}
}

func TestExpandErrors(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	ctx := context.Background()

	if _, err := runner.Expand(ctx, testInput(), "b", nil, Options{}); err == nil {
		t.Error("nil fetcher should error")
	}
	if _, err := runner.Expand(ctx, testInput(), "", &fakeFetcher{}, Options{}); err == nil {
		t.Error("empty node id should error")
	}

	failing := &fakeFetcher{err: errors.New("store unavailable")}
	if _, err := runner.Expand(ctx, testInput(), "b", failing, Options{}); err == nil {
		t.Error("fetcher error should propagate")
	}
}

func TestMergeInputs(t *testing.T) {
	base := kio.Input{
		Nodes: []graph.Node{{ID: "a", Name: "Original"}},
		Edges: []graph.Edge{{From: "a", To: "b", Type: "related"}},
	}
	delta := kio.Input{
		Nodes: []graph.Node{
			{ID: "a", Name: "Replacement"}, // duplicate, ignored
			{ID: "b", Name: "New"},
			{ID: ""}, // empty id, ignored
		},
		Edges: []graph.Edge{
			{From: "b", To: "a", Type: "related"}, // same unordered pair, ignored
			{From: "b", To: "c", Type: "related"},
			{From: "c", To: "c", Type: "related"}, // self-loop, discarded
			{From: "", To: "c", Type: "related"},  // empty endpoint, discarded
		},
	}

	merged := MergeInputs(base, delta)
	if len(merged.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(merged.Nodes))
	}
	if merged.Nodes[0].Name != "Original" {
		t.Error("base node should win over delta")
	}
	if len(merged.Edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(merged.Edges))
	}
}
