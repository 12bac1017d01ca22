// Package elements turns a processed graph plus its importance scores and
// layout into flat, render-ready element lists. Exporting never mutates the
// graph; the document is a standalone snapshot that serializes directly to
// JSON.
package elements

import (
	"fmt"
	"math"

	"github.com/knotmap/knotmap/pkg/graph"
	"github.com/knotmap/knotmap/pkg/layout"
	"github.com/knotmap/knotmap/pkg/metrics"
)

// NodeElement is one drawable node.
type NodeElement struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Level           int      `json:"level"`
	ParentID        string   `json:"parentId,omitempty"`
	X               float64  `json:"x"`
	Y               float64  `json:"y"`
	Size            float64  `json:"size"`
	Color           string   `json:"color"`
	Community       int      `json:"community"`
	Importance      float64  `json:"importance"`
	PageRank        float64  `json:"pageRank"`
	Betweenness     float64  `json:"betweenness"`
	DescendantCount int      `json:"descendantCount"`
	EntityCount     int      `json:"entityCount"`
	Keywords        []string `json:"keywords,omitempty"`
}

// EdgeElement is one drawable edge.
type EdgeElement struct {
	ID         string  `json:"id"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Strength   float64 `json:"strength"`
}

// Bounds is the tight bounding box around every node's rendered extent
// (position plus half its size on each side).
type Bounds struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// Width and Height report the box extents.
func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Document is the complete export: element lists plus the bounding box,
// computed once at export time.
type Document struct {
	Nodes  []NodeElement `json:"nodes"`
	Edges  []EdgeElement `json:"edges"`
	Bounds Bounds        `json:"bounds"`
}

// Export flattens the graph into a Document. Nodes appear in ID order,
// edges in insertion order. Missing importance records or layout entries
// zero-fill rather than fail, so a partial pipeline still exports.
func Export(g *graph.Graph, imp *metrics.Result, lay layout.Result) Document {
	ids := g.NodeIDs()
	doc := Document{
		Nodes: make([]NodeElement, 0, len(ids)),
		Edges: make([]EdgeElement, 0, g.EdgeCount()),
	}

	for _, id := range ids {
		node, ok := g.Node(id)
		if !ok {
			continue
		}
		el := NodeElement{
			ID:       id,
			Name:     node.Name,
			Level:    node.Level,
			ParentID: node.ParentID,
			Keywords: node.Keywords,
		}
		if imp != nil {
			if rec, ok := imp.Records[id]; ok {
				el.Importance = rec.CompositeImportance
				el.PageRank = rec.PageRank
				el.Betweenness = rec.Betweenness
				el.DescendantCount = rec.DescendantCount
				el.EntityCount = rec.EntityCount
			}
		}
		if ln, ok := lay.Nodes[id]; ok {
			el.X = ln.X
			el.Y = ln.Y
			el.Size = ln.Size
			el.Color = ln.Color
			el.Community = ln.Community
		}
		doc.Nodes = append(doc.Nodes, el)
	}

	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, EdgeElement{
			ID:         fmt.Sprintf("%s--%s", e.From, e.To),
			From:       e.From,
			To:         e.To,
			Type:       e.Type,
			Confidence: e.Confidence,
			Strength:   e.Strength,
		})
	}

	doc.Bounds = computeBounds(doc.Nodes)
	return doc
}

// computeBounds walks the node list once. An empty list yields the zero
// box.
func computeBounds(nodes []NodeElement) Bounds {
	if len(nodes) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, n := range nodes {
		half := n.Size / 2
		b.MinX = math.Min(b.MinX, n.X-half)
		b.MaxX = math.Max(b.MaxX, n.X+half)
		b.MinY = math.Min(b.MinY, n.Y-half)
		b.MaxY = math.Max(b.MaxY, n.Y+half)
	}
	return b
}
