package elements

import "math"

// Quality summarizes how readable an exported layout is. The numbers are
// heuristics for dashboards and regression checks, not hard guarantees.
type Quality struct {
	NodeCount             int     `json:"nodeCount"`
	EdgeCount             int     `json:"edgeCount"`
	AvgNearestNeighborGap float64 `json:"avgNearestNeighborGap"`
	OverlappingPairs      int     `json:"overlappingPairs"`
	ViewportOccupancy     float64 `json:"viewportOccupancy"`
}

// Measure computes quality metrics over a document. viewportSize is the
// half-extent the layout normalized into; zero disables the occupancy
// ratio.
func Measure(doc Document, viewportSize float64) Quality {
	q := Quality{
		NodeCount: len(doc.Nodes),
		EdgeCount: len(doc.Edges),
	}
	if len(doc.Nodes) < 2 {
		return q
	}

	var gapSum float64
	for i, a := range doc.Nodes {
		nearest := math.Inf(1)
		for j, b := range doc.Nodes {
			if i == j {
				continue
			}
			d := math.Hypot(a.X-b.X, a.Y-b.Y)
			if d < nearest {
				nearest = d
			}
			if j > i && overlaps(a, b) {
				q.OverlappingPairs++
			}
		}
		gapSum += nearest
	}
	q.AvgNearestNeighborGap = gapSum / float64(len(doc.Nodes))

	if viewportSize > 0 {
		area := doc.Bounds.Width() * doc.Bounds.Height()
		viewport := 2 * viewportSize * 2 * viewportSize
		q.ViewportOccupancy = area / viewport
	}
	return q
}

// overlaps tests the rendered bounding squares of two nodes.
func overlaps(a, b NodeElement) bool {
	gap := (a.Size + b.Size) / 2
	return math.Abs(a.X-b.X) < gap && math.Abs(a.Y-b.Y) < gap
}
