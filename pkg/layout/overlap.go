package layout

import (
	"math"
	"sort"
)

// overlapPadding is the minimum clearance kept between node bounding boxes.
const overlapPadding = 4.0

// resolveOverlaps pushes overlapping nodes apart until no two bounding
// boxes intersect or the iteration budget runs out. Boxes are squares
// centered on each position with edge length equal to the node's size plus
// padding. A sweep over x-sorted nodes limits pair checks to boxes whose x
// ranges intersect.
//
// Positions are adjusted in place; sizes are read-only.
func resolveOverlaps(positions []point, sizes []float64, iterations int) {
	n := len(positions)
	if n < 2 || iterations <= 0 {
		return
	}

	order := make([]int, n)
	maxHalf := 0.0
	for i := range order {
		order[i] = i
		if h := sizes[i]/2 + overlapPadding/2; h > maxHalf {
			maxHalf = h
		}
	}

	for iter := 0; iter < iterations; iter++ {
		sort.Slice(order, func(a, b int) bool {
			return positions[order[a]].x < positions[order[b]].x
		})

		moved := false
		for a := 0; a < n; a++ {
			i := order[a]
			ri := sizes[i]/2 + overlapPadding/2
			for b := a + 1; b < n; b++ {
				j := order[b]
				rj := sizes[j]/2 + overlapPadding/2
				if positions[j].x-positions[i].x > ri+maxHalf {
					break // sorted by x; nothing further right can overlap
				}
				if separate(positions, i, j, ri+rj) {
					moved = true
				}
			}
		}
		if !moved {
			return
		}
	}
}

// separate pushes nodes i and j apart if their boxes overlap, splitting the
// displacement evenly. Returns true when a move happened.
func separate(positions []point, i, j int, minGap float64) bool {
	dx := positions[j].x - positions[i].x
	dy := positions[j].y - positions[i].y
	if math.Abs(dx) >= minGap || math.Abs(dy) >= minGap {
		return false
	}

	dist := math.Hypot(dx, dy)
	if dist < 1e-9 {
		// Coincident centers: deterministically separate along x.
		dx, dy, dist = 1, 0, 1
	}
	push := (minGap - dist) / 2
	if push <= 0 {
		return false
	}

	ux, uy := dx/dist, dy/dist
	positions[i].x -= ux * push
	positions[i].y -= uy * push
	positions[j].x += ux * push
	positions[j].y += uy * push
	return true
}
