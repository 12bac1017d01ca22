package layout

import (
	"math"
	"sort"
)

// point is a mutable position tracked during simulation.
type point struct {
	x, y float64
}

// forceConfig parameterizes one force-directed pass.
type forceConfig struct {
	iterations int
	width      float64 // working area edge length
}

// cell aggregates the nodes falling into one grid bucket so distant
// repulsion can be applied against the bucket's centroid instead of every
// member.
type cell struct {
	cx, cy float64
	count  int
	nodes  []int
}

// forceDirected runs a Fruchterman-Reingold style simulation over positions
// in place. Attraction acts along edges scaled by edge strength; repulsion
// acts between all node pairs, with pairs far apart approximated through a
// uniform grid: nodes in the same or adjacent grid cells repel exactly, and
// every non-adjacent cell repels as a single point mass at its centroid.
// The grid keeps large graphs near O(n) per iteration instead of O(n^2).
//
// edges is an index-pair list with weights; positions are updated in place.
func forceDirected(positions []point, edges [][3]float64, cfg forceConfig) {
	n := len(positions)
	if n < 2 || cfg.iterations <= 0 {
		return
	}

	area := cfg.width * cfg.width
	k := math.Sqrt(area / float64(n))
	temperature := cfg.width / 10
	cooling := temperature / float64(cfg.iterations+1)

	dispX := make([]float64, n)
	dispY := make([]float64, n)

	for iter := 0; iter < cfg.iterations; iter++ {
		for i := range dispX {
			dispX[i] = 0
			dispY[i] = 0
		}

		grid, keys, cellSize := buildGrid(positions, 2*k)

		// Repulsion: exact within the 3x3 cell neighborhood, centroid
		// approximation beyond it. Cells are visited in sorted key order
		// so float accumulation is reproducible run to run.
		for i := range positions {
			key := cellKey(positions[i], cellSize)
			for _, other := range neighborCells(grid, key) {
				for _, j := range other.nodes {
					if i == j {
						continue
					}
					dx := positions[i].x - positions[j].x
					dy := positions[i].y - positions[j].y
					dist := math.Hypot(dx, dy)
					if dist < 1e-9 {
						// Coincident nodes repel along a fixed axis so
						// they separate instead of dividing by zero.
						dx, dy, dist = 1e-6*float64(i-j+1), 1e-6, 1e-6
					}
					force := k * k / dist
					dispX[i] += dx / dist * force
					dispY[i] += dy / dist * force
				}
			}
			for _, otherKey := range keys {
				if cellsAdjacent(key, otherKey) {
					continue
				}
				other := grid[otherKey]
				dx := positions[i].x - other.cx
				dy := positions[i].y - other.cy
				dist := math.Hypot(dx, dy)
				if dist < cellSize {
					dist = cellSize
				}
				force := float64(other.count) * k * k / dist
				dispX[i] += dx / dist * force
				dispY[i] += dy / dist * force
			}
		}

		// Attraction along edges, scaled by weight.
		for _, e := range edges {
			u, v, w := int(e[0]), int(e[1]), e[2]
			dx := positions[u].x - positions[v].x
			dy := positions[u].y - positions[v].y
			dist := math.Hypot(dx, dy)
			if dist < 1e-9 {
				continue
			}
			force := dist * dist / k * w
			fx := dx / dist * force
			fy := dy / dist * force
			dispX[u] -= fx
			dispY[u] -= fy
			dispX[v] += fx
			dispY[v] += fy
		}

		// Apply displacement, capped by temperature.
		for i := range positions {
			disp := math.Hypot(dispX[i], dispY[i])
			if disp < 1e-9 {
				continue
			}
			limited := math.Min(disp, temperature)
			positions[i].x += dispX[i] / disp * limited
			positions[i].y += dispY[i] / disp * limited
		}

		temperature -= cooling
		if temperature < 0 {
			temperature = 0
		}
	}
}

// buildGrid buckets positions into square cells of the given size, keyed by
// cell coordinates, tracking each cell's centroid. Keys are returned sorted
// so callers can iterate cells deterministically.
func buildGrid(positions []point, size float64) (map[[2]int]*cell, [][2]int, float64) {
	if size <= 0 {
		size = 1
	}
	grid := make(map[[2]int]*cell)
	keys := make([][2]int, 0)
	for i, p := range positions {
		key := cellKey(p, size)
		c := grid[key]
		if c == nil {
			c = &cell{}
			grid[key] = c
			keys = append(keys, key)
		}
		c.nodes = append(c.nodes, i)
		c.cx += p.x
		c.cy += p.y
		c.count++
	}
	for _, c := range grid {
		c.cx /= float64(c.count)
		c.cy /= float64(c.count)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a][0] != keys[b][0] {
			return keys[a][0] < keys[b][0]
		}
		return keys[a][1] < keys[b][1]
	})
	return grid, keys, size
}

func cellKey(p point, size float64) [2]int {
	return [2]int{int(math.Floor(p.x / size)), int(math.Floor(p.y / size))}
}

// neighborCells returns the occupied cells in the 3x3 block around key,
// including the cell itself.
func neighborCells(grid map[[2]int]*cell, key [2]int) []*cell {
	out := make([]*cell, 0, 9)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if c, ok := grid[[2]int{key[0] + dx, key[1] + dy}]; ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// cellsAdjacent reports whether two cells are within the exact-repulsion
// neighborhood of each other.
func cellsAdjacent(a, b [2]int) bool {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}
