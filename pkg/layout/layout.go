package layout

import (
	"math"
	"math/rand/v2"

	"github.com/knotmap/knotmap/pkg/graph"
)

// === Defaults ===

const (
	// DefaultDenseClusterThreshold is the community size above which a
	// local refinement pass runs after the global layout.
	DefaultDenseClusterThreshold = 100

	// DefaultForceIterations is the base simulated-annealing budget for
	// the global force pass. Large graphs get a reduced share.
	DefaultForceIterations = 150

	// DefaultOverlapIterations bounds the overlap-resolution sweeps.
	DefaultOverlapIterations = 40

	// DefaultViewportSize is the half-extent of the output viewport: final
	// coordinates land in [-size, size] on both axes.
	DefaultViewportSize = 2000

	// MinNodeSize and MaxNodeSize bound the rendered node diameter. Sizes
	// interpolate across that range by normalized degree.
	MinNodeSize = 25
	MaxNodeSize = 60
)

// goldenAngle spreads jittered fallback placements evenly around a circle.
const goldenAngle = 2.399963229728653

// Node is one positioned, sized, colored node in the finished layout.
type Node struct {
	ID        string
	X, Y      float64
	Size      float64
	Community int
	Color     string
}

// Stats reports what the layout pass did and which fallbacks fired.
type Stats struct {
	Communities             int
	RefinedCommunities      int
	ForceIterations         int
	JitteredPositions       int
	FallbackPositions       int
	SingleCommunityFallback bool
}

// Result carries the finished layout.
type Result struct {
	Nodes map[string]Node
	Stats Stats
}

// Options configures a layout pass. The zero value is usable: every field
// falls back to its default, and a nil Rand gets an unseeded generator.
type Options struct {
	DenseClusterThreshold int
	ForceIterations       int
	OverlapIterations     int
	ViewportSize          float64
	Rand                  *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.DenseClusterThreshold <= 0 {
		o.DenseClusterThreshold = DefaultDenseClusterThreshold
	}
	if o.ForceIterations <= 0 {
		o.ForceIterations = DefaultForceIterations
	}
	if o.OverlapIterations <= 0 {
		o.OverlapIterations = DefaultOverlapIterations
	}
	if o.ViewportSize <= 0 {
		o.ViewportSize = DefaultViewportSize
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return o
}

// Build lays out the graph: circular initial placement, degree-based
// sizing, community detection, a global force-directed pass, overlap
// resolution, local refinement of oversized communities, and viewport
// normalization. Every returned coordinate is finite; nodes whose position
// degenerates at any stage land at the origin and are tallied in
// Stats.FallbackPositions.
func Build(g *graph.Graph, opts Options) Result {
	opts = opts.withDefaults()
	ids := g.NodeIDs()
	n := len(ids)

	result := Result{Nodes: make(map[string]Node, n)}
	if n == 0 {
		return result
	}

	index := make(map[string]int, n)
	for i, id := range ids {
		index[id] = i
	}

	positions := initialPositions(ids, opts.Rand, &result.Stats)
	sizes := nodeSizes(g, ids)

	communities, fallback := detectCommunities(g, ids)
	result.Stats.SingleCommunityFallback = fallback
	result.Stats.Communities = countCommunities(communities)

	edges := edgeTriples(g, index)

	iterations := scaledIterations(opts.ForceIterations, n)
	result.Stats.ForceIterations = iterations
	forceDirected(positions, edges, forceConfig{
		iterations: iterations,
		width:      workingWidth(n),
	})
	resolveOverlaps(positions, sizes, opts.OverlapIterations)

	refineDenseCommunities(positions, sizes, edges, communities, opts, &result.Stats)

	normalizeViewport(positions, opts.ViewportSize, &result.Stats)

	for i, id := range ids {
		result.Nodes[id] = Node{
			ID:        id,
			X:         positions[i].x,
			Y:         positions[i].y,
			Size:      sizes[i],
			Community: communities[i],
			Color:     CommunityColor(communities[i]),
		}
	}
	return result
}

// initialPositions places nodes on a circle whose radius grows with node
// count. Any non-finite placement falls back to a jittered spiral position
// so the simulation never starts from NaN.
func initialPositions(ids []string, rng *rand.Rand, stats *Stats) []point {
	n := len(ids)
	positions := make([]point, n)
	radius := 100 * math.Sqrt(float64(n))

	for i := range ids {
		angle := 2 * math.Pi * float64(i) / float64(n)
		x := radius * math.Cos(angle)
		y := radius * math.Sin(angle)
		if !finite(x) || !finite(y) {
			jitter := radius * (0.5 + 0.5*rng.Float64())
			angle = goldenAngle * float64(i)
			x = jitter * math.Cos(angle)
			y = jitter * math.Sin(angle)
			stats.JitteredPositions++
		}
		positions[i] = point{x, y}
	}
	return positions
}

// nodeSizes interpolates diameters between MinNodeSize and MaxNodeSize by
// min-max normalized degree. When every node has the same degree the
// midpoint is used for all.
func nodeSizes(g *graph.Graph, ids []string) []float64 {
	sizes := make([]float64, len(ids))
	minDeg, maxDeg := math.MaxInt, 0
	for _, id := range ids {
		d := g.Degree(id)
		if d < minDeg {
			minDeg = d
		}
		if d > maxDeg {
			maxDeg = d
		}
	}

	span := float64(MaxNodeSize - MinNodeSize)
	if maxDeg == minDeg {
		mid := MinNodeSize + span/2
		for i := range sizes {
			sizes[i] = mid
		}
		return sizes
	}

	for i, id := range ids {
		norm := float64(g.Degree(id)-minDeg) / float64(maxDeg-minDeg)
		sizes[i] = MinNodeSize + span*norm
	}
	return sizes
}

// detectCommunities runs Louvain and reports whether the single-community
// fallback fired. Labels are compacted to 0..k-1 deterministically.
func detectCommunities(g *graph.Graph, ids []string) ([]int, bool) {
	assignment, err := louvain(g, ids)
	if err != nil || assignment == nil {
		return make([]int, len(ids)), err != nil
	}

	relabel := compactLabels(assignment)
	out := make([]int, len(ids))
	for i, c := range assignment {
		out[i] = relabel[c]
	}
	return out, false
}

func countCommunities(communities []int) int {
	seen := make(map[int]bool)
	for _, c := range communities {
		seen[c] = true
	}
	return len(seen)
}

// edgeTriples flattens the graph's edges into (from, to, weight) index
// triples for the simulation.
func edgeTriples(g *graph.Graph, index map[string]int) [][3]float64 {
	edges := g.Edges()
	out := make([][3]float64, 0, len(edges))
	for _, e := range edges {
		w := e.Strength
		if !finite(w) || w <= 0 {
			w = graph.DefaultEdgeConfidence
		}
		out = append(out, [3]float64{float64(index[e.From]), float64(index[e.To]), w})
	}
	return out
}

// scaledIterations shrinks the iteration budget as the graph grows so
// layout time stays bounded.
func scaledIterations(base, n int) int {
	switch {
	case n > 1500:
		return base / 3
	case n > 500:
		return base * 2 / 3
	default:
		return base
	}
}

// workingWidth sizes the simulation area to the node count so density
// stays roughly constant.
func workingWidth(n int) float64 {
	return 200 * math.Sqrt(float64(n)+1)
}

// refineDenseCommunities reruns a short force pass inside each community
// larger than the threshold, then translates the members back so the
// community centroid is unchanged. Runs only after the global pass, so
// inter-community structure is already settled.
func refineDenseCommunities(positions []point, sizes []float64, edges [][3]float64, communities []int, opts Options, stats *Stats) {
	members := make(map[int][]int)
	for i, c := range communities {
		members[c] = append(members[c], i)
	}

	for _, nodes := range members {
		if len(nodes) <= opts.DenseClusterThreshold {
			continue
		}

		local := make(map[int]int, len(nodes))
		for li, gi := range nodes {
			local[gi] = li
		}

		localPositions := make([]point, len(nodes))
		localSizes := make([]float64, len(nodes))
		beforeX, beforeY := 0.0, 0.0
		for li, gi := range nodes {
			localPositions[li] = positions[gi]
			localSizes[li] = sizes[gi]
			beforeX += positions[gi].x
			beforeY += positions[gi].y
		}
		beforeX /= float64(len(nodes))
		beforeY /= float64(len(nodes))

		localEdges := make([][3]float64, 0)
		for _, e := range edges {
			u, v := int(e[0]), int(e[1])
			lu, okU := local[u]
			lv, okV := local[v]
			if okU && okV {
				localEdges = append(localEdges, [3]float64{float64(lu), float64(lv), e[2]})
			}
		}

		forceDirected(localPositions, localEdges, forceConfig{
			iterations: opts.ForceIterations / 3,
			width:      workingWidth(len(nodes)),
		})
		resolveOverlaps(localPositions, localSizes, opts.OverlapIterations)

		afterX, afterY := 0.0, 0.0
		for _, p := range localPositions {
			afterX += p.x
			afterY += p.y
		}
		afterX /= float64(len(nodes))
		afterY /= float64(len(nodes))

		shiftX, shiftY := beforeX-afterX, beforeY-afterY
		for li, gi := range nodes {
			positions[gi].x = localPositions[li].x + shiftX
			positions[gi].y = localPositions[li].y + shiftY
		}
		stats.RefinedCommunities++
	}
}

// normalizeViewport rescales positions into [-size, size] on each axis
// independently. A degenerate axis (zero range) maps every node to the
// axis midpoint. Any coordinate that is still non-finite afterwards snaps
// to the origin and is tallied.
func normalizeViewport(positions []point, size float64, stats *Stats) {
	if len(positions) == 0 {
		return
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range positions {
		if finite(p.x) {
			minX = math.Min(minX, p.x)
			maxX = math.Max(maxX, p.x)
		}
		if finite(p.y) {
			minY = math.Min(minY, p.y)
			maxY = math.Max(maxY, p.y)
		}
	}

	for i := range positions {
		positions[i].x = normalizeAxis(positions[i].x, minX, maxX, size)
		positions[i].y = normalizeAxis(positions[i].y, minY, maxY, size)
		if !finite(positions[i].x) || !finite(positions[i].y) {
			positions[i] = point{}
			stats.FallbackPositions++
		}
	}
}

// normalizeAxis maps v from [min, max] onto [-size, size]. A zero-width
// input range maps to the midpoint 0.
func normalizeAxis(v, min, max, size float64) float64 {
	if !finite(v) {
		return math.NaN()
	}
	span := max - min
	if span <= 0 || !finite(span) {
		return 0
	}
	return -size + (v-min)/span*2*size
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
