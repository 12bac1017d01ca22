package graph

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists. Node IDs must be unique per graph instance.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrSelfLoop is returned by [Graph.AddEdge] when both endpoints are the
	// same node.
	ErrSelfLoop = errors.New("edge endpoints must differ")

	// ErrUnknownEndpoint is returned by [Graph.AddEdge] when either endpoint
	// does not exist in the node set.
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")

	// ErrDuplicateEdge is returned by [Graph.AddEdge] when the unordered
	// endpoint pair was already added, regardless of direction.
	ErrDuplicateEdge = errors.New("duplicate edge")
)

// Graph is an in-memory attributed graph with undirected adjacency, built
// once per pipeline run and exclusively owned by it. Attribute storage is an
// arena of nodes indexed by ID; edges are kept in insertion order with an
// unordered-pair index for O(1) dedup.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// use without external synchronization, but pipeline runs never share one.
type Graph struct {
	nodes    map[string]*Node
	edges    []Edge
	edgeKeys map[string]int      // PairKey -> index into edges
	adjacent map[string][]string // nodeID -> neighbor IDs (undirected)
	children map[string][]string // parentID -> child node IDs (from ParentID)
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		edgeKeys: make(map[string]int),
		adjacent: make(map[string][]string),
		children: make(map[string][]string),
	}
}

// AddNode adds a node to the graph. Returns ErrInvalidNodeID if the ID is
// empty or ErrDuplicateNodeID if the ID is already in use. The hierarchy
// index (Children) is updated from the node's ParentID.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := n.clone()
	g.nodes[n.ID] = &node
	if n.ParentID != "" {
		g.children[n.ParentID] = append(g.children[n.ParentID], n.ID)
	}
	return nil
}

// AddEdge adds an undirected relationship between two existing nodes.
// Returns ErrSelfLoop, ErrUnknownEndpoint, or ErrDuplicateEdge when the edge
// violates the corresponding invariant. Direction of (From, To) is preserved
// for serialization but ignored everywhere else.
func (g *Graph) AddEdge(e Edge) error {
	if e.From == e.To {
		return ErrSelfLoop
	}
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownEndpoint
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownEndpoint
	}
	key := e.Key()
	if _, dup := g.edgeKeys[key]; dup {
		return ErrDuplicateEdge
	}
	g.edgeKeys[key] = len(g.edges)
	g.edges = append(g.edges, e)
	g.adjacent[e.From] = append(g.adjacent[e.From], e.To)
	g.adjacent[e.To] = append(g.adjacent[e.To], e.From)
	return nil
}

// RemoveNode deletes a node and every edge touching it. Removing an unknown
// ID is a no-op. The hierarchy index keeps entries for remaining children.
func (g *Graph) RemoveNode(id string) {
	node, ok := g.nodes[id]
	if !ok {
		return
	}
	for _, neighbor := range g.adjacent[id] {
		delete(g.edgeKeys, PairKey(id, neighbor))
		g.adjacent[neighbor] = slices.DeleteFunc(g.adjacent[neighbor], func(s string) bool { return s == id })
	}
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.From == id || e.To == id })
	g.reindexEdges()
	delete(g.adjacent, id)
	delete(g.nodes, id)
	if node.ParentID != "" {
		g.children[node.ParentID] = slices.DeleteFunc(g.children[node.ParentID], func(s string) bool { return s == id })
	}
	delete(g.children, id)
}

// reindexEdges rebuilds the PairKey index after edges have been compacted.
func (g *Graph) reindexEdges() {
	g.edgeKeys = make(map[string]int, len(g.edges))
	for i, e := range g.edges {
		g.edgeKeys[e.Key()] = i
	}
}

// Node returns the node with the given ID and true, or the zero Node and
// false if not found. The returned value is a copy; mutate through graph
// methods only.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes sorted by ID for deterministic iteration.
func (g *Graph) Nodes() []Node {
	ids := slices.Sorted(maps.Keys(g.nodes))
	nodes := make([]Node, len(ids))
	for i, id := range ids {
		nodes[i] = g.nodes[id].clone()
	}
	return nodes
}

// NodeIDs returns all node IDs sorted ascending.
func (g *Graph) NodeIDs() []string {
	return slices.Sorted(maps.Keys(g.nodes))
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Edge returns the edge for the unordered pair (a, b) and true, or the zero
// Edge and false when no such edge exists.
func (g *Graph) Edge(a, b string) (Edge, bool) {
	i, ok := g.edgeKeys[PairKey(a, b)]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Degree returns the number of edges touching the node, or 0 for unknown IDs.
func (g *Graph) Degree(id string) int { return len(g.adjacent[id]) }

// Neighbors returns the IDs adjacent to the node. The returned slice should
// not be modified - use it as a read-only view.
func (g *Graph) Neighbors(id string) []string { return g.adjacent[id] }

// Children returns the IDs of retained nodes whose ParentID is id, in
// insertion order. This is the hierarchy adjacency, distinct from edge
// adjacency.
func (g *Graph) Children(id string) []string { return g.children[id] }

// Roots returns all level-0 nodes sorted by ID.
func (g *Graph) Roots() []Node {
	var roots []Node
	for _, n := range g.Nodes() {
		if n.IsRoot() {
			roots = append(roots, n)
		}
	}
	return roots
}

// SetChildCount overwrites the derived ChildCount of a node. Unknown IDs are
// ignored.
func (g *Graph) SetChildCount(id string, count int) {
	if n, ok := g.nodes[id]; ok {
		n.ChildCount = count
	}
}

// Clone returns a deep copy sharing no state with the receiver.
func (g *Graph) Clone() *Graph {
	out := New()
	for _, n := range g.nodes {
		node := n.clone()
		out.nodes[node.ID] = &node
		if node.ParentID != "" {
			out.children[node.ParentID] = append(out.children[node.ParentID], node.ID)
		}
	}
	out.edges = slices.Clone(g.edges)
	out.edgeKeys = maps.Clone(g.edgeKeys)
	for id, adj := range g.adjacent {
		out.adjacent[id] = slices.Clone(adj)
	}
	return out
}

// Subgraph returns the induced subgraph over the given member set: the
// member nodes plus every edge whose both endpoints are members. ParentID
// links pointing outside the member set are preserved on the node but do not
// appear in the hierarchy index.
func (g *Graph) Subgraph(members map[string]bool) *Graph {
	out := New()
	for id, n := range g.nodes {
		if !members[id] {
			continue
		}
		node := n.clone()
		out.nodes[id] = &node
		if node.ParentID != "" && members[node.ParentID] {
			out.children[node.ParentID] = append(out.children[node.ParentID], id)
		}
	}
	for _, e := range g.edges {
		if members[e.From] && members[e.To] {
			out.edgeKeys[e.Key()] = len(out.edges)
			out.edges = append(out.edges, e)
			out.adjacent[e.From] = append(out.adjacent[e.From], e.To)
			out.adjacent[e.To] = append(out.adjacent[e.To], e.From)
		}
	}
	return out
}
