package graph

import "slices"

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Edge types recognized by the builder. Parent-family types are exempt from
// confidence filtering because they carry the hierarchy itself.
const (
	EdgeTypeParent      = "parent"
	EdgeTypeParentChild = "parent-child"
	EdgeTypeRelated     = "related"
	EdgeTypeRelatedTo   = "related-to"
	EdgeTypeDerivedFrom = "derived-from"
	EdgeTypeCoOccurs    = "co_occurs"
)

// IsParentEdgeType reports whether t belongs to the parent family of edge
// types. Parent edges survive confidence filtering regardless of threshold.
func IsParentEdgeType(t string) bool {
	return t == EdgeTypeParent || t == EdgeTypeParentChild
}

// DefaultEdgeConfidence is assumed when an input edge carries no
// confidence. Zero means absent throughout: an explicit "confidence": 0
// is indistinguishable from an omitted field after decoding and receives
// the same default (see the input contract in pkg/io).
const DefaultEdgeConfidence = 0.5

// =============================================================================
// Node
// =============================================================================

// Node is a topic or entity vertex in the graph. Topics and entities are
// structurally identical; Level and ParentID encode the hierarchy (level 0
// is a root).
type Node struct {
	ID               string   `json:"id"`
	Name             string   `json:"name,omitempty"`
	Level            int      `json:"level"`
	ParentID         string   `json:"parentId,omitempty"`
	Confidence       float64  `json:"confidence,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
	EntityReferences []string `json:"entityReferences,omitempty"`

	// ChildCount is derived by the builder: the number of retained nodes
	// whose ParentID equals this node's ID.
	ChildCount int `json:"childCount,omitempty"`
}

// IsRoot reports whether the node sits at the top of the hierarchy.
func (n Node) IsRoot() bool { return n.Level == 0 }

// DisplayName returns the name if set, otherwise the ID.
func (n Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// EntityCount returns the number of external entity references.
func (n Node) EntityCount() int { return len(n.EntityReferences) }

// clone returns a deep copy of the node.
func (n Node) clone() Node {
	n.Keywords = slices.Clone(n.Keywords)
	n.EntityReferences = slices.Clone(n.EntityReferences)
	return n
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a weighted relationship between two nodes. Edges are stored
// directed (From, To) but treated as unordered pairs for deduplication and
// for all metric and layout computations.
type Edge struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	Type       string  `json:"type,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Strength   float64 `json:"strength,omitempty"`
}

// Key returns the unordered endpoint key used for deduplication.
// Key("a","b") and Key("b","a") produce the same value.
func (e Edge) Key() string { return PairKey(e.From, e.To) }

// IsParent reports whether the edge belongs to the parent family.
func (e Edge) IsParent() bool { return IsParentEdgeType(e.Type) }

// Other returns the endpoint opposite to id, or "" if id is not an endpoint.
func (e Edge) Other(id string) string {
	switch id {
	case e.From:
		return e.To
	case e.To:
		return e.From
	}
	return ""
}

// PairKey builds the canonical unordered key for a node pair.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}
