package ir

import "fmt"

// NoElement marks a node that has no associated element.
// Synthetic root nodes carry it.
const NoElement int64 = 0

// Structure is a named hierarchy definition.
type Structure struct {
	ID        int64  `json:"id"`
	UID       string `json:"uid"`
	MaxLevels int    `json:"max_levels" validate:"gte=0"` // 0 means unlimited
}

// Unlimited reports whether the structure has no depth limit.
func (s Structure) Unlimited() bool {
	return s.MaxLevels == 0
}

// Position is the nested-set location of a node.
type Position struct {
	Root  int64 `json:"root"`
	Lft   int64 `json:"lft"`
	Rgt   int64 `json:"rgt"`
	Level int   `json:"level"`
}

// Node is one nested-set entry of a structure.
type Node struct {
	ID          int64 `json:"id"`
	StructureID int64 `json:"structure_id"`
	ElementID   int64 `json:"element_id"`
	Position
}

// HasElement reports whether the node is attached to an element.
func (n Node) HasElement() bool {
	return n.ElementID != NoElement
}

// IsRoot reports whether the node is the top node of its root group.
func (n Node) IsRoot() bool {
	return n.Level == 1
}

// IsLeaf reports whether the node has no descendants.
func (n Node) IsLeaf() bool {
	return n.Rgt == n.Lft+1
}

// Width returns rgt - lft + 1, the span the subtree occupies.
func (n Node) Width() int64 {
	return n.Rgt - n.Lft + 1
}

// Size returns the number of nodes in the subtree, the node included.
func (n Node) Size() int64 {
	return n.Width() / 2
}

// Contains reports whether other lies inside n's range within the same root.
// A node contains itself.
func (n Node) Contains(other Node) bool {
	return n.StructureID == other.StructureID &&
		n.Root == other.Root &&
		n.Lft <= other.Lft &&
		other.Rgt <= n.Rgt
}

// IsAncestorOf reports whether n strictly contains other.
func (n Node) IsAncestorOf(other Node) bool {
	return n.Contains(other) && n.ID != other.ID && n.Lft < other.Lft
}

func (n Node) String() string {
	return fmt.Sprintf("node(%d el=%d root=%d [%d,%d] L%d)",
		n.ID, n.ElementID, n.Root, n.Lft, n.Rgt, n.Level)
}

// Element is the caller's in-memory view of something positioned in a
// structure. Placement verbs copy the resulting position onto it.
type Element struct {
	ID int64 `json:"id"`
	Position
}
