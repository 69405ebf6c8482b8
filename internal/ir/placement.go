package ir

import "fmt"

// Placement selects where a subtree lands relative to its target node.
type Placement int

const (
	// PrependTo makes the source the target's first child.
	PrependTo Placement = iota + 1
	// AppendTo makes the source the target's last child.
	AppendTo
	// InsertBefore makes the source the target's preceding sibling.
	InsertBefore
	// InsertAfter makes the source the target's following sibling.
	InsertAfter
)

var placementNames = map[Placement]string{
	PrependTo:    "prepend_to",
	AppendTo:     "append_to",
	InsertBefore: "insert_before",
	InsertAfter:  "insert_after",
}

func (p Placement) String() string {
	if name, ok := placementNames[p]; ok {
		return name
	}
	return fmt.Sprintf("placement(%d)", int(p))
}

// Valid reports whether p is a known placement.
func (p Placement) Valid() bool {
	_, ok := placementNames[p]
	return ok
}

// ChildPlacement reports whether the source becomes a child of the target.
func (p Placement) ChildPlacement() bool {
	return p == PrependTo || p == AppendTo
}

// Anchor returns the lft value at which the placed subtree lands, and the
// level it lands at, computed from the target's current coordinates.
func (p Placement) Anchor(target Node) (lft int64, level int) {
	switch p {
	case PrependTo:
		return target.Lft + 1, target.Level + 1
	case AppendTo:
		return target.Rgt, target.Level + 1
	case InsertBefore:
		return target.Lft, target.Level
	case InsertAfter:
		return target.Rgt + 1, target.Level
	}
	return 0, 0
}

// Mode tells the engine whether the element already has a node.
type Mode int

const (
	// ModeAuto probes the repository to decide.
	ModeAuto Mode = iota
	// ModeInsert forces creation of a new leaf node.
	ModeInsert
	// ModeUpdate forces relocation of an existing node.
	ModeUpdate
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeInsert:
		return "insert"
	case ModeUpdate:
		return "update"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode converts "auto", "insert" or "update" into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "auto":
		return ModeAuto, nil
	case "insert":
		return ModeInsert, nil
	case "update":
		return ModeUpdate, nil
	}
	return ModeAuto, fmt.Errorf("unknown mode %q: must be auto, insert or update", s)
}
