package engine

import (
	"fmt"
	"sort"

	"github.com/roach88/nestedset/internal/ir"
)

// Violation describes one broken nested-set invariant.
type Violation struct {
	NodeID int64  `json:"node_id"`
	Root   int64  `json:"root"`
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("node %d (root %d): %s: %s", v.NodeID, v.Root, v.Rule, v.Detail)
}

// Invariant rule names reported in Violation.Rule.
const (
	RuleOrder      = "lft_lt_rgt"
	RuleWidth      = "odd_width"
	RuleNesting    = "proper_nesting"
	RuleLevel      = "child_level"
	RuleSingleRoot = "single_root"
	RuleContiguous = "contiguous"
	RuleElement    = "unique_element"
)

// CheckInvariants verifies every nested-set invariant over the nodes of one
// structure. It returns all violations found, or nil when the forest is valid.
func CheckInvariants(nodes []ir.Node) []Violation {
	var violations []Violation

	seenElements := make(map[int64]int64)
	groups := make(map[int64][]ir.Node)
	for _, n := range nodes {
		if n.Lft >= n.Rgt {
			violations = append(violations, Violation{n.ID, n.Root, RuleOrder,
				fmt.Sprintf("lft=%d rgt=%d", n.Lft, n.Rgt)})
		} else if (n.Rgt-n.Lft)%2 != 1 {
			violations = append(violations, Violation{n.ID, n.Root, RuleWidth,
				fmt.Sprintf("rgt-lft=%d", n.Rgt-n.Lft)})
		}
		if n.HasElement() {
			if other, dup := seenElements[n.ElementID]; dup {
				violations = append(violations, Violation{n.ID, n.Root, RuleElement,
					fmt.Sprintf("element %d also at node %d", n.ElementID, other)})
			}
			seenElements[n.ElementID] = n.ID
		}
		groups[n.Root] = append(groups[n.Root], n)
	}

	roots := make([]int64, 0, len(groups))
	for root := range groups {
		roots = append(roots, root)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	for _, root := range roots {
		violations = append(violations, checkGroup(groups[root])...)
	}
	return violations
}

// checkGroup verifies nesting, levels and gap-free numbering within one root group.
func checkGroup(group []ir.Node) []Violation {
	var violations []Violation
	sort.Slice(group, func(i, j int) bool { return group[i].Lft < group[j].Lft })

	var stack []ir.Node
	tops := 0
	for _, n := range group {
		for len(stack) > 0 && stack[len(stack)-1].Rgt < n.Lft {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			tops++
			if tops > 1 {
				violations = append(violations, Violation{n.ID, n.Root, RuleSingleRoot,
					"second top-level node in root group"})
			}
			if n.Level != 1 {
				violations = append(violations, Violation{n.ID, n.Root, RuleLevel,
					fmt.Sprintf("top-level node has level %d", n.Level)})
			}
		} else {
			parent := stack[len(stack)-1]
			if n.Rgt >= parent.Rgt {
				violations = append(violations, Violation{n.ID, n.Root, RuleNesting,
					fmt.Sprintf("[%d,%d] partially overlaps node %d [%d,%d]",
						n.Lft, n.Rgt, parent.ID, parent.Lft, parent.Rgt)})
			}
			if n.Level != parent.Level+1 {
				violations = append(violations, Violation{n.ID, n.Root, RuleLevel,
					fmt.Sprintf("level %d under parent level %d", n.Level, parent.Level)})
			}
		}
		stack = append(stack, n)
	}

	// Gap-free numbering 1..2N is what makes rgt-lft+1 equal twice the
	// subtree size.
	values := make([]int64, 0, 2*len(group))
	for _, n := range group {
		values = append(values, n.Lft, n.Rgt)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	for i, v := range values {
		if v != int64(i+1) {
			first := group[0]
			violations = append(violations, Violation{first.ID, first.Root, RuleContiguous,
				fmt.Sprintf("expected value %d, found %d", i+1, v)})
			break
		}
	}
	return violations
}
