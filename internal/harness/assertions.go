package harness

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/nestedset/internal/ir"
	"github.com/roach88/nestedset/internal/structure"
)

// AssertionError is returned when an assertion fails.
// It includes the final tree to help debug the failure.
type AssertionError struct {
	Type     string    // Assertion type for categorization
	Expected string    // Human-readable expected outcome
	Actual   string    // Human-readable actual outcome
	Tree     []ir.Node // Final tree for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFinal tree:\n")
	for _, n := range e.Tree {
		fmt.Fprintf(&buf, "  %s%s\n", strings.Repeat("  ", max(n.Level-1, 0)), n.String())
	}
	return buf.String()
}

// AssertionContext provides service access for assertions that query the
// structure.
type AssertionContext struct {
	Service     *structure.Service
	StructureID int64
	Ctx         context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertNode:
			err = assertNode(result.Tree, assertion)
		case AssertAbsent:
			err = assertAbsent(result.Tree, assertion)
		case AssertNodeCount:
			err = assertNodeCount(result.Tree, assertion)
		case AssertEventCount:
			err = assertEventCount(result, assertion)
		case AssertInvariants, AssertLevelDelta, AssertChildren:
			if actx == nil || actx.Service == nil {
				err = fmt.Errorf("assertion[%d]: %s requires a service", i, assertion.Type)
				break
			}
			switch assertion.Type {
			case AssertInvariants:
				err = assertInvariants(actx, result.Tree)
			case AssertLevelDelta:
				err = assertLevelDelta(actx, result.Tree, assertion)
			case AssertChildren:
				err = assertChildren(actx, result.Tree, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func findElement(tree []ir.Node, elementID int64) (ir.Node, bool) {
	for _, n := range tree {
		if n.ElementID == elementID {
			return n, true
		}
	}
	return ir.Node{}, false
}

func assertNode(tree []ir.Node, assertion Assertion) error {
	n, ok := findElement(tree, assertion.Element)
	if !ok {
		return &AssertionError{
			Type:     AssertNode,
			Expected: fmt.Sprintf("element %d at %s", assertion.Element, formatPosition(assertion.Expect)),
			Actual:   "element has no node",
			Tree:     tree,
		}
	}
	if diff := diffPosition(n.Position, assertion.Expect); diff != "" {
		return &AssertionError{
			Type:     AssertNode,
			Expected: fmt.Sprintf("element %d at %s", assertion.Element, formatPosition(assertion.Expect)),
			Actual:   diff,
			Tree:     tree,
		}
	}
	return nil
}

func assertAbsent(tree []ir.Node, assertion Assertion) error {
	if n, ok := findElement(tree, assertion.Element); ok {
		return &AssertionError{
			Type:     AssertAbsent,
			Expected: fmt.Sprintf("element %d has no node", assertion.Element),
			Actual:   n.String(),
			Tree:     tree,
		}
	}
	return nil
}

func assertNodeCount(tree []ir.Node, assertion Assertion) error {
	if len(tree) != assertion.Count {
		return &AssertionError{
			Type:     AssertNodeCount,
			Expected: fmt.Sprintf("%d nodes", assertion.Count),
			Actual:   fmt.Sprintf("%d nodes", len(tree)),
			Tree:     tree,
		}
	}
	return nil
}

func assertEventCount(result *Result, assertion Assertion) error {
	if len(result.Events) != assertion.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d after-move events", assertion.Count),
			Actual:   fmt.Sprintf("%d after-move events", len(result.Events)),
			Tree:     result.Tree,
		}
	}
	return nil
}

func assertInvariants(actx *AssertionContext, tree []ir.Node) error {
	report, err := actx.Service.Verify(actx.Ctx, actx.StructureID)
	if err != nil {
		return fmt.Errorf("invariants: %w", err)
	}
	if report.OK() {
		return nil
	}
	violations := make([]string, len(report.Violations))
	for i, v := range report.Violations {
		violations[i] = v.String()
	}
	return &AssertionError{
		Type:     AssertInvariants,
		Expected: "no violations",
		Actual:   strings.Join(violations, "; "),
		Tree:     tree,
	}
}

func assertLevelDelta(actx *AssertionContext, tree []ir.Node, assertion Assertion) error {
	delta, err := actx.Service.GetElementLevelDelta(actx.Ctx, actx.StructureID, assertion.Element)
	if err != nil {
		return fmt.Errorf("level_delta: %w", err)
	}
	if delta != assertion.Delta {
		return &AssertionError{
			Type:     AssertLevelDelta,
			Expected: fmt.Sprintf("element %d delta %d", assertion.Element, assertion.Delta),
			Actual:   fmt.Sprintf("delta %d", delta),
			Tree:     tree,
		}
	}
	return nil
}

func assertChildren(actx *AssertionContext, tree []ir.Node, assertion Assertion) error {
	children, err := actx.Service.Children(actx.Ctx, actx.StructureID, assertion.Element)
	if err != nil {
		return fmt.Errorf("children: %w", err)
	}
	got := make([]int64, len(children))
	for i, c := range children {
		got[i] = c.ElementID
	}
	if !slices.Equal(got, assertion.Elements) {
		return &AssertionError{
			Type:     AssertChildren,
			Expected: fmt.Sprintf("element %d children %v", assertion.Element, assertion.Elements),
			Actual:   fmt.Sprintf("%v", got),
			Tree:     tree,
		}
	}
	return nil
}

// diffPosition compares the given fields of want against p and describes the
// first mismatches, or returns "" when all match.
func diffPosition(p ir.Position, want map[string]int64) string {
	actual := map[string]int64{
		"root":  p.Root,
		"lft":   p.Lft,
		"rgt":   p.Rgt,
		"level": int64(p.Level),
	}
	var diffs []string
	for _, k := range sortedKeys(want) {
		if actual[k] != want[k] {
			diffs = append(diffs, fmt.Sprintf("%s=%d (want %d)", k, actual[k], want[k]))
		}
	}
	return strings.Join(diffs, ", ")
}

// formatPosition creates a human-readable description of a position subset.
func formatPosition(fields map[string]int64) string {
	parts := make([]string, 0, len(fields))
	for _, k := range sortedKeys(fields) {
		parts = append(parts, fmt.Sprintf("%s=%d", k, fields[k]))
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
