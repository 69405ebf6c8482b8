package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/nestedset/internal/ir"
)

// TreeSnapshot captures the trace and final tree of a scenario execution.
type TreeSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
	Tree         []ir.Node    `json:"tree"`
}

// toCanonicalMap converts a TreeSnapshot to a map[string]any for canonical
// JSON serialization. Node IDs are left out so snapshots do not depend on
// row allocation.
func (s *TreeSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"step":    event.Step,
			"verb":    event.Verb,
			"element": event.Element,
			"mode":    event.Mode,
			"outcome": event.Outcome,
		}
		if event.Target != ir.NoElement {
			eventMap["target"] = event.Target
		}
		if event.Position != nil {
			eventMap["position"] = positionMap(*event.Position)
		}
		traceList[i] = eventMap
	}

	treeList := make([]any, len(s.Tree))
	for i, n := range s.Tree {
		nodeMap := positionMap(n.Position)
		nodeMap["element"] = n.ElementID
		treeList[i] = nodeMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
		"tree":          treeList,
	}
}

func positionMap(p ir.Position) map[string]any {
	return map[string]any{
		"root":  p.Root,
		"lft":   p.Lft,
		"rgt":   p.Rgt,
		"level": p.Level,
	}
}

// Snapshot returns the canonical JSON of a result's trace and tree.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TreeSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		Tree:         result.Tree,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result, or an error if the scenario could not be executed.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
