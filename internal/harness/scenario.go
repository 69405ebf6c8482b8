package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/nestedset/internal/ir"
	"github.com/roach88/nestedset/internal/structure"
)

// VerbRemove removes an element's subtree instead of placing it.
const VerbRemove = "remove"

// Scenario defines a placement scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// MaxLevels configures the scenario's structure. 0 means unlimited.
	MaxLevels int `yaml:"max_levels,omitempty"`

	// Veto lists elements whose moves a before-move handler declines.
	Veto []int64 `yaml:"veto,omitempty"`

	// Setup steps build the starting tree and must all succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow steps are the steps under test.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final tree.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one verb applied to one element.
type Step struct {
	Verb    string `yaml:"verb"`
	Element int64  `yaml:"element"`

	// Target is the parent or sibling element. Root-level verbs and
	// remove ignore it.
	Target int64 `yaml:"target,omitempty"`

	// Mode is auto, insert or update. Empty means auto.
	Mode string `yaml:"mode,omitempty"`

	// CheckDepth runs ValidateMove against max_levels before placing.
	CheckDepth bool `yaml:"check_depth,omitempty"`

	// Expect is only honoured on flow steps.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected result of a flow step.
type ExpectClause struct {
	// Outcome is "ok" or a lower-cased MoveError code. Empty means "ok".
	Outcome string `yaml:"outcome,omitempty"`

	// Position is a subset match on root, lft, rgt and level.
	Position map[string]int64 `yaml:"position,omitempty"`
}

// Assertion validates the final tree.
type Assertion struct {
	Type string `yaml:"type"`

	// Element is the subject of node, absent, level_delta and children.
	Element int64 `yaml:"element,omitempty"`

	// Expect is the position subset for node.
	Expect map[string]int64 `yaml:"expect,omitempty"`

	// Delta is the expected level delta for level_delta.
	Delta int `yaml:"delta,omitempty"`

	// Elements is the expected child order for children.
	Elements []int64 `yaml:"elements,omitempty"`

	// Count is the expected total for node_count and event_count.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertNode       = "node"
	AssertAbsent     = "absent"
	AssertInvariants = "invariants"
	AssertLevelDelta = "level_delta"
	AssertChildren   = "children"
	AssertNodeCount  = "node_count"
	AssertEventCount = "event_count"
)

// Outcome names.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var positionFields = map[string]bool{"root": true, "lft": true, "rgt": true, "level": true}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields so typos like "assertion:" fail loudly.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.MaxLevels < 0 {
		return fmt.Errorf("max_levels must be non-negative")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is only allowed in flow", i)
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
		if step.Expect != nil {
			if err := validatePositionFields(step.Expect.Position); err != nil {
				return fmt.Errorf("flow[%d].expect: %w", i, err)
			}
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(step Step) error {
	if step.Element == ir.NoElement {
		return fmt.Errorf("element is required")
	}
	if _, err := ir.ParseMode(step.Mode); err != nil {
		return err
	}
	if step.Verb == VerbRemove {
		return nil
	}
	if _, ok := structure.PlacementOf(step.Verb); !ok {
		return fmt.Errorf("unknown verb %q", step.Verb)
	}
	if !structure.IsRootVerb(step.Verb) && step.Target == ir.NoElement {
		return fmt.Errorf("target is required for %s", step.Verb)
	}
	return nil
}

func validatePositionFields(fields map[string]int64) error {
	for k := range fields {
		if !positionFields[k] {
			return fmt.Errorf("unknown position field %q", k)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertNode:
		if a.Element == ir.NoElement {
			return fmt.Errorf("assertions[%d]: element is required for node", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for node", index)
		}
		if err := validatePositionFields(a.Expect); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertAbsent, AssertLevelDelta, AssertChildren:
		if a.Element == ir.NoElement {
			return fmt.Errorf("assertions[%d]: element is required for %s", index, a.Type)
		}
	case AssertNodeCount, AssertEventCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertInvariants:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
