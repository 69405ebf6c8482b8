package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/nestedset/internal/engine"
	"github.com/roach88/nestedset/internal/ir"
	"github.com/roach88/nestedset/internal/store"
	"github.com/roach88/nestedset/internal/structure"
)

// Harness executes scenario steps against one structure.
type Harness struct {
	service     *structure.Service
	structureID int64
	maxLevels   int
	logger      *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database and structure
// 2. Register the veto handler and the event recorder
// 3. Execute setup steps, failing on the first error
// 4. Execute flow steps, checking expect clauses
// 5. Evaluate assertions against the final tree
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with a caller-supplied logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	svc := structure.New(st.WithLogger(logger),
		structure.WithLogger(logger),
		structure.WithClock(engine.NewClock()),
	)

	ctx := context.Background()
	result := NewResult()

	s := &ir.Structure{MaxLevels: scenario.MaxLevels}
	if err := svc.SaveStructure(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create structure: %w", err)
	}

	if len(scenario.Veto) > 0 {
		vetoed := slices.Clone(scenario.Veto)
		svc.OnBeforeMove(func(_ context.Context, ev structure.MoveEvent) bool {
			return !slices.Contains(vetoed, ev.ElementID)
		})
	}
	svc.OnAfterMove(func(_ context.Context, ev structure.MoveEvent) {
		result.Events = append(result.Events, ev)
	})

	h := &Harness{
		service:     svc,
		structureID: s.ID,
		maxLevels:   scenario.MaxLevels,
		logger:      logger,
	}

	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	result.Tree, err = svc.Tree(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read final tree: %w", err)
	}

	actx := &AssertionContext{
		Service:     svc,
		StructureID: s.ID,
		Ctx:         ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}
	return result, nil
}

// executeSetup runs all setup steps. Any failure aborts the scenario.
func (h *Harness) executeSetup(ctx context.Context, setup []Step, result *Result) error {
	for i, step := range setup {
		ev, err := h.execute(ctx, len(result.Trace), step)
		result.AddTrace(ev)
		if err != nil {
			return fmt.Errorf("setup step %d (%s %d): %w", i, step.Verb, step.Element, err)
		}
		h.logger.Debug("setup step completed", "step", i, "verb", step.Verb, "element", step.Element)
	}
	return nil
}

// executeFlow runs all flow steps and checks their expect clauses.
// Expected failures are recorded on the result, never returned.
func (h *Harness) executeFlow(ctx context.Context, flow []Step, result *Result) error {
	for i, step := range flow {
		ev, err := h.execute(ctx, len(result.Trace), step)
		result.AddTrace(ev)
		if err != nil && ev.Outcome == OutcomeError {
			return fmt.Errorf("flow step %d (%s %d): %w", i, step.Verb, step.Element, err)
		}

		want := OutcomeOK
		if step.Expect != nil && step.Expect.Outcome != "" {
			want = step.Expect.Outcome
		}
		if ev.Outcome != want {
			result.AddError(fmt.Sprintf("flow[%d] %s %d: expected outcome %s, got %s (%v)",
				i, step.Verb, step.Element, want, ev.Outcome, err))
			continue
		}
		if step.Expect != nil && len(step.Expect.Position) > 0 {
			if ev.Position == nil {
				result.AddError(fmt.Sprintf("flow[%d] %s %d: expected a position, got none",
					i, step.Verb, step.Element))
			} else if diff := diffPosition(*ev.Position, step.Expect.Position); diff != "" {
				result.AddError(fmt.Sprintf("flow[%d] %s %d: position %s", i, step.Verb, step.Element, diff))
			}
		}

		h.logger.Debug("flow step completed",
			"step", i, "verb", step.Verb, "element", step.Element, "outcome", ev.Outcome)
	}
	return nil
}

// execute runs one step. The returned error is the step's own error; the
// trace event carries its outcome name.
func (h *Harness) execute(ctx context.Context, index int, step Step) (TraceEvent, error) {
	mode, err := ir.ParseMode(step.Mode)
	if err != nil {
		return TraceEvent{}, err
	}

	ev := TraceEvent{
		Step:    index,
		Verb:    step.Verb,
		Element: step.Element,
		Mode:    mode.String(),
	}
	if step.Verb != VerbRemove && !structure.IsRootVerb(step.Verb) {
		ev.Target = step.Target
	}

	if step.Verb == VerbRemove {
		_, err = h.service.RemoveElement(ctx, h.structureID, step.Element)
		ev.Outcome = Outcome(err)
		return ev, err
	}

	if step.CheckDepth {
		if err := h.checkDepth(ctx, step); err != nil {
			ev.Outcome = Outcome(err)
			return ev, err
		}
	}

	el := &ir.Element{ID: step.Element}
	err = h.service.PlaceByVerb(ctx, step.Verb, h.structureID, el, step.Target, mode)
	ev.Outcome = Outcome(err)
	if err == nil {
		ev.Position = &el.Position
	}
	return ev, err
}

func (h *Harness) checkDepth(ctx context.Context, step Step) error {
	p, _ := structure.PlacementOf(step.Verb)
	target := step.Target
	if structure.IsRootVerb(step.Verb) {
		target = ir.NoElement
	}
	return h.service.ValidateMove(ctx, h.structureID, step.Element, target, p)
}

// Outcome names err the way scenarios spell it: "ok", a lower-cased
// MoveError code, or "error".
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if code := engine.CodeOf(err); code != "" {
		return strings.ToLower(string(code))
	}
	return OutcomeError
}
