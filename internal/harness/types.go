package harness

import (
	"github.com/roach88/nestedset/internal/ir"
	"github.com/roach88/nestedset/internal/structure"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Step     int          `json:"step"`
	Verb     string       `json:"verb"`
	Element  int64        `json:"element"`
	Target   int64        `json:"target,omitempty"`
	Mode     string       `json:"mode"`
	Outcome  string       `json:"outcome"`
	Position *ir.Position `json:"position,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds the setup and flow steps in execution order.
	Trace []TraceEvent `json:"trace"`

	// Events holds the after-move events delivered during the run.
	Events []structure.MoveEvent `json:"events"`

	// Tree is the structure's final node list ordered by (root, lft).
	Tree []ir.Node `json:"tree"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an executed step.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
