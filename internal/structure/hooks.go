package structure

import (
	"context"
	"sync"

	"github.com/roach88/nestedset/internal/ir"
)

// MoveEvent describes one placement to hook handlers.
type MoveEvent struct {
	// Seq orders events from one Service.
	Seq int64

	Verb        string
	StructureID int64
	ElementID   int64

	// TargetNodeID is the node the element is placed relative to. For the
	// root-level verbs it is the structure's synthetic root.
	TargetNodeID int64
	Placement    ir.Placement

	// Position is the element's new position. It is zero in before-move
	// events.
	Position ir.Position
}

// BeforeMoveHandler is called inside the placement transaction before any
// shift. Returning false vetoes the move and rolls the transaction back.
//
// Handlers must not place elements of the same structure with ctx.
type BeforeMoveHandler func(ctx context.Context, ev MoveEvent) bool

// AfterMoveHandler is called once the placement has committed. ctx no
// longer carries the placement transaction.
type AfterMoveHandler func(ctx context.Context, ev MoveEvent)

// Hooks holds the registered move handlers.
type Hooks struct {
	mu     sync.RWMutex
	before []BeforeMoveHandler
	after  []AfterMoveHandler
}

// OnBeforeMove registers fn.
func (h *Hooks) OnBeforeMove(fn BeforeMoveHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.before = append(h.before, fn)
}

// OnAfterMove registers fn.
func (h *Hooks) OnAfterMove(fn AfterMoveHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.after = append(h.after, fn)
}

// allow runs the before handlers in registration order and stops at the
// first veto.
func (h *Hooks) allow(ctx context.Context, ev MoveEvent) bool {
	h.mu.RLock()
	handlers := h.before
	h.mu.RUnlock()

	for _, fn := range handlers {
		if !fn(ctx, ev) {
			return false
		}
	}
	return true
}

func (h *Hooks) notify(ctx context.Context, ev MoveEvent) {
	h.mu.RLock()
	handlers := h.after
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(ctx, ev)
	}
}
