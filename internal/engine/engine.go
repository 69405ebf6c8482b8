package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/nestedset/internal/ir"
	"github.com/roach88/nestedset/internal/store"
)

// NodeStore is the subset of the Node Repository the engine writes through.
// *store.Store implements it.
type NodeStore interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetNode(ctx context.Context, id int64) (ir.Node, bool, error)
	FindNode(ctx context.Context, structureID, elementID int64) (ir.Node, bool, error)
	InsertNode(ctx context.Context, n ir.Node) (ir.Node, error)
	ShiftRange(ctx context.Context, structureID, root, threshold, delta int64, edge store.Edge) error
	MoveSubtree(ctx context.Context, src ir.Node, toRoot, offset int64, levelDelta int) error
}

// Request describes one placement.
type Request struct {
	StructureID int64
	ElementID   int64
	Target      ir.Node
	Placement   ir.Placement
	Mode        ir.Mode
}

// Engine applies placements to a NodeStore.
type Engine struct {
	store  NodeStore
	logger *slog.Logger
}

// New creates an engine. A nil logger uses slog.Default().
func New(st NodeStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: st, logger: logger}
}

// Validate checks a placement against the current coordinates of source and
// target without touching storage. exists tells whether source is a real
// node (update) or the element has none yet (insert).
//
// It returns noOp=true when the source already sits at the requested
// position.
func Validate(structureID, elementID int64, source ir.Node, exists bool, target ir.Node, p ir.Placement) (noOp bool, err error) {
	if !p.Valid() {
		return false, NewInvalidTargetError(structureID, elementID, "unknown placement "+p.String())
	}
	if !p.ChildPlacement() && target.IsRoot() {
		return false, NewInvalidTargetError(structureID, elementID, "cannot place a sibling of a root node")
	}
	if !exists {
		return false, nil
	}
	if source.Contains(target) {
		return false, NewCyclicMoveError(structureID, elementID)
	}

	anchor, _ := p.Anchor(target)
	return source.Root == target.Root && (anchor == source.Lft || anchor == source.Rgt+1), nil
}

// Place moves or inserts req.ElementID relative to req.Target and returns
// the element's node at its new position.
//
// Target and source coordinates are re-read inside the transaction, so
// req.Target only needs a valid ID.
func (e *Engine) Place(ctx context.Context, req Request) (ir.Node, error) {
	var placed ir.Node
	err := e.store.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		placed, err = e.place(ctx, req)
		return err
	})
	if err != nil {
		return ir.Node{}, err
	}
	return placed, nil
}

func (e *Engine) place(ctx context.Context, req Request) (ir.Node, error) {
	target, ok, err := e.store.GetNode(ctx, req.Target.ID)
	if err != nil {
		return ir.Node{}, e.storageErr(req, err)
	}
	if !ok {
		return ir.Node{}, NewNotFoundError(req.StructureID, req.ElementID, "target node")
	}

	source, exists, err := e.resolveSource(ctx, req)
	if err != nil {
		return ir.Node{}, err
	}

	noOp, err := Validate(req.StructureID, req.ElementID, source, exists, target, req.Placement)
	if err != nil {
		return ir.Node{}, err
	}
	if noOp {
		e.logger.Debug("placement is a no-op",
			"structure_id", req.StructureID, "element_id", req.ElementID, "placement", req.Placement)
		return source, nil
	}

	if !exists {
		return e.insertLeaf(ctx, req, target)
	}
	return e.relocate(ctx, req, source, target)
}

// resolveSource looks up the element's node according to the request mode.
func (e *Engine) resolveSource(ctx context.Context, req Request) (ir.Node, bool, error) {
	if req.Mode == ir.ModeInsert {
		return ir.Node{}, false, nil
	}

	source, exists, err := e.store.FindNode(ctx, req.StructureID, req.ElementID)
	if err != nil {
		return ir.Node{}, false, e.storageErr(req, err)
	}
	if !exists && req.Mode == ir.ModeUpdate {
		return ir.Node{}, false, NewNotFoundError(req.StructureID, req.ElementID, "element node")
	}
	return source, exists, nil
}

// insertLeaf opens a gap of 2 at the anchor and writes a new leaf there.
func (e *Engine) insertLeaf(ctx context.Context, req Request, target ir.Node) (ir.Node, error) {
	anchor, level := req.Placement.Anchor(target)

	if err := e.shift(ctx, req.StructureID, target.Root, anchor, 2); err != nil {
		return ir.Node{}, e.storageErr(req, err)
	}

	node, err := e.store.InsertNode(ctx, ir.Node{
		StructureID: req.StructureID,
		ElementID:   req.ElementID,
		Position: ir.Position{
			Root:  target.Root,
			Lft:   anchor,
			Rgt:   anchor + 1,
			Level: level,
		},
	})
	if err != nil {
		return ir.Node{}, e.storageErr(req, err)
	}

	e.logger.Debug("inserted leaf", "node", node.String(), "placement", req.Placement)
	return node, nil
}

// relocate moves an existing subtree into a gap opened at the anchor and
// closes the range it vacated.
func (e *Engine) relocate(ctx context.Context, req Request, source, target ir.Node) (ir.Node, error) {
	anchor, level := req.Placement.Anchor(target)
	width := source.Width()
	levelDelta := level - source.Level

	if err := e.shift(ctx, req.StructureID, target.Root, anchor, width); err != nil {
		return ir.Node{}, e.storageErr(req, err)
	}

	// Opening the gap pushed the source along when it sat at or after the
	// anchor in the same root group.
	moving := source
	if source.Root == target.Root && source.Lft >= anchor {
		moving.Lft += width
		moving.Rgt += width
	}

	if err := e.store.MoveSubtree(ctx, moving, target.Root, anchor-moving.Lft, levelDelta); err != nil {
		return ir.Node{}, e.storageErr(req, err)
	}

	if err := e.shift(ctx, req.StructureID, moving.Root, moving.Rgt+1, -width); err != nil {
		return ir.Node{}, e.storageErr(req, err)
	}

	node, ok, err := e.store.GetNode(ctx, source.ID)
	if err != nil {
		return ir.Node{}, e.storageErr(req, err)
	}
	if !ok {
		return ir.Node{}, e.storageErr(req, errors.New("relocated node vanished"))
	}

	e.logger.Debug("relocated subtree",
		"from", source.String(), "to", node.String(), "width", width, "placement", req.Placement)
	return node, nil
}

// shift moves both edges of every node at or after threshold by delta.
func (e *Engine) shift(ctx context.Context, structureID, root, threshold, delta int64) error {
	if err := e.store.ShiftRange(ctx, structureID, root, threshold, delta, store.EdgeLeft); err != nil {
		return err
	}
	return e.store.ShiftRange(ctx, structureID, root, threshold, delta, store.EdgeRight)
}

func (e *Engine) storageErr(req Request, err error) error {
	var me *MoveError
	if errors.As(err, &me) {
		return err
	}
	return NewStorageError(req.StructureID, req.ElementID, err)
}
