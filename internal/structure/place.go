package structure

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/nestedset/internal/engine"
	"github.com/roach88/nestedset/internal/ir"
	"github.com/roach88/nestedset/internal/store"
)

// Verb names, as used in move events, metrics and span names.
const (
	VerbPrepend       = "prepend"
	VerbAppend        = "append"
	VerbPrependToRoot = "prepend_to_root"
	VerbAppendToRoot  = "append_to_root"
	VerbMoveBefore    = "move_before"
	VerbMoveAfter     = "move_after"
)

// ErrNoElement is returned when a verb is called without an element ID.
var ErrNoElement = errors.New("element must have a non-zero ID")

// Prepend places el as the first child of parentElementID's node.
func (s *Service) Prepend(ctx context.Context, structureID int64, el *ir.Element, parentElementID int64, mode ir.Mode) error {
	return s.place(ctx, call{
		verb:        VerbPrepend,
		structureID: structureID,
		el:          el,
		placement:   ir.PrependTo,
		mode:        mode,
		target:      s.elementTarget(structureID, parentElementID),
	})
}

// Append places el as the last child of parentElementID's node.
func (s *Service) Append(ctx context.Context, structureID int64, el *ir.Element, parentElementID int64, mode ir.Mode) error {
	return s.place(ctx, call{
		verb:        VerbAppend,
		structureID: structureID,
		el:          el,
		placement:   ir.AppendTo,
		mode:        mode,
		target:      s.elementTarget(structureID, parentElementID),
	})
}

// PrependToRoot places el as the first top-level node of the structure. The
// structure's synthetic root is created on first use.
func (s *Service) PrependToRoot(ctx context.Context, structureID int64, el *ir.Element, mode ir.Mode) error {
	return s.place(ctx, call{
		verb:        VerbPrependToRoot,
		structureID: structureID,
		el:          el,
		placement:   ir.PrependTo,
		mode:        mode,
		target:      s.rootTarget(structureID),
		rootLevel:   true,
	})
}

// AppendToRoot places el as the last top-level node of the structure. The
// structure's synthetic root is created on first use.
func (s *Service) AppendToRoot(ctx context.Context, structureID int64, el *ir.Element, mode ir.Mode) error {
	return s.place(ctx, call{
		verb:        VerbAppendToRoot,
		structureID: structureID,
		el:          el,
		placement:   ir.AppendTo,
		mode:        mode,
		target:      s.rootTarget(structureID),
		rootLevel:   true,
	})
}

// MoveBefore places el immediately before siblingElementID, at its level.
func (s *Service) MoveBefore(ctx context.Context, structureID int64, el *ir.Element, siblingElementID int64, mode ir.Mode) error {
	return s.place(ctx, call{
		verb:        VerbMoveBefore,
		structureID: structureID,
		el:          el,
		placement:   ir.InsertBefore,
		mode:        mode,
		target:      s.elementTarget(structureID, siblingElementID),
	})
}

// MoveAfter places el immediately after siblingElementID, at its level.
func (s *Service) MoveAfter(ctx context.Context, structureID int64, el *ir.Element, siblingElementID int64, mode ir.Mode) error {
	return s.place(ctx, call{
		verb:        VerbMoveAfter,
		structureID: structureID,
		el:          el,
		placement:   ir.InsertAfter,
		mode:        mode,
		target:      s.elementTarget(structureID, siblingElementID),
	})
}

// targetFunc resolves the node a placement is relative to.
type targetFunc func(ctx context.Context) (ir.Node, bool, error)

type call struct {
	verb        string
	structureID int64
	el          *ir.Element
	placement   ir.Placement
	mode        ir.Mode
	target      targetFunc

	// rootLevel allows a missing target: the synthetic root is created
	// inside the placement transaction.
	rootLevel bool
}

func (s *Service) elementTarget(structureID, elementID int64) targetFunc {
	return func(ctx context.Context) (ir.Node, bool, error) {
		return s.repo.FindNode(ctx, structureID, elementID)
	}
}

func (s *Service) rootTarget(structureID int64) targetFunc {
	return func(ctx context.Context) (ir.Node, bool, error) {
		return s.findRoot(ctx, structureID)
	}
}

// place runs one placement through resolve, validate, before-move,
// shift/write and after-move.
func (s *Service) place(ctx context.Context, c call) (err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "Service."+c.verb, trace.WithAttributes(
		attribute.Int64("structure.id", c.structureID),
		attribute.String("placement", c.placement.String()),
		attribute.String("mode", c.mode.String()),
	))
	noOp := false
	defer func() {
		s.metrics.observe(c.verb, outcomeOf(err, noOp), time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if c.el == nil || c.el.ID == ir.NoElement {
		return ErrNoElement
	}
	span.SetAttributes(attribute.Int64("element.id", c.el.ID))

	target, found, err := c.target(ctx)
	if err != nil {
		return storageErr(c, err)
	}
	if !found && !c.rootLevel {
		return engine.NewNotFoundError(c.structureID, c.el.ID, "target node")
	}

	source, exists, err := s.resolveSource(ctx, c)
	if err != nil {
		return err
	}

	// Without a root there is nothing to collide with.
	if found {
		noOp, err = engine.Validate(c.structureID, c.el.ID, source, exists, target, c.placement)
		if err != nil {
			return err
		}
		if noOp {
			c.el.Position = source.Position
			s.logger.Debug("element already in place",
				"verb", c.verb, "structure_id", c.structureID, "element_id", c.el.ID)
			return nil
		}
	}

	var placed ir.Node
	err = s.repo.RunInTx(ctx, func(ctx context.Context) error {
		if !found {
			root, err := s.ensureRoot(ctx, c.structureID)
			if err != nil {
				return storageErr(c, err)
			}
			target = root
		}

		ev := MoveEvent{
			Seq:          s.clock.Next(),
			Verb:         c.verb,
			StructureID:  c.structureID,
			ElementID:    c.el.ID,
			TargetNodeID: target.ID,
			Placement:    c.placement,
		}
		if !s.hooks.allow(ctx, ev) {
			s.logger.Warn("move vetoed",
				"verb", c.verb, "structure_id", c.structureID, "element_id", c.el.ID, "seq", ev.Seq)
			return engine.NewVetoedError(c.structureID, c.el.ID)
		}

		var err error
		placed, err = s.engine.Place(ctx, engine.Request{
			StructureID: c.structureID,
			ElementID:   c.el.ID,
			Target:      target,
			Placement:   c.placement,
			Mode:        c.mode,
		})
		if err != nil {
			return err
		}

		ev.Position = placed.Position
		store.OnCommit(ctx, func() {
			s.hooks.notify(store.Detach(ctx), ev)
		})
		return nil
	})
	if err != nil {
		return err
	}

	c.el.Position = placed.Position
	span.SetAttributes(
		attribute.Int64("node.root", placed.Root),
		attribute.Int64("node.lft", placed.Lft),
		attribute.Int("node.level", placed.Level),
	)
	s.logger.Info("element placed",
		"verb", c.verb,
		"structure_id", c.structureID,
		"element_id", c.el.ID,
		"root", placed.Root,
		"lft", placed.Lft,
		"rgt", placed.Rgt,
		"level", placed.Level,
	)
	return nil
}

func (s *Service) resolveSource(ctx context.Context, c call) (ir.Node, bool, error) {
	if c.mode == ir.ModeInsert {
		return ir.Node{}, false, nil
	}
	source, exists, err := s.repo.FindNode(ctx, c.structureID, c.el.ID)
	if err != nil {
		return ir.Node{}, false, storageErr(c, err)
	}
	if !exists && c.mode == ir.ModeUpdate {
		return ir.Node{}, false, engine.NewNotFoundError(c.structureID, c.el.ID, "element node")
	}
	return source, exists, nil
}

// findRoot returns the structure's synthetic root, preferring the cache.
// A cached ID whose node has disappeared is dropped.
func (s *Service) findRoot(ctx context.Context, structureID int64) (ir.Node, bool, error) {
	if s.roots != nil {
		if id, ok := s.roots.Get(structureID); ok {
			n, found, err := s.repo.GetNode(ctx, id)
			if err != nil {
				return ir.Node{}, false, err
			}
			if found {
				return n, true, nil
			}
			s.roots.Invalidate(structureID)
		}
	}

	n, found, err := s.repo.FindRoot(ctx, structureID)
	if err != nil || !found {
		return n, found, err
	}
	s.cacheRoot(ctx, structureID, n.ID)
	return n, true, nil
}

// ensureRoot returns the structure's root, creating it when absent. It runs
// inside the placement transaction so the lookup and the creation hold the
// same write lock.
func (s *Service) ensureRoot(ctx context.Context, structureID int64) (ir.Node, error) {
	root, found, err := s.findRoot(ctx, structureID)
	if err != nil {
		return ir.Node{}, err
	}
	if found {
		return root, nil
	}

	root, err = s.repo.CreateRoot(ctx, structureID)
	if err != nil {
		return ir.Node{}, err
	}
	s.cacheRoot(ctx, structureID, root.ID)
	s.logger.Info("created structure root", "structure_id", structureID, "node", root.String())
	return root, nil
}

// cacheRoot records the root once the surrounding transaction commits, so a
// rolled-back creation never reaches the cache.
func (s *Service) cacheRoot(ctx context.Context, structureID, nodeID int64) {
	if s.roots == nil {
		return
	}
	store.OnCommit(ctx, func() {
		s.roots.Put(structureID, nodeID)
	})
}

func storageErr(c call, err error) error {
	var me *engine.MoveError
	if errors.As(err, &me) {
		return err
	}
	return engine.NewStorageError(c.structureID, c.el.ID, err)
}
