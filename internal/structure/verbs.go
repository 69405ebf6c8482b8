package structure

import (
	"context"
	"fmt"

	"github.com/roach88/nestedset/internal/ir"
)

var verbPlacements = map[string]ir.Placement{
	VerbPrepend:       ir.PrependTo,
	VerbAppend:        ir.AppendTo,
	VerbPrependToRoot: ir.PrependTo,
	VerbAppendToRoot:  ir.AppendTo,
	VerbMoveBefore:    ir.InsertBefore,
	VerbMoveAfter:     ir.InsertAfter,
}

// Verbs lists the placement verbs in a fixed order.
func Verbs() []string {
	return []string{VerbPrepend, VerbAppend, VerbPrependToRoot, VerbAppendToRoot, VerbMoveBefore, VerbMoveAfter}
}

// PlacementOf returns the placement a verb applies.
func PlacementOf(verb string) (ir.Placement, bool) {
	p, ok := verbPlacements[verb]
	return p, ok
}

// IsRootVerb reports whether verb places relative to the synthetic root and
// so takes no target element.
func IsRootVerb(verb string) bool {
	return verb == VerbPrependToRoot || verb == VerbAppendToRoot
}

// PlaceByVerb dispatches to the verb named verb. targetElementID is ignored
// by the root-level verbs.
func (s *Service) PlaceByVerb(ctx context.Context, verb string, structureID int64, el *ir.Element, targetElementID int64, mode ir.Mode) error {
	switch verb {
	case VerbPrepend:
		return s.Prepend(ctx, structureID, el, targetElementID, mode)
	case VerbAppend:
		return s.Append(ctx, structureID, el, targetElementID, mode)
	case VerbPrependToRoot:
		return s.PrependToRoot(ctx, structureID, el, mode)
	case VerbAppendToRoot:
		return s.AppendToRoot(ctx, structureID, el, mode)
	case VerbMoveBefore:
		return s.MoveBefore(ctx, structureID, el, targetElementID, mode)
	case VerbMoveAfter:
		return s.MoveAfter(ctx, structureID, el, targetElementID, mode)
	default:
		return fmt.Errorf("unknown verb %q", verb)
	}
}
