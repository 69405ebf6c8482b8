package structure

import (
	"context"

	"github.com/roach88/nestedset/internal/engine"
	"github.com/roach88/nestedset/internal/ir"
)

// GetElementLevelDelta returns how many levels below elementID its deepest
// descendant sits. A leaf returns 0.
func (s *Service) GetElementLevelDelta(ctx context.Context, structureID, elementID int64) (int, error) {
	n, found, err := s.repo.FindNode(ctx, structureID, elementID)
	if err != nil {
		return 0, engine.NewStorageError(structureID, elementID, err)
	}
	if !found {
		return 0, engine.NewNotFoundError(structureID, elementID, "element node")
	}

	deepest, ok, err := s.repo.DeepestDescendantLevel(ctx, structureID, elementID)
	if err != nil {
		return 0, engine.NewStorageError(structureID, elementID, err)
	}
	if !ok {
		return 0, nil
	}
	return deepest - n.Level, nil
}

// CheckMaxLevels rejects a subtree whose root would land at targetLevel and
// whose deepest descendant sits delta levels below it, when that exceeds the
// structure's limit. Levels are counted from the top-level elements, so the
// synthetic root's level does not count.
func CheckMaxLevels(structure ir.Structure, elementID int64, targetLevel, delta int) error {
	if structure.Unlimited() {
		return nil
	}
	deepest := targetLevel + delta - 1
	if deepest > structure.MaxLevels {
		return engine.NewMaxLevelsError(structure.ID, elementID, deepest, structure.MaxLevels)
	}
	return nil
}

// ValidateMove checks that placing elementID relative to targetElementID
// keeps the structure within its maxLevels. targetElementID ir.NoElement
// means the structure's root, which only accepts child placements.
func (s *Service) ValidateMove(ctx context.Context, structureID, elementID, targetElementID int64, p ir.Placement) error {
	structure, err := s.GetStructureByID(ctx, structureID)
	if err != nil {
		return err
	}
	if structure.Unlimited() {
		return nil
	}

	// Top-level elements sit at level 2, under the synthetic root.
	targetLevel := 2
	if targetElementID == ir.NoElement {
		if !p.ChildPlacement() {
			return engine.NewInvalidTargetError(structureID, elementID, "cannot place a sibling of a root node")
		}
	} else {
		target, found, err := s.repo.FindNode(ctx, structureID, targetElementID)
		if err != nil {
			return engine.NewStorageError(structureID, elementID, err)
		}
		if !found {
			return engine.NewNotFoundError(structureID, elementID, "target node")
		}
		_, targetLevel = p.Anchor(target)
	}

	delta, err := s.GetElementLevelDelta(ctx, structureID, elementID)
	if err != nil && !engine.IsNotFound(err) {
		return err
	}
	return CheckMaxLevels(structure, elementID, targetLevel, delta)
}
