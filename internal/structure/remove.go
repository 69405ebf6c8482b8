package structure

import (
	"context"

	"github.com/roach88/nestedset/internal/engine"
	"github.com/roach88/nestedset/internal/ir"
	"github.com/roach88/nestedset/internal/store"
)

// RemoveElement deletes elementID's node with its descendants and closes the
// gap they leave. It returns the number of nodes removed.
func (s *Service) RemoveElement(ctx context.Context, structureID, elementID int64) (int64, error) {
	var removed int64
	err := s.repo.RunInTx(ctx, func(ctx context.Context) error {
		n, found, err := s.repo.FindNode(ctx, structureID, elementID)
		if err != nil {
			return engine.NewStorageError(structureID, elementID, err)
		}
		if !found {
			return engine.NewNotFoundError(structureID, elementID, "element node")
		}

		removed, err = s.repo.DeleteSubtree(ctx, n)
		if err != nil {
			return engine.NewStorageError(structureID, elementID, err)
		}
		if err := s.closeGap(ctx, n); err != nil {
			return engine.NewStorageError(structureID, elementID, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("element removed",
		"structure_id", structureID, "element_id", elementID, "nodes", removed)
	return removed, nil
}

func (s *Service) closeGap(ctx context.Context, n ir.Node) error {
	for _, edge := range []store.Edge{store.EdgeLeft, store.EdgeRight} {
		if err := s.repo.ShiftRange(ctx, n.StructureID, n.Root, n.Rgt+1, -n.Width(), edge); err != nil {
			return err
		}
	}
	return nil
}
