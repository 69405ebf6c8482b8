package structure

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/nestedset/internal/engine"
	"github.com/roach88/nestedset/internal/ir"
)

var validate = validator.New()

// SaveStructure inserts or updates a structure after validating it.
func (s *Service) SaveStructure(ctx context.Context, structure *ir.Structure) error {
	if structure == nil {
		return errors.New("save structure: nil structure")
	}
	if err := validate.Struct(structure); err != nil {
		return fmt.Errorf("save structure: invalid: %w", err)
	}
	if err := s.repo.SaveStructure(ctx, structure); err != nil {
		return err
	}
	s.logger.Info("structure saved",
		"structure_id", structure.ID, "uid", structure.UID, "max_levels", structure.MaxLevels)
	return nil
}

// GetStructureByID returns the structure or a NOT_FOUND MoveError.
func (s *Service) GetStructureByID(ctx context.Context, id int64) (ir.Structure, error) {
	structure, found, err := s.repo.GetStructure(ctx, id)
	if err != nil {
		return ir.Structure{}, err
	}
	if !found {
		return ir.Structure{}, engine.NewNotFoundError(id, ir.NoElement, "structure")
	}
	return structure, nil
}

// Structures returns every structure ordered by ID.
func (s *Service) Structures(ctx context.Context) ([]ir.Structure, error) {
	return s.repo.ListStructures(ctx)
}

// DeleteStructureByID deletes the structure record. Its nodes stay in
// storage; their owner removes them.
func (s *Service) DeleteStructureByID(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.repo.DeleteStructure(ctx, id)
	if err != nil {
		return false, err
	}
	if s.roots != nil {
		s.roots.Invalidate(id)
	}
	if deleted {
		s.logger.Info("structure deleted", "structure_id", id)
	}
	return deleted, nil
}
