package structure

import (
	"context"

	"github.com/roach88/nestedset/internal/engine"
	"github.com/roach88/nestedset/internal/ir"
)

// Tree returns every node of the structure ordered by (root, lft).
func (s *Service) Tree(ctx context.Context, structureID int64) ([]ir.Node, error) {
	return s.repo.ListNodes(ctx, structureID)
}

// Node returns elementID's node or a NOT_FOUND MoveError.
func (s *Service) Node(ctx context.Context, structureID, elementID int64) (ir.Node, error) {
	n, found, err := s.repo.FindNode(ctx, structureID, elementID)
	if err != nil {
		return ir.Node{}, engine.NewStorageError(structureID, elementID, err)
	}
	if !found {
		return ir.Node{}, engine.NewNotFoundError(structureID, elementID, "element node")
	}
	return n, nil
}

// Children returns the direct children of elementID's node.
func (s *Service) Children(ctx context.Context, structureID, elementID int64) ([]ir.Node, error) {
	n, err := s.Node(ctx, structureID, elementID)
	if err != nil {
		return nil, err
	}
	return s.repo.Children(ctx, n)
}

// Descendants returns every node below elementID's node, in lft order.
func (s *Service) Descendants(ctx context.Context, structureID, elementID int64) ([]ir.Node, error) {
	n, err := s.Node(ctx, structureID, elementID)
	if err != nil {
		return nil, err
	}
	return s.repo.Descendants(ctx, n)
}

// Ancestors returns the nodes above elementID's node, outermost first. The
// synthetic root is included.
func (s *Service) Ancestors(ctx context.Context, structureID, elementID int64) ([]ir.Node, error) {
	n, err := s.Node(ctx, structureID, elementID)
	if err != nil {
		return nil, err
	}
	return s.repo.Ancestors(ctx, n)
}

// Parent returns the parent of elementID's node. found is false for a node
// at the top of its root group.
func (s *Service) Parent(ctx context.Context, structureID, elementID int64) (ir.Node, bool, error) {
	n, err := s.Node(ctx, structureID, elementID)
	if err != nil {
		return ir.Node{}, false, err
	}
	return s.repo.Parent(ctx, n)
}
