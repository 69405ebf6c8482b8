package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/nestedset/internal/ir"
)

// createTestStore creates a new temp-file store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedTree writes R(1,6) > A(2,3), B(4,5) into structure 1, root group 1.
// Element IDs: A=10, B=20.
func seedTree(t *testing.T, s *Store) (root, a, b ir.Node) {
	t.Helper()
	ctx := context.Background()

	root, err := s.CreateRoot(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, s.ShiftRange(ctx, 1, root.Root, 2, 4, EdgeRight))

	a, err = s.InsertNode(ctx, ir.Node{StructureID: 1, ElementID: 10,
		Position: ir.Position{Root: root.Root, Lft: 2, Rgt: 3, Level: 2}})
	require.NoError(t, err)
	b, err = s.InsertNode(ctx, ir.Node{StructureID: 1, ElementID: 20,
		Position: ir.Position{Root: root.Root, Lft: 4, Rgt: 5, Level: 2}})
	require.NoError(t, err)

	root, _, err = s.GetNode(ctx, root.ID)
	require.NoError(t, err)
	return root, a, b
}
