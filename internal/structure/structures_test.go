package structure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nestedset/internal/engine"
	"github.com/roach88/nestedset/internal/ir"
)

func TestSaveStructure(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("rejects negative max levels", func(t *testing.T) {
		err := svc.SaveStructure(ctx, &ir.Structure{MaxLevels: -1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid")
	})

	t.Run("rejects nil", func(t *testing.T) {
		assert.Error(t, svc.SaveStructure(ctx, nil))
	})

	t.Run("insert and update", func(t *testing.T) {
		s := &ir.Structure{MaxLevels: 3}
		require.NoError(t, svc.SaveStructure(ctx, s))
		assert.NotZero(t, s.ID)
		assert.NotEmpty(t, s.UID)

		s.MaxLevels = 5
		require.NoError(t, svc.SaveStructure(ctx, s))

		got, err := svc.GetStructureByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, *s, got)

		all, err := svc.Structures(ctx)
		require.NoError(t, err)
		assert.Equal(t, []ir.Structure{got}, all)
	})
}

func TestGetStructureByID_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetStructureByID(context.Background(), 42)
	assert.True(t, engine.IsNotFound(err))
}

func TestDeleteStructureByID_KeepsNodes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	s := &ir.Structure{}
	require.NoError(t, svc.SaveStructure(ctx, s))
	require.NoError(t, svc.AppendToRoot(ctx, s.ID, element(10), ir.ModeAuto))
	_, cached := svc.roots.Get(s.ID)
	require.True(t, cached)

	deleted, err := svc.DeleteStructureByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, cached = svc.roots.Get(s.ID)
	assert.False(t, cached)

	nodes, err := svc.Tree(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	deleted, err = svc.DeleteStructureByID(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
