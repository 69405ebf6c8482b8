package structure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nestedset/internal/engine"
	"github.com/roach88/nestedset/internal/ir"
)

func TestGetElementLevelDelta(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	appendToRoot(t, svc, 1)
	appendTo(t, svc, 1, 2)
	appendTo(t, svc, 2, 3)
	appendTo(t, svc, 3, 4)
	appendTo(t, svc, 1, 5)

	tests := []struct {
		element int64
		want    int
	}{
		{1, 3},
		{2, 2},
		{3, 1},
		{4, 0},
		{5, 0},
	}
	for _, tt := range tests {
		got, err := svc.GetElementLevelDelta(ctx, testStructure, tt.element)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "element %d", tt.element)
	}

	_, err := svc.GetElementLevelDelta(ctx, testStructure, 99)
	assert.True(t, engine.IsNotFound(err))
}

func TestCheckMaxLevels(t *testing.T) {
	limited := ir.Structure{ID: 7, MaxLevels: 3}

	assert.NoError(t, CheckMaxLevels(ir.Structure{}, 1, 50, 50))
	assert.NoError(t, CheckMaxLevels(limited, 1, 2, 2))
	assert.NoError(t, CheckMaxLevels(limited, 1, 4, 0))

	err := CheckMaxLevels(limited, 1, 3, 2)
	require.Error(t, err)
	assert.True(t, engine.IsMaxLevelsExceeded(err))
	assert.Contains(t, err.Error(), "level 4 (max 3)")
}

func TestValidateMove(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	limited := &ir.Structure{MaxLevels: 3}
	require.NoError(t, svc.SaveStructure(ctx, limited))
	require.Equal(t, testStructure, limited.ID)

	appendToRoot(t, svc, 1)
	appendTo(t, svc, 1, 2)
	appendTo(t, svc, 2, 3)
	appendToRoot(t, svc, 5)

	tests := []struct {
		name    string
		element int64
		target  int64
		p       ir.Placement
		code    engine.MoveErrorCode
	}{
		{"new leaf under deepest", 9, 3, ir.AppendTo, engine.ErrCodeMaxLevelsExceeded},
		{"new leaf at deepest level", 9, 2, ir.AppendTo, ""},
		{"new sibling of deepest", 9, 3, ir.InsertAfter, ""},
		{"subtree to top level", 1, ir.NoElement, ir.AppendTo, ""},
		{"subtree one level down", 1, 5, ir.AppendTo, engine.ErrCodeMaxLevelsExceeded},
		{"shallow subtree one level down", 2, 5, ir.AppendTo, ""},
		{"sibling of root", 9, ir.NoElement, ir.InsertBefore, engine.ErrCodeInvalidTarget},
		{"missing target", 9, 404, ir.AppendTo, engine.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateMove(ctx, testStructure, tt.element, tt.target, tt.p)
			assert.Equal(t, tt.code, engine.CodeOf(err))
		})
	}

	t.Run("missing structure", func(t *testing.T) {
		err := svc.ValidateMove(ctx, 404, 1, 2, ir.AppendTo)
		assert.True(t, engine.IsNotFound(err))
	})

	t.Run("unlimited structure", func(t *testing.T) {
		unlimited := &ir.Structure{}
		require.NoError(t, svc.SaveStructure(ctx, unlimited))
		assert.NoError(t, svc.ValidateMove(ctx, unlimited.ID, 9, 3, ir.AppendTo))
	})
}
