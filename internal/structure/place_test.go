package structure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/nestedset/internal/engine"
	"github.com/roach88/nestedset/internal/ir"
)

func TestPrepend_ChildOfSecondSibling(t *testing.T) {
	svc, _ := newTestService(t)
	appendToRoot(t, svc, 10, 20)

	before := positions(t, svc, testStructure)
	require.Equal(t, pos(1, 1, 6, 1), before[ir.NoElement])
	require.Equal(t, pos(1, 2, 3, 2), before[10])
	require.Equal(t, pos(1, 4, 5, 2), before[20])

	c := element(30)
	require.NoError(t, svc.Prepend(context.Background(), testStructure, c, 20, ir.ModeAuto))

	assert.Equal(t, pos(1, 5, 6, 3), c.Position)
	after := positions(t, svc, testStructure)
	assert.Equal(t, pos(1, 1, 8, 1), after[ir.NoElement])
	assert.Equal(t, pos(1, 2, 3, 2), after[10])
	assert.Equal(t, pos(1, 4, 7, 2), after[20])
	assert.Equal(t, pos(1, 5, 6, 3), after[30])
	requireVerified(t, svc, testStructure)
}

func TestRootVerbs_CreateRootOnFirstUse(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, found, err := st.FindRoot(ctx, testStructure)
	require.NoError(t, err)
	require.False(t, found)

	a := element(10)
	require.NoError(t, svc.PrependToRoot(ctx, testStructure, a, ir.ModeAuto))
	assert.Equal(t, pos(1, 2, 3, 2), a.Position)

	b := element(20)
	require.NoError(t, svc.PrependToRoot(ctx, testStructure, b, ir.ModeAuto))
	assert.Equal(t, pos(1, 2, 3, 2), b.Position)

	c := element(30)
	require.NoError(t, svc.AppendToRoot(ctx, testStructure, c, ir.ModeAuto))
	assert.Equal(t, pos(1, 6, 7, 2), c.Position)

	nodes, err := svc.Tree(ctx, testStructure)
	require.NoError(t, err)
	assert.Equal(t, []int64{ir.NoElement, 20, 10, 30}, elementIDs(nodes))
	assert.Equal(t, 1, svc.roots.Len())
	requireVerified(t, svc, testStructure)
}

func TestMoveBeforeAndAfter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	appendToRoot(t, svc, 10, 20, 30)

	moved := element(30)
	require.NoError(t, svc.MoveBefore(ctx, testStructure, moved, 10, ir.ModeAuto))
	assert.Equal(t, pos(1, 2, 3, 2), moved.Position)
	got := positions(t, svc, testStructure)
	assert.Equal(t, pos(1, 4, 5, 2), got[10])
	assert.Equal(t, pos(1, 6, 7, 2), got[20])

	require.NoError(t, svc.MoveAfter(ctx, testStructure, moved, 20, ir.ModeAuto))
	assert.Equal(t, pos(1, 6, 7, 2), moved.Position)
	got = positions(t, svc, testStructure)
	assert.Equal(t, pos(1, 2, 3, 2), got[10])
	assert.Equal(t, pos(1, 4, 5, 2), got[20])
	assert.Equal(t, pos(1, 1, 8, 1), got[ir.NoElement])
	requireVerified(t, svc, testStructure)
}

func TestAppend_CarriesSubtree(t *testing.T) {
	svc, _ := newTestService(t)
	appendToRoot(t, svc, 10)
	appendTo(t, svc, 10, 11)
	appendToRoot(t, svc, 20)

	moved := element(10)
	require.NoError(t, svc.Append(context.Background(), testStructure, moved, 20, ir.ModeUpdate))

	assert.Equal(t, pos(1, 3, 6, 3), moved.Position)
	got := positions(t, svc, testStructure)
	assert.Equal(t, pos(1, 1, 8, 1), got[ir.NoElement])
	assert.Equal(t, pos(1, 2, 7, 2), got[20])
	assert.Equal(t, pos(1, 4, 5, 4), got[11])
	requireVerified(t, svc, testStructure)
}

func TestPlace_NoOpSucceedsWithoutHooks(t *testing.T) {
	svc, _ := newTestService(t)
	appendToRoot(t, svc, 10, 20)
	before := requireVerified(t, svc, testStructure)

	fired := 0
	svc.OnBeforeMove(func(context.Context, MoveEvent) bool { fired++; return true })
	svc.OnAfterMove(func(context.Context, MoveEvent) { fired++ })

	el := element(20)
	require.NoError(t, svc.MoveAfter(context.Background(), testStructure, el, 10, ir.ModeAuto))

	assert.Equal(t, pos(1, 4, 5, 2), el.Position)
	assert.Zero(t, fired)
	after := requireVerified(t, svc, testStructure)
	assert.Equal(t, before.Hash, after.Hash)
}

func TestPlace_CyclicMoveLeavesStructureUnchanged(t *testing.T) {
	svc, _ := newTestService(t)
	appendToRoot(t, svc, 10)
	appendTo(t, svc, 10, 11)
	appendTo(t, svc, 11, 12)
	before := requireVerified(t, svc, testStructure)

	err := svc.Append(context.Background(), testStructure, element(10), 12, ir.ModeAuto)
	require.Error(t, err)
	assert.True(t, engine.IsCyclicMove(err))

	ok, err := Succeeded(err)
	assert.False(t, ok)
	assert.Error(t, err)

	after := requireVerified(t, svc, testStructure)
	assert.Equal(t, before.Hash, after.Hash)
}

func TestPlace_TargetNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	appendToRoot(t, svc, 10)

	el := element(20)
	err := svc.Prepend(context.Background(), testStructure, el, 999, ir.ModeAuto)
	require.Error(t, err)
	assert.True(t, engine.IsNotFound(err))
	assert.Equal(t, ir.Position{}, el.Position)

	ok, err := Succeeded(err)
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestPlace_Modes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	appendToRoot(t, svc, 10)
	before := requireVerified(t, svc, testStructure)

	t.Run("update without node", func(t *testing.T) {
		err := svc.AppendToRoot(ctx, testStructure, element(20), ir.ModeUpdate)
		assert.True(t, engine.IsNotFound(err))
	})

	t.Run("insert with existing node", func(t *testing.T) {
		err := svc.AppendToRoot(ctx, testStructure, element(10), ir.ModeInsert)
		assert.True(t, engine.IsStorageFailure(err))
	})

	after := requireVerified(t, svc, testStructure)
	assert.Equal(t, before.Hash, after.Hash)

	t.Run("insert new", func(t *testing.T) {
		el := element(20)
		require.NoError(t, svc.AppendToRoot(ctx, testStructure, el, ir.ModeInsert))
		assert.Equal(t, pos(1, 4, 5, 2), el.Position)
	})

	t.Run("update existing", func(t *testing.T) {
		el := element(20)
		require.NoError(t, svc.PrependToRoot(ctx, testStructure, el, ir.ModeUpdate))
		assert.Equal(t, pos(1, 2, 3, 2), el.Position)
	})
}

func TestPlace_RequiresElement(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.AppendToRoot(ctx, testStructure, nil, ir.ModeAuto), ErrNoElement)
	assert.ErrorIs(t, svc.AppendToRoot(ctx, testStructure, element(ir.NoElement), ir.ModeAuto), ErrNoElement)

	nodes, err := svc.Tree(ctx, testStructure)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestRootCache(t *testing.T) {
	t.Run("stale entry is replaced", func(t *testing.T) {
		svc, st := newTestService(t)
		svc.roots.Put(testStructure, 9999)

		appendToRoot(t, svc, 10)

		root, found, err := st.FindRoot(context.Background(), testStructure)
		require.NoError(t, err)
		require.True(t, found)
		id, ok := svc.roots.Get(testStructure)
		require.True(t, ok)
		assert.Equal(t, root.ID, id)
	})

	t.Run("disabled", func(t *testing.T) {
		svc, _ := newTestService(t, WithoutRootCache())
		appendToRoot(t, svc, 10, 20)
		assert.Nil(t, svc.roots)
		assert.Equal(t, pos(1, 4, 5, 2), positions(t, svc, testStructure)[20])
	})

	t.Run("reset", func(t *testing.T) {
		c := NewRootCache()
		c.Put(1, 10)
		c.Put(2, 20)
		c.Invalidate(1)
		_, ok := c.Get(1)
		assert.False(t, ok)
		assert.Equal(t, 1, c.Len())
		c.Reset()
		assert.Zero(t, c.Len())
	})
}

func TestPlace_ConcurrentRootGroups(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := st.CreateRoot(ctx, testStructure)
	require.NoError(t, err)
	second, err := st.CreateRoot(ctx, testStructure)
	require.NoError(t, err)
	_, err = engine.New(st, quietLogger()).Place(ctx, engine.Request{
		StructureID: testStructure,
		ElementID:   200,
		Target:      second,
		Placement:   ir.AppendTo,
	})
	require.NoError(t, err)

	const n = 20
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for i := int64(1); i <= n; i++ {
			if err := svc.AppendToRoot(gctx, testStructure, element(i), ir.ModeAuto); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		for i := int64(201); i <= 200+n; i++ {
			if err := svc.Append(gctx, testStructure, element(i), 200, ir.ModeAuto); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, g.Wait())

	nodes, err := svc.Tree(ctx, testStructure)
	require.NoError(t, err)
	perRoot := map[int64]int{}
	for _, node := range nodes {
		perRoot[node.Root]++
	}
	assert.Equal(t, n+1, perRoot[1])
	assert.Equal(t, n+2, perRoot[second.Root])
	requireVerified(t, svc, testStructure)
}

func TestSucceeded(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		ok      bool
		wantErr bool
	}{
		{"nil", nil, true, false},
		{"not found", engine.NewNotFoundError(1, 2, "target node"), false, false},
		{"vetoed", engine.NewVetoedError(1, 2), false, false},
		{"cyclic", engine.NewCyclicMoveError(1, 2), false, true},
		{"storage", engine.NewStorageError(1, 2, assert.AnError), false, true},
		{"other", assert.AnError, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Succeeded(tt.err)
			assert.Equal(t, tt.ok, ok)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
