package structure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nestedset/internal/engine"
	"github.com/roach88/nestedset/internal/ir"
)

func TestTreeQueries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	appendToRoot(t, svc, 10)
	appendTo(t, svc, 10, 11, 12)
	appendTo(t, svc, 11, 111)

	children, err := svc.Children(ctx, testStructure, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12}, elementIDs(children))

	descendants, err := svc.Descendants(ctx, testStructure, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 111, 12}, elementIDs(descendants))

	ancestors, err := svc.Ancestors(ctx, testStructure, 111)
	require.NoError(t, err)
	assert.Equal(t, []int64{ir.NoElement, 10, 11}, elementIDs(ancestors))

	parent, found, err := svc.Parent(ctx, testStructure, 111)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(11), parent.ElementID)

	parent, found, err = svc.Parent(ctx, testStructure, 10)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, parent.HasElement())

	_, err = svc.Node(ctx, testStructure, 999)
	assert.True(t, engine.IsNotFound(err))
	_, err = svc.Children(ctx, testStructure, 999)
	assert.True(t, engine.IsNotFound(err))
}

func TestVerify(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	appendToRoot(t, svc, 10, 20)

	first := requireVerified(t, svc, testStructure)
	assert.Equal(t, 3, first.Nodes)
	assert.Len(t, first.Hash, 64)

	require.NoError(t, svc.MoveAfter(ctx, testStructure, element(20), 10, ir.ModeAuto))
	assert.Equal(t, first.Hash, requireVerified(t, svc, testStructure).Hash)

	require.NoError(t, svc.MoveBefore(ctx, testStructure, element(20), 10, ir.ModeAuto))
	assert.NotEqual(t, first.Hash, requireVerified(t, svc, testStructure).Hash)

	// Corrupt the index behind the service's back.
	_, err := st.DB().ExecContext(ctx, `UPDATE structure_nodes SET level = 5 WHERE element_id = 10`)
	require.NoError(t, err)
	report, err := svc.Verify(ctx, testStructure)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, engine.RuleLevel, report.Violations[0].Rule)
}
