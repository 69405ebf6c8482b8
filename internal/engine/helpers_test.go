package engine

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/nestedset/internal/ir"
	"github.com/roach88/nestedset/internal/store"
)

const testStructure int64 = 1

func createTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	st := createTestStore(t)
	return New(st, quietLogger()), st
}

// place is a test shorthand for Engine.Place in auto mode.
func place(t *testing.T, e *Engine, elementID int64, target ir.Node, p ir.Placement) ir.Node {
	t.Helper()
	n, err := e.Place(context.Background(), Request{
		StructureID: testStructure,
		ElementID:   elementID,
		Target:      target,
		Placement:   p,
	})
	require.NoError(t, err)
	return n
}

func mustNode(t *testing.T, st *store.Store, elementID int64) ir.Node {
	t.Helper()
	n, ok, err := st.FindNode(context.Background(), testStructure, elementID)
	require.NoError(t, err)
	require.True(t, ok, "element %d has no node", elementID)
	return n
}

func mustGet(t *testing.T, st *store.Store, id int64) ir.Node {
	t.Helper()
	n, ok, err := st.GetNode(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	return n
}

func snapshot(t *testing.T, st *store.Store) string {
	t.Helper()
	nodes, err := st.ListNodes(context.Background(), testStructure)
	require.NoError(t, err)
	h, err := ir.SnapshotHash(testStructure, nodes)
	require.NoError(t, err)
	return h
}

func requireValid(t *testing.T, st *store.Store) []ir.Node {
	t.Helper()
	nodes, err := st.ListNodes(context.Background(), testStructure)
	require.NoError(t, err)
	require.Empty(t, CheckInvariants(nodes))
	return nodes
}

// seedScenario builds R(1,6) > A(2,3), B(4,5) with A=1, B=2.
func seedScenario(t *testing.T, e *Engine, st *store.Store) ir.Node {
	t.Helper()
	root, err := st.CreateRoot(context.Background(), testStructure)
	require.NoError(t, err)
	place(t, e, 1, root, ir.AppendTo)
	place(t, e, 2, root, ir.AppendTo)
	return mustGet(t, st, root.ID)
}
