package structure

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
	st, err := store.Open(filepath.Join(t.TempDir(), "structure.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, opts ...Option) (*Service, *store.Store) {
	t.Helper()
	st := createTestStore(t)
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(st, opts...), st
}

func element(id int64) *ir.Element {
	return &ir.Element{ID: id}
}

func pos(root, lft, rgt int64, level int) ir.Position {
	return ir.Position{Root: root, Lft: lft, Rgt: rgt, Level: level}
}

// positions maps element IDs to their positions. The synthetic root is
// keyed by ir.NoElement.
func positions(t *testing.T, svc *Service, structureID int64) map[int64]ir.Position {
	t.Helper()
	nodes, err := svc.Tree(context.Background(), structureID)
	require.NoError(t, err)
	out := make(map[int64]ir.Position, len(nodes))
	for _, n := range nodes {
		out[n.ElementID] = n.Position
	}
	return out
}

func elementIDs(nodes []ir.Node) []int64 {
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ElementID
	}
	return ids
}

func requireVerified(t *testing.T, svc *Service, structureID int64) Report {
	t.Helper()
	report, err := svc.Verify(context.Background(), structureID)
	require.NoError(t, err)
	require.True(t, report.OK(), "violations: %v", report.Violations)
	return report
}

// appendToRoot places each element at the end of the top level.
func appendToRoot(t *testing.T, svc *Service, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, svc.AppendToRoot(context.Background(), testStructure, element(id), ir.ModeAuto))
	}
}

func appendTo(t *testing.T, svc *Service, parent int64, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, svc.Append(context.Background(), testStructure, element(id), parent, ir.ModeAuto))
	}
}
