package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/nestedset/internal/ir"
)

// Edge selects which side of a node's range ShiftRange moves.
type Edge int

const (
	// EdgeLeft shifts lft values.
	EdgeLeft Edge = iota
	// EdgeRight shifts rgt values.
	EdgeRight
)

func (e Edge) column() string {
	if e == EdgeRight {
		return "rgt"
	}
	return "lft"
}

func (e Edge) String() string {
	return e.column()
}

const nodeColumns = `id, structure_id, element_id, root, lft, rgt, level`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (ir.Node, error) {
	var n ir.Node
	var elementID sql.NullInt64
	if err := row.Scan(&n.ID, &n.StructureID, &elementID, &n.Root, &n.Lft, &n.Rgt, &n.Level); err != nil {
		return ir.Node{}, err
	}
	if elementID.Valid {
		n.ElementID = elementID.Int64
	}
	return n, nil
}

func elementArg(id int64) any {
	if id == ir.NoElement {
		return nil
	}
	return id
}

// queryNode runs a single-row query and maps sql.ErrNoRows to found=false.
func (s *Store) queryNode(ctx context.Context, op, query string, args ...any) (ir.Node, bool, error) {
	n, err := scanNode(s.conn(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Node{}, false, nil
	}
	if err != nil {
		return ir.Node{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return n, true, nil
}

// queryNodes runs a multi-row query. Returns an empty slice (not nil) when
// nothing matches.
func (s *Store) queryNodes(ctx context.Context, op, query string, args ...any) ([]ir.Node, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	nodes := []ir.Node{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}
	return nodes, nil
}

// GetNode returns the node with the given row ID.
func (s *Store) GetNode(ctx context.Context, id int64) (ir.Node, bool, error) {
	return s.queryNode(ctx, "get node", `
		SELECT `+nodeColumns+` FROM structure_nodes WHERE id = ?
	`, id)
}

// FindNode returns the node positioning elementID in structureID.
func (s *Store) FindNode(ctx context.Context, structureID, elementID int64) (ir.Node, bool, error) {
	return s.queryNode(ctx, "find node", `
		SELECT `+nodeColumns+` FROM structure_nodes
		WHERE structure_id = ? AND element_id = ?
	`, structureID, elementID)
}

// FindRoot returns the structure's synthetic root node: the first
// element-less level-1 node, by root group.
func (s *Store) FindRoot(ctx context.Context, structureID int64) (ir.Node, bool, error) {
	return s.queryNode(ctx, "find root", `
		SELECT `+nodeColumns+` FROM structure_nodes
		WHERE structure_id = ? AND level = 1 AND element_id IS NULL
		ORDER BY root ASC, id ASC
		LIMIT 1
	`, structureID)
}

// CreateRoot inserts an element-less root node (lft=1, rgt=2, level=1) in a
// freshly allocated root group.
func (s *Store) CreateRoot(ctx context.Context, structureID int64) (ir.Node, error) {
	var node ir.Node
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		var root int64
		if err := s.conn(ctx).QueryRowContext(ctx, `
			SELECT COALESCE(MAX(root), 0) + 1 FROM structure_nodes WHERE structure_id = ?
		`, structureID).Scan(&root); err != nil {
			return fmt.Errorf("create root: allocate: %w", err)
		}

		var err error
		node, err = s.InsertNode(ctx, ir.Node{
			StructureID: structureID,
			ElementID:   ir.NoElement,
			Position:    ir.Position{Root: root, Lft: 1, Rgt: 2, Level: 1},
		})
		return err
	})
	if err != nil {
		return ir.Node{}, err
	}
	return node, nil
}

// InsertNode writes a new node row and returns it with its ID set.
func (s *Store) InsertNode(ctx context.Context, n ir.Node) (ir.Node, error) {
	result, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO structure_nodes (structure_id, element_id, root, lft, rgt, level)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.StructureID, elementArg(n.ElementID), n.Root, n.Lft, n.Rgt, n.Level)
	if err != nil {
		return ir.Node{}, fmt.Errorf("insert node: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return ir.Node{}, fmt.Errorf("insert node: last insert id: %w", err)
	}
	n.ID = id
	return n, nil
}

// ShiftRange adds delta to the given edge of every node in (structureID,
// root) whose edge value is >= threshold. It is a single bulk UPDATE.
func (s *Store) ShiftRange(ctx context.Context, structureID, root, threshold, delta int64, edge Edge) error {
	col := edge.column()
	result, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE structure_nodes SET `+col+` = `+col+` + ?
		WHERE structure_id = ? AND root = ? AND `+col+` >= ?
	`, delta, structureID, root, threshold)
	if err != nil {
		return fmt.Errorf("shift %s: %w", col, err)
	}
	if n, err := result.RowsAffected(); err == nil {
		s.logger.Debug("shifted range",
			"structure_id", structureID, "root", root, "edge", col,
			"threshold", threshold, "delta", delta, "rows", n)
	}
	return nil
}

// MoveSubtree translates every node of the subtree rooted at src: lft and
// rgt move by offset, level by levelDelta, and the rows join root group
// toRoot. src must carry the subtree's current coordinates.
func (s *Store) MoveSubtree(ctx context.Context, src ir.Node, toRoot, offset int64, levelDelta int) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE structure_nodes
		SET lft = lft + ?, rgt = rgt + ?, level = level + ?, root = ?
		WHERE structure_id = ? AND root = ? AND lft >= ? AND rgt <= ?
	`, offset, offset, levelDelta, toRoot, src.StructureID, src.Root, src.Lft, src.Rgt)
	if err != nil {
		return fmt.Errorf("move subtree: %w", err)
	}
	return nil
}

// DeleteSubtree removes n and all of its descendants. It does not close the
// gap; callers shift afterwards within the same transaction.
func (s *Store) DeleteSubtree(ctx context.Context, n ir.Node) (int64, error) {
	result, err := s.conn(ctx).ExecContext(ctx, `
		DELETE FROM structure_nodes
		WHERE structure_id = ? AND root = ? AND lft >= ? AND rgt <= ?
	`, n.StructureID, n.Root, n.Lft, n.Rgt)
	if err != nil {
		return 0, fmt.Errorf("delete subtree: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete subtree: rows affected: %w", err)
	}
	return deleted, nil
}

// DeleteNodes removes every node of a structure.
func (s *Store) DeleteNodes(ctx context.Context, structureID int64) (int64, error) {
	result, err := s.conn(ctx).ExecContext(ctx, `
		DELETE FROM structure_nodes WHERE structure_id = ?
	`, structureID)
	if err != nil {
		return 0, fmt.Errorf("delete nodes: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete nodes: rows affected: %w", err)
	}
	return deleted, nil
}

// DeepestDescendantLevel returns the greatest level among the descendants of
// elementID's node. found is false when the element has no node or the node
// has no descendants. Ties at the maximum are irrelevant: only the level is
// returned.
func (s *Store) DeepestDescendantLevel(ctx context.Context, structureID, elementID int64) (int, bool, error) {
	var level sql.NullInt64
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT MAX(d.level)
		FROM structure_nodes n
		JOIN structure_nodes d
		  ON d.structure_id = n.structure_id AND d.root = n.root
		 AND d.lft > n.lft AND d.rgt < n.rgt
		WHERE n.structure_id = ? AND n.element_id = ?
	`, structureID, elementID).Scan(&level)
	if err != nil {
		return 0, false, fmt.Errorf("deepest descendant level: %w", err)
	}
	if !level.Valid {
		return 0, false, nil
	}
	return int(level.Int64), true, nil
}

// ListNodes returns every node of a structure ordered by (root, lft).
func (s *Store) ListNodes(ctx context.Context, structureID int64) ([]ir.Node, error) {
	return s.queryNodes(ctx, "list nodes", `
		SELECT `+nodeColumns+` FROM structure_nodes
		WHERE structure_id = ?
		ORDER BY root ASC, lft ASC
	`, structureID)
}

// Descendants returns the nodes strictly inside n's range, in lft order.
func (s *Store) Descendants(ctx context.Context, n ir.Node) ([]ir.Node, error) {
	return s.queryNodes(ctx, "descendants", `
		SELECT `+nodeColumns+` FROM structure_nodes
		WHERE structure_id = ? AND root = ? AND lft > ? AND rgt < ?
		ORDER BY lft ASC
	`, n.StructureID, n.Root, n.Lft, n.Rgt)
}

// Children returns n's direct children, in lft order.
func (s *Store) Children(ctx context.Context, n ir.Node) ([]ir.Node, error) {
	return s.queryNodes(ctx, "children", `
		SELECT `+nodeColumns+` FROM structure_nodes
		WHERE structure_id = ? AND root = ? AND lft > ? AND rgt < ? AND level = ?
		ORDER BY lft ASC
	`, n.StructureID, n.Root, n.Lft, n.Rgt, n.Level+1)
}

// Ancestors returns the nodes strictly containing n, outermost first.
func (s *Store) Ancestors(ctx context.Context, n ir.Node) ([]ir.Node, error) {
	return s.queryNodes(ctx, "ancestors", `
		SELECT `+nodeColumns+` FROM structure_nodes
		WHERE structure_id = ? AND root = ? AND lft < ? AND rgt > ?
		ORDER BY lft ASC
	`, n.StructureID, n.Root, n.Lft, n.Rgt)
}

// Parent returns n's direct parent. Root nodes have none.
func (s *Store) Parent(ctx context.Context, n ir.Node) (ir.Node, bool, error) {
	return s.queryNode(ctx, "parent", `
		SELECT `+nodeColumns+` FROM structure_nodes
		WHERE structure_id = ? AND root = ? AND lft < ? AND rgt > ?
		ORDER BY lft DESC
		LIMIT 1
	`, n.StructureID, n.Root, n.Lft, n.Rgt)
}
