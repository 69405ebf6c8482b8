package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/nestedset/internal/ir"
)

// SaveStructure inserts a new structure (ID == 0) or updates an existing one.
// New structures get a UUIDv7 UID when none is set. The assigned ID and UID
// are written back onto structure.
func (s *Store) SaveStructure(ctx context.Context, structure *ir.Structure) error {
	if structure.UID == "" {
		structure.UID = uuid.Must(uuid.NewV7()).String()
	}

	if structure.ID == 0 {
		result, err := s.conn(ctx).ExecContext(ctx, `
			INSERT INTO structures (uid, max_levels) VALUES (?, ?)
		`, structure.UID, structure.MaxLevels)
		if err != nil {
			return fmt.Errorf("save structure: insert: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("save structure: last insert id: %w", err)
		}
		structure.ID = id
		return nil
	}

	result, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE structures SET uid = ?, max_levels = ? WHERE id = ?
	`, structure.UID, structure.MaxLevels, structure.ID)
	if err != nil {
		return fmt.Errorf("save structure: update: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save structure: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("save structure: no structure with id %d", structure.ID)
	}
	return nil
}

// GetStructure returns the structure with the given ID.
func (s *Store) GetStructure(ctx context.Context, id int64) (ir.Structure, bool, error) {
	var structure ir.Structure
	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, uid, max_levels FROM structures WHERE id = ?
	`, id).Scan(&structure.ID, &structure.UID, &structure.MaxLevels)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Structure{}, false, nil
	}
	if err != nil {
		return ir.Structure{}, false, fmt.Errorf("get structure: %w", err)
	}
	return structure, true, nil
}

// ListStructures returns every structure ordered by ID.
func (s *Store) ListStructures(ctx context.Context) ([]ir.Structure, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, uid, max_levels FROM structures ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list structures: %w", err)
	}
	defer rows.Close()

	structures := []ir.Structure{}
	for rows.Next() {
		var structure ir.Structure
		if err := rows.Scan(&structure.ID, &structure.UID, &structure.MaxLevels); err != nil {
			return nil, fmt.Errorf("scan structure: %w", err)
		}
		structures = append(structures, structure)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate structures: %w", err)
	}
	return structures, nil
}

// DeleteStructure removes the structure row only. Its nodes are left in
// place; see DeleteNodes.
func (s *Store) DeleteStructure(ctx context.Context, id int64) (bool, error) {
	result, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM structures WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete structure: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete structure: rows affected: %w", err)
	}
	return n > 0, nil
}
