package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// txScope is the transaction carried through a context, plus the callbacks
// to run once it commits.
type txScope struct {
	tx       *sql.Tx
	onCommit []func()
}

func scopeFrom(ctx context.Context) *txScope {
	scope, _ := ctx.Value(txKey{}).(*txScope)
	return scope
}

// InTx reports whether ctx carries an open transaction.
func InTx(ctx context.Context) bool {
	return scopeFrom(ctx) != nil
}

// conn returns the context's transaction, or the pool when there is none.
func (s *Store) conn(ctx context.Context) querier {
	if scope := scopeFrom(ctx); scope != nil {
		return scope.tx
	}
	return s.db
}

// RunInTx runs fn inside a transaction.
//
// If ctx already carries a transaction, fn joins it and RunInTx neither
// commits nor rolls back: the outer owner decides. Otherwise a new
// transaction is begun, committed when fn returns nil, and rolled back when
// fn returns an error or panics. The error from fn is always returned
// unchanged (joined with the rollback error if rollback also fails).
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if InTx(ctx) {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	scope := &txScope{tx: tx}
	txCtx := context.WithValue(ctx, txKey{}, scope)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", "error", rbErr)
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	for _, f := range scope.onCommit {
		f()
	}
	return nil
}

// OnCommit registers fn to run after the outermost transaction in ctx
// commits. It never runs if that transaction rolls back. Without a
// transaction in ctx, fn runs immediately.
func OnCommit(ctx context.Context, fn func()) {
	if scope := scopeFrom(ctx); scope != nil {
		scope.onCommit = append(scope.onCommit, fn)
		return
	}
	fn()
}

// Detach returns a context that no longer carries a transaction, for work
// that must run on the pool after the transaction has finished.
func Detach(ctx context.Context) context.Context {
	if !InTx(ctx) {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, (*txScope)(nil))
}
