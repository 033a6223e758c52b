package tx

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "detox/internal/platform/errors"
)

// Manager wraps transactional boundaries for multi-adapter operations.
type Manager interface {
	Within(ctx context.Context, fn func(context.Context) error) error
}

// NoopManager has no transaction of its own. The outermost Within still
// defers AfterCommit hooks until fn returns without error.
type NoopManager struct{}

func (NoopManager) Within(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(hooksKey{}).(*hooks); ok {
		return fn(ctx)
	}
	h := &hooks{}
	if err := fn(context.WithValue(ctx, hooksKey{}, h)); err != nil {
		return err
	}
	h.run()
	return nil
}

type hooksKey struct{}

type hooks struct {
	fns []func()
}

func (h *hooks) run() {
	for _, fn := range h.fns {
		fn()
	}
}

// AfterCommit schedules fn to run once the outermost unit in ctx commits.
// Hooks are dropped on rollback. With no open unit fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	if h, ok := ctx.Value(hooksKey{}).(*hooks); ok {
		h.fns = append(h.fns, fn)
		return
	}
	fn()
}

// Executor is the query surface shared by *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// SQLManager runs fn inside one database transaction carried by the context.
// Nested Within calls join the outer transaction.
type SQLManager struct {
	db *sql.DB
}

func NewSQLManager(db *sql.DB) *SQLManager {
	return &SQLManager{db: db}
}

func (m *SQLManager) Within(ctx context.Context, fn func(context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	sqlTx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", apperrors.ErrPersistence, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()
	h := &hooks{}
	inner := context.WithValue(context.WithValue(ctx, txKey{}, sqlTx), hooksKey{}, h)
	if err := fn(inner); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("%w: commit transaction: %w", apperrors.ErrPersistence, err)
	}
	h.run()
	return nil
}

// From returns the transaction in ctx, or db when none is open.
func From(ctx context.Context, db *sql.DB) Executor {
	if sqlTx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return sqlTx
	}
	return db
}
