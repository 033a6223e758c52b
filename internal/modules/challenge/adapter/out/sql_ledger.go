package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	challengeout "detox/internal/modules/challenge/port/out"
	apperrors "detox/internal/platform/errors"
	"detox/internal/platform/sqldb"
	"detox/internal/platform/tx"
)

// SQLLedger reads and credits the points column of the users table.
type SQLLedger struct {
	db *sqldb.DB
}

func NewSQLLedger(db *sqldb.DB) challengeout.Ledger {
	return &SQLLedger{db: db}
}

func (l *SQLLedger) LockAccount(ctx context.Context, user string) error {
	var points int
	err := tx.From(ctx, l.db.DB).QueryRowContext(ctx,
		`SELECT points FROM users WHERE username = ?`+l.db.Dialect.ForUpdate, user,
	).Scan(&points)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, user)
	}
	if err != nil {
		return fmt.Errorf("lock account: %w", err)
	}
	return nil
}

func (l *SQLLedger) Baseline(ctx context.Context, user string) (int, error) {
	var baseline int
	err := tx.From(ctx, l.db.DB).QueryRowContext(ctx,
		`SELECT baseline_minutes FROM users WHERE username = ?`, user,
	).Scan(&baseline)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, user)
	}
	if err != nil {
		return 0, fmt.Errorf("read baseline: %w", err)
	}
	return baseline, nil
}

func (l *SQLLedger) CreditPoints(ctx context.Context, user string, points int) error {
	res, err := tx.From(ctx, l.db.DB).ExecContext(ctx,
		`UPDATE users SET points = points + ? WHERE username = ?`, points, user)
	if err != nil {
		return fmt.Errorf("credit points: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("credit points: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, user)
	}
	return nil
}
