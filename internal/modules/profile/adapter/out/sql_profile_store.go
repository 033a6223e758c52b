package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"detox/internal/modules/profile/domain"
	profileout "detox/internal/modules/profile/port/out"
	apperrors "detox/internal/platform/errors"
	"detox/internal/platform/sqldb"
	"detox/internal/platform/tx"
)

type SQLProfileStore struct {
	db *sqldb.DB
}

func NewSQLProfileStore(db *sqldb.DB) profileout.ProfileStore {
	return &SQLProfileStore{db: db}
}

func (s *SQLProfileStore) Create(ctx context.Context, p domain.Profile) error {
	stmt := s.db.Dialect.InsertIgnore + ` users (username, points, balance, baseline_minutes, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.From(ctx, s.db.DB).ExecContext(ctx, stmt,
		p.Username, p.Points, p.Balance, p.BaselineMinutes, p.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrUserExists, p.Username)
	}
	return nil
}

func (s *SQLProfileStore) Get(ctx context.Context, username string) (domain.Profile, error) {
	var (
		p       domain.Profile
		created string
	)
	err := tx.From(ctx, s.db.DB).QueryRowContext(ctx,
		`SELECT username, points, balance, baseline_minutes, created_at FROM users WHERE username = ?`, username,
	).Scan(&p.Username, &p.Points, &p.Balance, &p.BaselineMinutes, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, username)
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("get user: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		p.CreatedAt = t
	}
	return p, nil
}

func (s *SQLProfileStore) Reset(ctx context.Context, username string) error {
	res, err := tx.From(ctx, s.db.DB).ExecContext(ctx,
		`UPDATE users SET points = 0, balance = 0 WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("reset user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reset user: %w", err)
	}
	if n == 0 {
		// MySQL reports zero for a row that was already zeroed.
		if _, err := s.Get(ctx, username); err != nil {
			return err
		}
	}
	return nil
}
