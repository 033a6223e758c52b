package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"detox/internal/modules/usage/domain"
	usageout "detox/internal/modules/usage/port/out"
	"detox/internal/platform/clock"
	apperrors "detox/internal/platform/errors"
	"detox/internal/platform/sqldb"
	"detox/internal/platform/tx"
)

type SQLDailyLogStore struct {
	db *sqldb.DB
}

func NewSQLDailyLogStore(db *sqldb.DB) usageout.DailyLogStore {
	return &SQLDailyLogStore{db: db}
}

func (s *SQLDailyLogStore) UpsertDay(ctx context.Context, day domain.DayLog) error {
	const stmt = `
REPLACE INTO daily_logs (username, log_date, total_minutes, youtube_minutes, instagram_minutes, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`
	_, err := tx.From(ctx, s.db.DB).ExecContext(ctx, stmt,
		day.User,
		clock.FormatDate(day.Date),
		day.Total,
		day.YouTube,
		day.Instagram,
		day.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert day: %w", err)
	}
	return nil
}

func (s *SQLDailyLogStore) GetDay(ctx context.Context, user string, date time.Time) (domain.DayLog, error) {
	const query = `
SELECT username, log_date, total_minutes, youtube_minutes, instagram_minutes, updated_at
FROM daily_logs WHERE username = ? AND log_date = ?`
	day, err := scanDay(tx.From(ctx, s.db.DB).QueryRowContext(ctx, query, user, clock.FormatDate(date)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DayLog{}, fmt.Errorf("%w: no log for %s on %s", apperrors.ErrNotFound, user, clock.FormatDate(date))
	}
	if err != nil {
		return domain.DayLog{}, fmt.Errorf("get day: %w", err)
	}
	return day, nil
}

func (s *SQLDailyLogStore) ListDays(ctx context.Context, user string, limit int) ([]domain.DayLog, error) {
	query := `
SELECT username, log_date, total_minutes, youtube_minutes, instagram_minutes, updated_at
FROM daily_logs WHERE username = ? ORDER BY log_date DESC`
	args := []any{user}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := tx.From(ctx, s.db.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	defer rows.Close()
	var out []domain.DayLog
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		out = append(out, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	return out, nil
}

func (s *SQLDailyLogStore) ClearDays(ctx context.Context, user string) error {
	if _, err := tx.From(ctx, s.db.DB).ExecContext(ctx, `DELETE FROM daily_logs WHERE username = ?`, user); err != nil {
		return fmt.Errorf("clear days: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDay(row rowScanner) (domain.DayLog, error) {
	var (
		day              domain.DayLog
		date, updatedRaw string
	)
	if err := row.Scan(&day.User, &date, &day.Total, &day.YouTube, &day.Instagram, &updatedRaw); err != nil {
		return domain.DayLog{}, err
	}
	parsed, err := time.Parse(clock.DateLayout, date)
	if err != nil {
		return domain.DayLog{}, fmt.Errorf("parse log date %q: %w", date, err)
	}
	day.Date = parsed
	if updated, err := time.Parse(time.RFC3339, updatedRaw); err == nil {
		day.UpdatedAt = updated
	}
	return day, nil
}
