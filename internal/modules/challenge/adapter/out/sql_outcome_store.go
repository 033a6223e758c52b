package out

import (
	"context"
	"fmt"
	"time"

	"detox/internal/modules/challenge/domain"
	challengeout "detox/internal/modules/challenge/port/out"
	"detox/internal/platform/clock"
	"detox/internal/platform/sqldb"
	"detox/internal/platform/tx"
)

type SQLOutcomeStore struct {
	db    *sqldb.DB
	clock clock.Clock
}

func NewSQLOutcomeStore(db *sqldb.DB, clk clock.Clock) challengeout.OutcomeStore {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &SQLOutcomeStore{db: db, clock: clk}
}

func (s *SQLOutcomeStore) HasOutcome(ctx context.Context, user string, id domain.ID, date time.Time) (bool, error) {
	var n int
	err := tx.From(ctx, s.db.DB).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM challenge_outcomes WHERE username = ? AND challenge_id = ? AND outcome_date = ?`,
		user, string(id), clock.FormatDate(date),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query outcome: %w", err)
	}
	return n > 0, nil
}

func (s *SQLOutcomeStore) InsertOutcome(ctx context.Context, user string, id domain.ID, date time.Time) (bool, error) {
	stmt := s.db.Dialect.InsertIgnore + ` challenge_outcomes (username, challenge_id, outcome_date, recorded_at) VALUES (?, ?, ?, ?)`
	res, err := tx.From(ctx, s.db.DB).ExecContext(ctx, stmt,
		user, string(id), clock.FormatDate(date), s.clock.Now().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert outcome: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert outcome: %w", err)
	}
	return n > 0, nil
}

func (s *SQLOutcomeStore) CountOutcomes(ctx context.Context, user string, id domain.ID) (int, error) {
	var n int
	err := tx.From(ctx, s.db.DB).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM challenge_outcomes WHERE username = ? AND challenge_id = ?`,
		user, string(id),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count outcomes: %w", err)
	}
	return n, nil
}

func (s *SQLOutcomeStore) CountsByChallenge(ctx context.Context, user string) (map[domain.ID]int, error) {
	rows, err := tx.From(ctx, s.db.DB).QueryContext(ctx,
		`SELECT challenge_id, COUNT(*) FROM challenge_outcomes WHERE username = ? GROUP BY challenge_id`, user)
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	defer rows.Close()
	out := map[domain.ID]int{}
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		out[domain.ID(id)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	return out, nil
}

func (s *SQLOutcomeStore) OutcomesOn(ctx context.Context, user string, date time.Time) (map[domain.ID]bool, error) {
	rows, err := tx.From(ctx, s.db.DB).QueryContext(ctx,
		`SELECT challenge_id FROM challenge_outcomes WHERE username = ? AND outcome_date = ?`,
		user, clock.FormatDate(date))
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()
	out := map[domain.ID]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		out[domain.ID(id)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	return out, nil
}

func (s *SQLOutcomeStore) ClearAllOutcomes(ctx context.Context, user string) error {
	if _, err := tx.From(ctx, s.db.DB).ExecContext(ctx, `DELETE FROM challenge_outcomes WHERE username = ?`, user); err != nil {
		return fmt.Errorf("clear outcomes: %w", err)
	}
	return nil
}
