package out

import (
	"context"
	"time"

	"detox/internal/modules/challenge/domain"
)

// OutcomeStore persists qualifying days, one row per (user, challenge, date).
type OutcomeStore interface {
	HasOutcome(ctx context.Context, user string, id domain.ID, date time.Time) (bool, error)
	// InsertOutcome writes the row if absent and reports whether it did.
	InsertOutcome(ctx context.Context, user string, id domain.ID, date time.Time) (bool, error)
	CountOutcomes(ctx context.Context, user string, id domain.ID) (int, error)
	CountsByChallenge(ctx context.Context, user string) (map[domain.ID]int, error)
	OutcomesOn(ctx context.Context, user string, date time.Time) (map[domain.ID]bool, error)
	ClearAllOutcomes(ctx context.Context, user string) error
}

// Ledger is the user's points account.
type Ledger interface {
	// LockAccount pins the account row for the rest of the transaction.
	LockAccount(ctx context.Context, user string) error
	Baseline(ctx context.Context, user string) (int, error)
	CreditPoints(ctx context.Context, user string, points int) error
}
