package out

import (
	"context"
	"time"

	"detox/internal/modules/usage/domain"
)

// DailyLogStore keeps at most one DayLog per (user, date); a later write replaces the earlier.
type DailyLogStore interface {
	UpsertDay(ctx context.Context, day domain.DayLog) error
	GetDay(ctx context.Context, user string, date time.Time) (domain.DayLog, error)
	// ListDays returns the newest days first; limit <= 0 means all.
	ListDays(ctx context.Context, user string, limit int) ([]domain.DayLog, error)
	ClearDays(ctx context.Context, user string) error
}

// ScanCache holds parsed scans until they are confirmed or expire.
type ScanCache interface {
	Put(ctx context.Context, scan domain.Scan, ttl time.Duration) error
	Get(ctx context.Context, user, id string) (domain.Scan, error)
	Delete(ctx context.Context, user, id string) error
}

type RecognizedText struct {
	Recognizer string
	Tokens     []string
}

// Recognizer turns a screenshot into its ordered text fragments.
type Recognizer interface {
	Recognize(ctx context.Context, recognizer, imagePath string) (RecognizedText, error)
}
