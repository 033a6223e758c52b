package in

import (
	"context"
	"time"

	"detox/internal/modules/usage/dto"
)

type Usecase interface {
	Scan(ctx context.Context, input dto.ScanInput) (dto.ScanOutput, error)
	Confirm(ctx context.Context, input dto.ConfirmInput) (dto.LogOutput, error)
	Log(ctx context.Context, input dto.LogInput) (dto.LogOutput, error)
	GetDay(ctx context.Context, user string, date time.Time) (dto.DayOutput, error)
	History(ctx context.Context, input dto.HistoryInput) ([]dto.DayOutput, error)
	// ClearHistory removes every logged day of user; it joins the caller's transaction.
	ClearHistory(ctx context.Context, user string) error
	Today() time.Time
}
