package in

import (
	"context"
	"errors"
	"time"

	"detox/internal/modules/challenge/dto"
	challengein "detox/internal/modules/challenge/port/in"
	usagein "detox/internal/modules/usage/port/in"
	apperrors "detox/internal/platform/errors"
)

// loadBoard joins the logged usage of date (today when zero) with challenge progress.
func loadBoard(ctx context.Context, challenges challengein.Usecase, usage usagein.Usecase, user string, date time.Time) (dto.BoardOutput, error) {
	if date.IsZero() && usage != nil {
		date = usage.Today()
	}
	input := dto.BoardInput{User: user, Date: date}
	if usage != nil {
		day, err := usage.GetDay(ctx, user, date)
		switch {
		case err == nil:
			input.Today = &dto.UsageSnapshot{
				Total: day.Total,
				Apps:  map[string]int{"youtube": day.YouTube, "instagram": day.Instagram},
			}
		case errors.Is(err, apperrors.ErrNotFound):
		default:
			return dto.BoardOutput{}, err
		}
	}
	return challenges.Board(ctx, input)
}
