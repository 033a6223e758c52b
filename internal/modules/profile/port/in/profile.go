package in

import (
	"context"

	"detox/internal/modules/profile/dto"
)

type Usecase interface {
	Register(ctx context.Context, input dto.RegisterInput) (dto.ProfileOutput, error)
	Get(ctx context.Context, username string) (dto.ProfileOutput, error)
	// Reset clears logged days, challenge progress, points and balance in one unit.
	Reset(ctx context.Context, username string) (dto.ProfileOutput, error)
}
