package in

import (
	"context"

	"detox/internal/modules/challenge/dto"
)

type Usecase interface {
	Evaluate(ctx context.Context, input dto.EvaluateInput) (dto.EvaluationOutput, error)
	Board(ctx context.Context, input dto.BoardInput) (dto.BoardOutput, error)
	Catalog(ctx context.Context) []dto.ChallengeOutput
	// ClearProgress removes every recorded day of user; it joins the caller's transaction.
	ClearProgress(ctx context.Context, user string) error
}
