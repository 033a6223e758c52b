package in

import (
	"context"
	"time"

	"detox/internal/modules/challenge/dto"
	challengein "detox/internal/modules/challenge/port/in"
	usagein "detox/internal/modules/usage/port/in"
)

type CLIHandler struct {
	usecase challengein.Usecase
	usage   usagein.Usecase
}

func NewCLIHandler(usecase challengein.Usecase, usage usagein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase, usage: usage}
}

func (h CLIHandler) Catalog(ctx context.Context) []dto.ChallengeOutput {
	return h.usecase.Catalog(ctx)
}

func (h CLIHandler) Board(ctx context.Context, user string, date time.Time) (dto.BoardOutput, error) {
	return loadBoard(ctx, h.usecase, h.usage, user, date)
}
