package in

import (
	"context"

	"detox/internal/modules/profile/dto"
	profilein "detox/internal/modules/profile/port/in"
)

type CLIHandler struct {
	usecase profilein.Usecase
}

func NewCLIHandler(usecase profilein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Register(ctx context.Context, username string, baseline int) (dto.ProfileOutput, error) {
	return h.usecase.Register(ctx, dto.RegisterInput{Username: username, BaselineMinutes: baseline})
}

func (h CLIHandler) Show(ctx context.Context, username string) (dto.ProfileOutput, error) {
	return h.usecase.Get(ctx, username)
}

func (h CLIHandler) Reset(ctx context.Context, username string) (dto.ProfileOutput, error) {
	return h.usecase.Reset(ctx, username)
}
