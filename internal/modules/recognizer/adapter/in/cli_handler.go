package in

import (
	"context"

	"detox/internal/modules/recognizer/dto"
	recognizerin "detox/internal/modules/recognizer/port/in"
)

type CLIHandler struct {
	usecase recognizerin.Usecase
}

func NewCLIHandler(usecase recognizerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.RecognizerInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}
