package in

import (
	"context"

	"detox/internal/modules/recognizer/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.RecognizerInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	Recognize(ctx context.Context, input dto.RecognizeInput) (dto.RecognizeOutput, error)
}
