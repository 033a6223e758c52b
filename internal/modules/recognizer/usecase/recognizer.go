package usecase

import (
	"context"

	"detox/internal/modules/recognizer/dto"
	recognizerin "detox/internal/modules/recognizer/port/in"
	"detox/internal/modules/recognizer/service"
)

type Interactor struct {
	svc *service.RecognizerService
}

func NewInteractor(svc *service.RecognizerService) recognizerin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.RecognizerInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Recognize(ctx context.Context, input dto.RecognizeInput) (dto.RecognizeOutput, error) {
	return i.svc.Recognize(ctx, input)
}
