package usecase

import (
	"context"
	"fmt"

	challengein "detox/internal/modules/challenge/port/in"
	"detox/internal/modules/profile/domain"
	"detox/internal/modules/profile/dto"
	profilein "detox/internal/modules/profile/port/in"
	"detox/internal/modules/profile/service"
	usagein "detox/internal/modules/usage/port/in"
	apperrors "detox/internal/platform/errors"
	"detox/internal/platform/lock"
	"detox/internal/platform/tx"
)

type Interactor struct {
	svc        *service.ProfileService
	usage      usagein.Usecase
	challenges challengein.Usecase
	locker     lock.Locker
	txm        tx.Manager
}

func NewInteractor(svc *service.ProfileService, usage usagein.Usecase, challenges challengein.Usecase, locker lock.Locker, txm tx.Manager) profilein.Usecase {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if txm == nil {
		txm = tx.NoopManager{}
	}
	return &Interactor{svc: svc, usage: usage, challenges: challenges, locker: locker, txm: txm}
}

func (i *Interactor) Register(ctx context.Context, input dto.RegisterInput) (dto.ProfileOutput, error) {
	p, err := i.svc.Register(ctx, input.Username, input.BaselineMinutes)
	if err != nil {
		return dto.ProfileOutput{}, err
	}
	return toOutput(p), nil
}

func (i *Interactor) Get(ctx context.Context, username string) (dto.ProfileOutput, error) {
	p, err := i.svc.Get(ctx, username)
	if err != nil {
		return dto.ProfileOutput{}, err
	}
	return toOutput(p), nil
}

func (i *Interactor) Reset(ctx context.Context, username string) (dto.ProfileOutput, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return dto.ProfileOutput{}, err
	}
	ctx, unlock, err := i.locker.Lock(ctx, name)
	if err != nil {
		return dto.ProfileOutput{}, fmt.Errorf("%w: lock user %s: %w", apperrors.ErrPersistence, name, err)
	}
	defer unlock()

	var out dto.ProfileOutput
	err = i.txm.Within(ctx, func(ctx context.Context) error {
		if _, err := i.svc.Get(ctx, name); err != nil {
			return err
		}
		if i.usage != nil {
			if err := i.usage.ClearHistory(ctx, name); err != nil {
				return err
			}
		}
		if i.challenges != nil {
			if err := i.challenges.ClearProgress(ctx, name); err != nil {
				return err
			}
		}
		if err := i.svc.ResetBalances(ctx, name); err != nil {
			return err
		}
		p, err := i.svc.Get(ctx, name)
		if err != nil {
			return err
		}
		out = toOutput(p)
		return nil
	})
	if err != nil {
		return dto.ProfileOutput{}, err
	}
	return out, nil
}

func toOutput(p domain.Profile) dto.ProfileOutput {
	return dto.ProfileOutput{
		Username:        p.Username,
		Points:          p.Points,
		Balance:         p.Balance,
		BaselineMinutes: p.BaselineMinutes,
		TargetMinutes:   p.TargetMinutes(),
		RedeemableValue: p.RedeemableValue(),
		CreatedAt:       p.CreatedAt,
	}
}
