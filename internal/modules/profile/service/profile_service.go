package service

import (
	"context"
	"errors"
	"fmt"

	"detox/internal/modules/profile/domain"
	profileout "detox/internal/modules/profile/port/out"
	"detox/internal/platform/clock"
	apperrors "detox/internal/platform/errors"
)

type ProfileService struct {
	clock clock.Clock
	store profileout.ProfileStore
}

func NewProfileService(clk clock.Clock, store profileout.ProfileStore) *ProfileService {
	return &ProfileService{clock: clk, store: store}
}

func (s *ProfileService) Register(ctx context.Context, username string, baseline int) (domain.Profile, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return domain.Profile{}, err
	}
	if baseline == 0 {
		baseline = domain.DefaultBaselineMinutes
	}
	if err := domain.ValidateBaseline(baseline); err != nil {
		return domain.Profile{}, err
	}
	p := domain.Profile{Username: name, BaselineMinutes: baseline, CreatedAt: s.clock.Now()}
	if err := s.store.Create(ctx, p); err != nil {
		return domain.Profile{}, storeErr("create user", err)
	}
	return p, nil
}

func (s *ProfileService) Get(ctx context.Context, username string) (domain.Profile, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return domain.Profile{}, err
	}
	p, err := s.store.Get(ctx, name)
	if err != nil {
		return domain.Profile{}, storeErr("get user", err)
	}
	return p, nil
}

func (s *ProfileService) ResetBalances(ctx context.Context, username string) error {
	if err := s.store.Reset(ctx, username); err != nil {
		return storeErr("reset user", err)
	}
	return nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrUserExists) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", apperrors.ErrPersistence, op, err)
}
