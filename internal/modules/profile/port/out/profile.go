package out

import (
	"context"

	"detox/internal/modules/profile/domain"
)

type ProfileStore interface {
	// Create fails with ErrUserExists when the username is taken.
	Create(ctx context.Context, profile domain.Profile) error
	Get(ctx context.Context, username string) (domain.Profile, error)
	// Reset zeroes points and balance.
	Reset(ctx context.Context, username string) error
}
