package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "detox/internal/platform/errors"
	"detox/internal/platform/username"
)

const (
	DefaultBaselineMinutes = 300
	// PointsPerRupee converts points into the redeemable wallet value.
	PointsPerRupee   = 100
	maxUsernameRunes = 64
)

type Profile struct {
	Username        string
	Points          int
	Balance         float64
	BaselineMinutes int
	CreatedAt       time.Time
}

// TargetMinutes is the daily ceiling of a 10% reduction from the baseline.
func (p Profile) TargetMinutes() int {
	return p.BaselineMinutes * 9 / 10
}

func (p Profile) RedeemableValue() float64 {
	return float64(p.Points) / PointsPerRupee
}

func NormalizeUsername(raw string) (string, error) {
	name := username.Canonical(raw)
	if name == "" {
		return "", fmt.Errorf("%w: username is required", apperrors.ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxUsernameRunes {
		return "", fmt.Errorf("%w: username longer than %d characters", apperrors.ErrInvalidInput, maxUsernameRunes)
	}
	if strings.ContainsAny(name, "/:\n\t ") {
		return "", fmt.Errorf("%w: username %q contains spaces or separators", apperrors.ErrInvalidInput, name)
	}
	return name, nil
}

func ValidateBaseline(minutes int) error {
	if minutes <= 0 || minutes > 24*60 {
		return fmt.Errorf("%w: baseline must be between 1 and 1440 minutes, got %d", apperrors.ErrInvalidInput, minutes)
	}
	return nil
}
