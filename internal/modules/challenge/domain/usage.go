package domain

import (
	"fmt"
	"strings"

	apperrors "detox/internal/platform/errors"
)

const (
	AppYouTube   = "youtube"
	AppInstagram = "instagram"
)

// Usage is the day's aggregate as seen by challenge rules.
type Usage struct {
	Total int
	Apps  map[string]int
}

func (u Usage) App(label string) int {
	return u.Apps[strings.ToLower(label)]
}

// Validate rejects figures that would mis-score a challenge.
func (u Usage) Validate() error {
	if u.Total < 0 {
		return fmt.Errorf("%w: total minutes %d is negative", apperrors.ErrValidation, u.Total)
	}
	for label, minutes := range u.Apps {
		if minutes < 0 {
			return fmt.Errorf("%w: %s minutes %d is negative", apperrors.ErrValidation, label, minutes)
		}
		if minutes > u.Total {
			return fmt.Errorf("%w: %s minutes %d exceed total %d", apperrors.ErrValidation, label, minutes, u.Total)
		}
	}
	return nil
}
