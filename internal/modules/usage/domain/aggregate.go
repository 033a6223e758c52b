package domain

import (
	"fmt"
	"sort"
	"strings"

	apperrors "detox/internal/platform/errors"
)

const (
	AppYouTube   = "youtube"
	AppInstagram = "instagram"
)

// Aggregate is one day's recognized usage: a total plus minutes per lower-cased app label.
type Aggregate struct {
	total int
	apps  map[string]int
}

// NewAggregate derives the total as the sum of apps. Labels that differ only
// in case are merged by adding their minutes.
func NewAggregate(apps map[string]int) Aggregate {
	a := Aggregate{apps: make(map[string]int, len(apps))}
	for label, minutes := range apps {
		a.apps[strings.ToLower(label)] += minutes
	}
	for _, minutes := range a.apps {
		a.total += minutes
	}
	return a
}

// FromTotals builds an aggregate from logged figures where total covers apps
// that were not itemized.
func FromTotals(total, youtube, instagram int) Aggregate {
	a := Aggregate{total: total, apps: map[string]int{}}
	if youtube != 0 {
		a.apps[AppYouTube] = youtube
	}
	if instagram != 0 {
		a.apps[AppInstagram] = instagram
	}
	return a
}

func (a Aggregate) Total() int { return a.total }

func (a Aggregate) App(label string) int { return a.apps[strings.ToLower(label)] }

func (a Aggregate) YouTube() int { return a.App(AppYouTube) }

func (a Aggregate) Instagram() int { return a.App(AppInstagram) }

// Apps returns a copy of the per-app minutes.
func (a Aggregate) Apps() map[string]int {
	out := make(map[string]int, len(a.apps))
	for k, v := range a.apps {
		out[k] = v
	}
	return out
}

// Detected is false for a scan that recognized no usage at all.
func (a Aggregate) Detected() bool { return a.total > 0 }

func (a Aggregate) Validate() error {
	if a.total < 0 {
		return fmt.Errorf("%w: total minutes %d is negative", apperrors.ErrValidation, a.total)
	}
	labels := make([]string, 0, len(a.apps))
	for label := range a.apps {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		minutes := a.apps[label]
		if minutes < 0 {
			return fmt.Errorf("%w: %s minutes %d is negative", apperrors.ErrValidation, label, minutes)
		}
		if minutes > a.total {
			return fmt.Errorf("%w: %s minutes %d exceed total %d", apperrors.ErrValidation, label, minutes, a.total)
		}
	}
	return nil
}
