package clock

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for persisted days.
const DateLayout = "2006-01-02"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Today returns the calendar date of c.Now() in loc, as midnight UTC.
func Today(c Clock, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	now := c.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date. An empty value resolves to Today.
func ParseDate(value string, c Clock, loc *time.Location) (time.Time, error) {
	d, err := ParseOptional(value)
	if err != nil {
		return time.Time{}, err
	}
	if d.IsZero() {
		return Today(c, loc), nil
	}
	return d, nil
}

func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// ParseOptional parses a YYYY-MM-DD date; an empty value yields the zero time.
func ParseOptional(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", value)
	}
	return d, nil
}
