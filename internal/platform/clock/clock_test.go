package clock_test

import (
	"testing"
	"time"

	"detox/internal/platform/clock"
)

type fixedClock struct{ at time.Time }

func (f fixedClock) Now() time.Time { return f.at }

func TestTodayUsesLocationCalendarDate(t *testing.T) {
	t.Parallel()
	clk := fixedClock{at: time.Date(2026, 3, 1, 22, 30, 0, 0, time.UTC)}
	kolkata := time.FixedZone("IST", 5*60*60+30*60)

	if got := clock.FormatDate(clock.Today(clk, time.UTC)); got != "2026-03-01" {
		t.Fatalf("expected utc date 2026-03-01, got %s", got)
	}
	if got := clock.FormatDate(clock.Today(clk, kolkata)); got != "2026-03-02" {
		t.Fatalf("expected local date 2026-03-02, got %s", got)
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()
	clk := fixedClock{at: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}

	d, err := clock.ParseDate("", clk, nil)
	if err != nil {
		t.Fatalf("empty date should default to today: %v", err)
	}
	if clock.FormatDate(d) != "2026-03-01" {
		t.Fatalf("unexpected default date %s", clock.FormatDate(d))
	}
	d, err = clock.ParseDate(" 2026-02-14 ", clk, nil)
	if err != nil {
		t.Fatalf("parse explicit date: %v", err)
	}
	if clock.FormatDate(d) != "2026-02-14" {
		t.Fatalf("unexpected parsed date %s", clock.FormatDate(d))
	}
	if _, err := clock.ParseDate("14/02/2026", clk, nil); err == nil {
		t.Fatalf("expected invalid date error")
	}
}

func TestParseOptionalLeavesEmptyZero(t *testing.T) {
	t.Parallel()
	d, err := clock.ParseOptional("  ")
	if err != nil || !d.IsZero() {
		t.Fatalf("expected zero date, got %v (%v)", d, err)
	}
	if _, err := clock.ParseOptional("2026-13-01"); err == nil {
		t.Fatalf("expected invalid month error")
	}
}
