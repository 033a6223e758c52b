package domain

import "fmt"

type ID string

const (
	TenPercentCut ID = "C1"
	YouTubeDiet   ID = "C2"
	MonkMode      ID = "C3"
	ReelRehab     ID = "C4"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Rule is the per-day predicate of a challenge.
type Rule interface {
	// Metric is the minutes figure the rule limits, read from the day's usage.
	Metric(u Usage) int
	// Limit is the inclusive ceiling for Metric given the user's baseline.
	Limit(baseline int) int
	Passes(u Usage, baseline int) bool
}

// baselineFraction limits total minutes to num/den of the baseline.
type baselineFraction struct {
	num, den int
}

func (r baselineFraction) Metric(u Usage) int { return u.Total }

func (r baselineFraction) Limit(baseline int) int { return baseline * r.num / r.den }

func (r baselineFraction) Passes(u Usage, baseline int) bool {
	return u.Total*r.den <= baseline*r.num
}

// appCeiling limits the minutes of one app.
type appCeiling struct {
	app string
	max int
}

func (r appCeiling) Metric(u Usage) int { return u.App(r.app) }

func (r appCeiling) Limit(int) int { return r.max }

func (r appCeiling) Passes(u Usage, _ int) bool { return u.App(r.app) <= r.max }

// totalCeiling limits total minutes to a fixed value.
type totalCeiling struct {
	max int
}

func (r totalCeiling) Metric(u Usage) int { return u.Total }

func (r totalCeiling) Limit(int) int { return r.max }

func (r totalCeiling) Passes(u Usage, _ int) bool { return u.Total <= r.max }

type Definition struct {
	ID           ID
	Title        string
	Description  string
	Difficulty   Difficulty
	WindowDays   int
	RewardPoints int
	Rule         Rule
}

// Passes reports whether usage qualifies today. A day without logged usage never qualifies.
func (d Definition) Passes(u Usage, baseline int) bool {
	return u.Total > 0 && d.Rule.Passes(u, baseline)
}

func (d Definition) State(count int) State {
	if count >= d.WindowDays {
		return StateClaimed
	}
	return StateInProgress
}

func (d Definition) RewardText() string {
	switch d.WindowDays {
	case 7:
		return fmt.Sprintf("+%d pts/week", d.RewardPoints)
	case 14:
		return fmt.Sprintf("+%d pts/2 weeks", d.RewardPoints)
	case 30:
		return fmt.Sprintf("+%d pts/1 month", d.RewardPoints)
	default:
		return fmt.Sprintf("+%d pts/%d days", d.RewardPoints, d.WindowDays)
	}
}

var registry = []Definition{
	{
		ID:           TenPercentCut,
		Title:        "The 10% Cut",
		Description:  "Reduce screentime by 10% per day for 1 week.",
		Difficulty:   DifficultyEasy,
		WindowDays:   7,
		RewardPoints: 25,
		Rule:         baselineFraction{num: 9, den: 10},
	},
	{
		ID:           YouTubeDiet,
		Title:        "YouTube Diet",
		Description:  "Keep YouTube under 3 hours per day for 2 weeks.",
		Difficulty:   DifficultyMedium,
		WindowDays:   14,
		RewardPoints: 50,
		Rule:         appCeiling{app: AppYouTube, max: 180},
	},
	{
		ID:           MonkMode,
		Title:        "Monk Mode",
		Description:  "Total screentime under 2 hours per day for 1 month.",
		Difficulty:   DifficultyHard,
		WindowDays:   30,
		RewardPoints: 100,
		Rule:         totalCeiling{max: 120},
	},
	{
		ID:           ReelRehab,
		Title:        "Reel Rehab",
		Description:  "Keep Instagram under 3 hours per day for 2 weeks.",
		Difficulty:   DifficultyMedium,
		WindowDays:   14,
		RewardPoints: 50,
		Rule:         appCeiling{app: AppInstagram, max: 180},
	},
}

// Registry returns the fixed challenge catalog in display order.
func Registry() []Definition {
	out := make([]Definition, len(registry))
	copy(out, registry)
	return out
}

func Lookup(id ID) (Definition, bool) {
	for _, d := range registry {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

type State string

const (
	StateInProgress State = "in_progress"
	StateClaimed    State = "claimed"
)

type DayStatus string

const (
	DayComplete DayStatus = "day_complete"
	FailedToday DayStatus = "failed_today"
	OnTrack     DayStatus = "on_track"
)
