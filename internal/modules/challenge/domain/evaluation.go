package domain

import "time"

// Result is the outcome of one challenge in one evaluate call.
type Result struct {
	ChallengeID ID
	// AlreadyRecorded is set when the day was passed by an earlier call.
	AlreadyRecorded bool
	Passed          bool
	// Recorded is set when this call wrote the day's outcome row.
	Recorded    bool
	Progress    int
	WindowDays  int
	State       State
	JustClaimed bool
	Reward      int
}

type Evaluation struct {
	User          string
	Date          time.Time
	Results       []Result
	PointsAwarded int
}

// Claims lists the challenges completed by this evaluation.
func (e Evaluation) Claims() []Result {
	var out []Result
	for _, r := range e.Results {
		if r.JustClaimed {
			out = append(out, r)
		}
	}
	return out
}

// Progress is a challenge as displayed on the board for one date.
type Progress struct {
	Definition Definition
	Count      int
	State      State
	Today      DayStatus
	TodayValue int
	Limit      int
}

// Describe derives the board row of def. today is nil when nothing was logged for the date.
func Describe(def Definition, count int, passedToday bool, today *Usage, baseline int) Progress {
	p := Progress{
		Definition: def,
		Count:      count,
		State:      def.State(count),
		Today:      OnTrack,
		Limit:      def.Rule.Limit(baseline),
	}
	if today != nil {
		p.TodayValue = def.Rule.Metric(*today)
	}
	switch {
	case passedToday:
		p.Today = DayComplete
	case today != nil && today.Total > 0 && !def.Rule.Passes(*today, baseline):
		p.Today = FailedToday
	}
	return p
}

func (p Progress) Percent() float64 {
	if p.Definition.WindowDays <= 0 {
		return 0
	}
	pct := float64(p.Count) / float64(p.Definition.WindowDays) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
