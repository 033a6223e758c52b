package dto

import "time"

// UsageSnapshot is one day's figures as handed over by the usage module.
type UsageSnapshot struct {
	Total int
	Apps  map[string]int
}

type EvaluateInput struct {
	User  string
	Date  time.Time
	Usage UsageSnapshot
	// Baseline overrides the stored baseline when set.
	Baseline *int
}

type ChallengeResult struct {
	ID              string
	Title           string
	Passed          bool
	AlreadyRecorded bool
	Recorded        bool
	Progress        int
	WindowDays      int
	State           string
	JustClaimed     bool
	Reward          int
}

type EvaluationOutput struct {
	User          string
	Date          time.Time
	Results       []ChallengeResult
	PointsAwarded int
}

// Claimed lists the titles of challenges completed by the evaluation.
func (o EvaluationOutput) Claimed() []string {
	var out []string
	for _, r := range o.Results {
		if r.JustClaimed {
			out = append(out, r.Title)
		}
	}
	return out
}

type ChallengeOutput struct {
	ID           string
	Title        string
	Description  string
	Difficulty   string
	WindowDays   int
	RewardPoints int
	RewardText   string
}

type BoardInput struct {
	User string
	Date time.Time
	// Today is nil when no usage was logged for Date.
	Today *UsageSnapshot
}

type BoardRow struct {
	ChallengeOutput
	Count      int
	Percent    float64
	State      string
	Today      string
	TodayValue int
	Limit      int
}

type BoardOutput struct {
	User     string
	Date     time.Time
	Baseline int
	Rows     []BoardRow
}
