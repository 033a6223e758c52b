package domain

import "time"

// DayLog is the stored usage of one user for one calendar date.
type DayLog struct {
	User      string
	Date      time.Time
	Total     int
	YouTube   int
	Instagram int
	UpdatedAt time.Time
}

func (d DayLog) Aggregate() Aggregate {
	return FromTotals(d.Total, d.YouTube, d.Instagram)
}

// Scan is a parsed screenshot waiting for the user to confirm it.
type Scan struct {
	ID         string
	User       string
	Recognizer string
	Tokens     int
	Usage      Aggregate
	CreatedAt  time.Time
}
