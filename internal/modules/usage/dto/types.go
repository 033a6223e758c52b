package dto

import (
	"time"

	challengedto "detox/internal/modules/challenge/dto"
)

type ScanInput struct {
	User       string
	ImagePath  string
	Recognizer string
	// Tokens bypass recognition when set.
	Tokens []string
}

type ScanOutput struct {
	ScanID     string
	User       string
	Recognizer string
	Tokens     int
	Detected   bool
	Total      int
	YouTube    int
	Instagram  int
	Apps       map[string]int
	ExpiresAt  time.Time
}

type ConfirmInput struct {
	User   string
	ScanID string
	// Date defaults to today when zero.
	Date time.Time
}

type LogInput struct {
	User      string
	Date      time.Time
	Total     int
	YouTube   int
	Instagram int
}

type DayOutput struct {
	User      string
	Date      time.Time
	Total     int
	YouTube   int
	Instagram int
	UpdatedAt time.Time
}

type LogOutput struct {
	Day        DayOutput
	Evaluation challengedto.EvaluationOutput
}

type HistoryInput struct {
	User  string
	Limit int
}
