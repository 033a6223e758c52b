package domain

import (
	"strings"
	"unicode/utf8"
)

// minLabelRunes is the shortest trimmed fragment accepted as an app label.
const minLabelRunes = 3

type scanState int

const (
	awaitingLabel scanState = iota
	labelPending
)

// tokenScanner pairs the most recent label with the next non-zero duration.
type tokenScanner struct {
	state   scanState
	pending string
	apps    map[string]int
}

func (s *tokenScanner) feed(token string) {
	text := strings.TrimSpace(token)
	if minutes, ok := MatchDuration(text); ok {
		if s.state == labelPending && minutes > 0 {
			s.apps[strings.ToLower(s.pending)] = minutes
			s.state, s.pending = awaitingLabel, ""
		}
		return
	}
	if utf8.RuneCountInString(text) >= minLabelRunes {
		s.state, s.pending = labelPending, text
	}
}

// Parse turns an ordered OCR token stream into an Aggregate in one pass.
// A label later repeated overwrites its earlier value.
func Parse(tokens []string) Aggregate {
	s := tokenScanner{state: awaitingLabel, apps: map[string]int{}}
	for _, token := range tokens {
		s.feed(token)
	}
	return NewAggregate(s.apps)
}
