package domain_test

import (
	"testing"

	"detox/internal/modules/usage/domain"
)

func TestMatchDuration(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in      string
		minutes int
		ok      bool
	}{
		{"1h 30m", 90, true},
		{"2h", 120, true},
		{"45m", 45, true},
		{"  3H5M ", 185, true},
		{"1 h 5 m", 65, true},
		{"0m", 0, true},
		{"", 0, false},
		{"   ", 0, false},
		{"YouTube", 0, false},
		{"-5m", 0, false},
		{"45 min", 0, false},
		{"1h 30m left", 0, false},
		{"30m 1h", 0, false},
		{"1.5h", 0, false},
		{"99999999999999999999m", 0, false},
		{"1h\t30m", 90, true},
		{"1h\u00a030m", 90, true},
		{"2h\u202f5m", 125, true},
		{"\u00a045m\u2009", 45, true},
		{"\u0664\u0665m", 45, true},
		{"\u0967h \u0968\u0966m", 80, true},
		{"\uff11h\u3000\uff10m", 60, true},
		{"\u00bdh", 0, false},
	}
	for _, tc := range cases {
		minutes, ok := domain.MatchDuration(tc.in)
		if ok != tc.ok || minutes != tc.minutes {
			t.Fatalf("MatchDuration(%q) = (%d, %t), want (%d, %t)", tc.in, minutes, ok, tc.minutes, tc.ok)
		}
	}
}
