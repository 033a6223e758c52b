// Package theme holds the board palette and the styles for challenge rows.
package theme

import "github.com/charmbracelet/lipgloss"

// Catppuccin mocha.
var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")
)

var (
	// Bar is the strip behind the tab row and the status line.
	Bar = lipgloss.NewStyle().Background(Mantle)

	// Row frames one challenge; Claimed frames a challenge whose reward was paid.
	Row = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Base).
		Foreground(Text).
		Padding(0, 1)
	Claimed = Row.BorderForeground(Green)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)

	DayComplete = lipgloss.NewStyle().Foreground(Green).Bold(true)
	FailedToday = lipgloss.NewStyle().Foreground(Red).Bold(true)
	OnTrack     = lipgloss.NewStyle().Foreground(Lavender)

	BarFilled = lipgloss.NewStyle().Foreground(Green)
	BarEmpty  = lipgloss.NewStyle().Foreground(Surface1)
)

// Today picks the style for a row's today status.
func Today(status string) lipgloss.Style {
	switch status {
	case "day_complete":
		return DayComplete
	case "failed_today":
		return FailedToday
	default:
		return OnTrack
	}
}

// RowFor frames a row by its challenge state.
func RowFor(state string) lipgloss.Style {
	if state == "claimed" {
		return Claimed
	}
	return Row
}
