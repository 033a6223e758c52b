package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	challengedto "detox/internal/modules/challenge/dto"
	profiledto "detox/internal/modules/profile/dto"
	"detox/internal/platform/clock"
	"detox/internal/ui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type boardPort interface {
	Board(ctx context.Context, user string, date time.Time) (challengedto.BoardOutput, error)
}

type profilePort interface {
	Show(ctx context.Context, username string) (profiledto.ProfileOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabChallenges tabID = iota
	tabStats
	tabCount
)

var tabLabels = [tabCount]string{"Challenges", "Stats"}

// ─── async messages ───────────────────────────────────────────────────────────

type boardLoadedMsg struct {
	board challengedto.BoardOutput
	err   error
}

type profileLoadedMsg struct {
	profile profiledto.ProfileOutput
	err     error
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is a read-only board for one user. The date starts at the user's
// today and moves one day per arrow key.
type Model struct {
	user     string
	board    boardPort
	profiles profilePort

	date      time.Time
	current   challengedto.BoardOutput
	profile   profiledto.ProfileOutput
	loaded    bool
	activeTab tabID
	showHelp  bool
	status    string
	width     int
	height    int
}

func NewModel(user string, date time.Time, board boardPort, profiles profilePort) Model {
	return Model{
		user:     user,
		board:    board,
		profiles: profiles,
		date:     date,
		status:   "loading",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadBoardCmd(), m.loadProfileCmd())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case boardLoadedMsg:
		if msg.err != nil {
			m.status = "board: " + msg.err.Error()
			return m, nil
		}
		m.current = msg.board
		m.date = msg.board.Date
		m.loaded = true
		m.status = "board for " + clock.FormatDate(m.date)

	case profileLoadedMsg:
		if msg.err != nil {
			m.status = "profile: " + msg.err.Error()
			return m, nil
		}
		m.profile = msg.profile

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = true
		case "r":
			m.status = "refreshing"
			return m, tea.Batch(m.loadBoardCmd(), m.loadProfileCmd())
		case "left", "h":
			if !m.date.IsZero() {
				m.date = m.date.AddDate(0, 0, -1)
				return m, m.loadBoardCmd()
			}
		case "right", "l":
			if !m.date.IsZero() {
				m.date = m.date.AddDate(0, 0, 1)
				return m, m.loadBoardCmd()
			}
		case "t":
			m.date = time.Time{}
			return m, m.loadBoardCmd()
		}
	}
	return m, nil
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()

	var content string
	switch {
	case m.showHelp:
		content = renderHelp()
	case !m.loaded:
		content = theme.Muted.Render("no board loaded yet")
	case m.activeTab == tabStats:
		content = m.renderStats()
	default:
		content = m.renderBoard()
	}
	if m.width > 0 {
		content = lipgloss.NewStyle().Width(m.width).Render(content)
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "detox  " + m.user + "  " + strings.Join(parts, sep)
	return theme.Bar.Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("←/→:day  t:today  r:refresh  ?:help  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + theme.Bar.Width(m.width).Render(bar)
}

func (m Model) renderBoard() string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Challenges on " + clock.FormatDate(m.current.Date)))
	b.WriteString(theme.Muted.Render(fmt.Sprintf("  baseline %dm", m.current.Baseline)))
	b.WriteString("\n\n")
	for _, row := range m.current.Rows {
		b.WriteString(renderRow(row))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRow(row challengedto.BoardRow) string {
	pane := theme.RowFor(row.State)
	head := theme.Title.Render(row.Title) + theme.Muted.Render("  "+row.Difficulty+"  "+row.RewardText)
	progress := fmt.Sprintf("%s %d/%d days (%.0f%%)", progressBar(row.Percent, 20), row.Count, row.WindowDays, row.Percent)
	status := theme.Today(row.Today).Render(todayLabel(row))
	return pane.Render(head + "\n" + theme.Muted.Render(row.Description) + "\n" + progress + "\n" + status)
}

func todayLabel(row challengedto.BoardRow) string {
	switch row.Today {
	case "day_complete":
		return fmt.Sprintf("day complete: %dm of %dm", row.TodayValue, row.Limit)
	case "failed_today":
		return fmt.Sprintf("failed today: %dm against a %dm limit", row.TodayValue, row.Limit)
	default:
		return fmt.Sprintf("on track: %dm of %dm", row.TodayValue, row.Limit)
	}
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return theme.BarFilled.Render(strings.Repeat("█", filled)) + theme.BarEmpty.Render(strings.Repeat("░", width-filled))
}

func (m Model) renderStats() string {
	p := m.profile
	lines := []string{
		theme.Title.Render("Stats for " + m.user),
		"",
		fmt.Sprintf("points          %d", p.Points),
		fmt.Sprintf("redeemable      $%.2f", p.RedeemableValue),
		fmt.Sprintf("balance         $%.2f", p.Balance),
		fmt.Sprintf("baseline        %dm", p.BaselineMinutes),
		fmt.Sprintf("target          %dm", p.TargetMinutes),
	}
	claimed := 0
	for _, row := range m.current.Rows {
		if row.State == "claimed" {
			claimed++
		}
	}
	lines = append(lines, fmt.Sprintf("claimed         %d/%d", claimed, len(m.current.Rows)))
	return theme.Row.Render(strings.Join(lines, "\n"))
}

func renderHelp() string {
	rows := [][2]string{
		{"tab / shift+tab", "switch tab"},
		{"← / →", "previous / next day"},
		{"t", "jump to today"},
		{"r", "reload board and stats"},
		{"?", "toggle help"},
		{"q", "quit"},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(theme.Hot.Render(fmt.Sprintf("%-16s", r[0])))
		b.WriteString(theme.Muted.Render(r[1]))
		b.WriteString("\n")
	}
	return b.String()
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) loadBoardCmd() tea.Cmd {
	user, date := m.user, m.date
	return func() tea.Msg {
		out, err := m.board.Board(context.Background(), user, date)
		return boardLoadedMsg{board: out, err: err}
	}
}

func (m Model) loadProfileCmd() tea.Cmd {
	user := m.user
	return func() tea.Msg {
		if m.profiles == nil {
			return profileLoadedMsg{err: fmt.Errorf("profile adapter not configured")}
		}
		out, err := m.profiles.Show(context.Background(), user)
		return profileLoadedMsg{profile: out, err: err}
	}
}
