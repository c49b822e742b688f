package tui

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jackwu/routerchat/launcher"
	"github.com/jackwu/routerchat/router"
)

// LogSource supplies the request logs shown in the dashboard.
type LogSource interface {
	Logs(ctx context.Context) ([]router.LogEntry, error)
}

// logsLoadedMsg is sent when an async logs fetch completes.
type logsLoadedMsg struct {
	seq     int // identifies which fetch this result belongs to
	entries []router.LogEntry
	err     error
}

type dashboardState struct {
	loading bool
	loaded  bool
	seq     int
	summary router.Summary
	err     error
	fetched time.Time
	status  string
}

func fetchLogs(ctx context.Context, src LogSource, seq int) tea.Cmd {
	return func() tea.Msg {
		entries, err := src.Logs(ctx)
		return logsLoadedMsg{seq: seq, entries: entries, err: err}
	}
}

// enterDashboard switches the view. The session is not touched.
func (m Model) enterDashboard() (Model, tea.Cmd) {
	m.view = viewDashboard
	m.input.Blur()
	if m.dash.loaded || m.dash.loading {
		return m, nil
	}
	return m.refreshDashboard()
}

func (m Model) enterConversation() (Model, tea.Cmd) {
	m.view = viewConversation
	m.clampOffset()
	return m, m.input.Focus()
}

func (m Model) refreshDashboard() (Model, tea.Cmd) {
	if m.logs == nil || m.dash.loading {
		return m, nil
	}
	m.dash.seq++
	m.dash.loading = true
	m.dash.status = ""
	return m, fetchLogs(m.ctx, m.logs, m.dash.seq)
}

func (m Model) updateLogsLoaded(msg logsLoadedMsg) Model {
	// discard stale result if a newer refresh was started
	if msg.seq != m.dash.seq {
		return m
	}
	m.dash.loading = false
	m.dash.loaded = true
	m.dash.fetched = m.now()
	if msg.err != nil {
		m.dash.err = msg.err
		m.logger.Warn("dashboard logs fetch failed", "error", msg.err)
		return m
	}
	m.dash.err = nil
	m.dash.summary = router.Summarize(msg.entries)
	return m
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "esc", "f1", "tab", "ctrl+t":
		return m.enterConversation()

	case "r":
		return m.refreshDashboard()

	case "o":
		if err := m.openURL(m.dashboardURL); err != nil {
			m.dash.status = errorStyle.Render("could not open browser: " + err.Error())
			m.logger.Warn("open dashboard failed", "error", err)
		} else {
			m.dash.status = dimStyle.Render("opened: " + launcher.ShellCommand(runtime.GOOS, m.dashboardURL))
		}
	}
	return m, nil
}

func (m Model) viewDashboard() string {
	var b strings.Builder
	width := m.width - 2
	if width < 40 {
		width = 40
	}

	embed, err := launcher.EmbedURL(m.dashboardURL)
	if err != nil {
		embed = m.dashboardURL
	}

	header := dimStyle.Render("🔌 Connected to analytics engine") + "   " +
		linkStyle.Render(m.dashboardURL) + dimStyle.Render("  (o: open in new tab)")
	b.WriteString(" " + header + "\n")
	b.WriteString(" " + dimStyle.Render("frame: ") + embed + "\n\n")

	var body string
	switch {
	case m.logs == nil:
		body = dimStyle.Render("No log source configured.")
	case m.dash.loading && !m.dash.loaded:
		body = "Loading..."
	case m.dash.err != nil:
		body = errorStyle.Render("Error connecting to the request log: "+m.dash.err.Error()) +
			"\n" + dimStyle.Render("r: retry")
	case m.dash.summary.Requests == 0:
		body = dimStyle.Render("No requests logged yet.")
	default:
		body = m.renderSummary(width)
	}
	b.WriteString(panelStyle.Width(width).Render(body))
	b.WriteString("\n")

	if m.dash.status != "" {
		b.WriteString(" " + m.dash.status + "\n")
	}
	return b.String()
}

func (m Model) renderSummary(width int) string {
	s := m.dash.summary

	saved := savedBoxStyle.Render(fmt.Sprintf("Total Money Saved\n$%.6f", s.TotalSaved))

	last := "-"
	if !s.LastRequest.IsZero() {
		last = s.LastRequest.Format("15:04:05")
	}
	stats := fmt.Sprintf("Total Requests Logged  %d\nModels Used            %d\nLast Request           %s",
		s.Requests, s.DistinctModels(), last)

	top := lipgloss.JoinHorizontal(lipgloss.Top, saved, "   ", stats)

	var dist strings.Builder
	dist.WriteString(headingStyle.Render("Model Distribution") + "\n")
	nameWidth := 0
	for _, mc := range s.Models {
		if n := len([]rune(mc.Model)); n > nameWidth {
			nameWidth = n
		}
	}
	barMax := width - nameWidth - 12
	if barMax < 5 {
		barMax = 5
	}
	peak := 0
	if len(s.Models) > 0 {
		peak = s.Models[0].Count
	}
	for _, mc := range s.Models {
		n := barLength(mc.Count, peak, barMax)
		dist.WriteString(fmt.Sprintf("%s %s %d\n", pad(mc.Model, nameWidth), barStyle.Render(strings.Repeat("█", n)), mc.Count))
	}

	refreshed := ""
	if !m.dash.fetched.IsZero() {
		refreshed = dimStyle.Render("updated " + m.dash.fetched.Format("15:04:05") + "  r: refresh")
	}
	return top + "\n\n" + strings.TrimRight(dist.String(), "\n") + "\n\n" + refreshed
}

// barLength scales count against peak into at most width cells, never
// dropping a non-zero count to nothing.
func barLength(count, peak, width int) int {
	if peak <= 0 || count <= 0 {
		return 0
	}
	n := count * width / peak
	if n < 1 {
		n = 1
	}
	return n
}
