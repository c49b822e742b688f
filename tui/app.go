package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jackwu/routerchat/chat"
	"github.com/jackwu/routerchat/launcher"
	"github.com/jackwu/routerchat/session"
)

type view int

const (
	viewConversation view = iota
	viewDashboard
)

type mode int

const (
	modeChat mode = iota
	modeSearch
)

// replyMsg carries the outcome of a dispatched request back to the event loop.
type replyMsg struct {
	req chat.Request
	res chat.Result
}

// Options wires the model to its collaborators.
type Options struct {
	Context      context.Context // cancelled on teardown; abandons an in-flight call
	Store        *session.Store
	Orchestrator *chat.Orchestrator
	Logs         LogSource // optional
	DashboardURL string
	OpenURL      func(string) error // defaults to launcher.Open
	Logger       *slog.Logger
	Now          func() time.Time
}

type Model struct {
	ctx          context.Context
	store        *session.Store
	orch         *chat.Orchestrator
	sync         *scrollSync
	logs         LogSource
	dashboardURL string
	openURL      func(string) error
	logger       *slog.Logger
	now          func() time.Time

	view        view
	mode        mode
	input       textinput.Model
	searchInput textinput.Model
	spinner     spinner.Model
	width       int
	height      int

	lines     []line // rendered transcript
	offset    int    // scroll offset
	scrolling bool
	scrollSeq int

	searchQuery string
	matches     []int
	matchIdx    int

	dash     dashboardState
	quitting bool
}

func NewModel(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.OpenURL == nil {
		opts.OpenURL = launcher.Open
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	in := textinput.New()
	in.Placeholder = "Type your prompt here... (Enter to send)"
	in.CharLimit = 4000
	in.Prompt = ""
	in.Focus()

	si := textinput.New()
	si.Placeholder = "search..."
	si.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = dimStyle

	m := Model{
		ctx:          opts.Context,
		store:        opts.Store,
		orch:         opts.Orchestrator,
		sync:         newScrollSync(),
		logs:         opts.Logs,
		dashboardURL: opts.DashboardURL,
		openURL:      opts.OpenURL,
		logger:       opts.Logger,
		now:          opts.Now,
		input:        in,
		searchInput:  si,
		spinner:      sp,
		width:        100,
		height:       30,
	}
	m.store.Observe(m.sync.observe)
	m.rerender()
	m.offset = m.maxOffset()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.sync.wait())
}

func (m *Model) rerender() {
	m.lines = renderTranscript(m.store.Turns(), m.width)
	if m.searchQuery != "" {
		// keep the current match index when the rows shift
		idx := m.matchIdx
		offset := m.offset
		m.computeSearchMatches()
		if idx < len(m.matches) {
			m.matchIdx = idx
		}
		m.offset = offset
	}
	m.clampOffset()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, msg.Width-4)
		atBottom := m.offset >= m.maxOffset()
		m.rerender()
		if atBottom {
			m.offset = m.maxOffset()
		}
		return m, nil

	case turnsChangedMsg:
		m.rerender()
		return m, tea.Batch(m.sync.wait(), m.scrollToNewest())

	case scrollFrameMsg:
		return m, m.stepScroll(msg)

	case replyMsg:
		m.orch.Complete(msg.req, msg.res)
		m.clampOffset()
		return m, nil

	case logsLoadedMsg:
		return m.updateLogsLoaded(msg), nil

	case spinner.TickMsg:
		if !m.orch.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.view == viewDashboard {
			return m.updateDashboard(msg)
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		default:
			return m.updateChat(msg)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.input.Value() == "" {
			m.quitting = true
			return m, tea.Quit
		}
		m.input.Reset()
		return m, nil

	case "enter":
		return m.submit()

	case "tab", "ctrl+t", "f2":
		return m.enterDashboard()

	case "up":
		m.scrollUp(1)
		return m, nil
	case "down":
		m.scrollDown(1)
		return m, nil
	case "pgup":
		m.scrollUp(m.transcriptRows())
		return m, nil
	case "pgdown":
		m.scrollDown(m.transcriptRows())
		return m, nil
	case "ctrl+u":
		m.scrollUp(m.transcriptRows() / 2)
		return m, nil
	case "ctrl+d":
		m.scrollDown(m.transcriptRows() / 2)
		return m, nil
	case "ctrl+home":
		m.stopScroll()
		m.offset = 0
		return m, nil
	case "ctrl+end":
		m.stopScroll()
		m.offset = m.maxOffset()
		return m, nil

	case "ctrl+f":
		m.searchInput.SetValue("")
		m.input.Blur()
		m.mode = modeSearch
		return m, m.searchInput.Focus()
	case "ctrl+n":
		m.nextMatch()
		return m, nil
	case "ctrl+p":
		m.prevMatch()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the prompt to the orchestrator. A rejected prompt (blank, or
// a request already in flight) leaves the input untouched.
func (m Model) submit() (tea.Model, tea.Cmd) {
	req, ok := m.orch.Begin(m.input.Value())
	if !ok {
		return m, nil
	}
	m.input.Reset()
	return m, tea.Batch(m.dispatch(req), m.spinner.Tick)
}

func (m Model) dispatch(req chat.Request) tea.Cmd {
	ctx, orch := m.ctx, m.orch
	return func() tea.Msg {
		return replyMsg{req: req, res: orch.Dispatch(ctx, req)}
	}
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchInput.Blur()
		m.searchQuery = ""
		m.matches = nil
		m.mode = modeChat
		return m, m.input.Focus()
	case "enter":
		m.searchInput.Blur()
		m.searchQuery = m.searchInput.Value()
		m.computeSearchMatches()
		m.mode = modeChat
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderTitle() + "\n")

	if m.view == viewDashboard {
		body := m.viewDashboard()
		b.WriteString(body)
		// pad so the help bar stays on the last row
		for i := strings.Count(body, "\n"); i < m.height-2; i++ {
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("  Esc/Tab: chat  r: refresh  o: open in browser  q: quit"))
		return b.String()
	}

	b.WriteString(m.viewTranscript())

	// bottom bars
	switch m.mode {
	case modeSearch:
		b.WriteString(statusBarStyle.Render("Search: ") + m.searchInput.View() + "\n")
	default:
		b.WriteString(promptStyle.Render("> ") + m.input.View() + "\n")
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderTitle() string {
	title := titleStyle.Render("Cost-Control Smart Router")

	chatTab, dashTab := activeTabStyle, tabStyle
	if m.view == viewDashboard {
		chatTab, dashTab = tabStyle, activeTabStyle
	}
	tabs := chatTab.Render("Chat Playground") + " " + dashTab.Render("Live Analytics")

	info := dimStyle.Render(fmt.Sprintf("  %d turns", m.store.Len()))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", tabs, info)
}

func (m Model) renderHelp() string {
	help := "  Enter: send  Tab: analytics  ↑↓/PgUp/PgDn: scroll  Ctrl+F: search  Esc: quit"
	if m.searchQuery != "" {
		help = "  Ctrl+N/Ctrl+P: next/prev match  Ctrl+F: new search  Esc: quit"
	}
	return helpStyle.Render(help) + m.matchInfo()
}
