package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackwu/routerchat/markdown"
	"github.com/jackwu/routerchat/model"
)

// line is one transcript row. plain is kept for searching.
type line struct {
	styled string
	plain  string
}

func plainLine(s string) line {
	return line{styled: s, plain: s}
}

// renderTranscript renders all turns into rows for the conversation pane.
func renderTranscript(turns []model.Turn, width int) []line {
	var lines []line
	maxWidth := width - 2 // small margin
	if maxWidth < 40 {
		maxWidth = 40
	}

	for _, t := range turns {
		// role header
		switch t.Role {
		case model.RoleUser:
			lines = append(lines, line{styled: userRoleStyle.Render(pad(" YOU", maxWidth)), plain: " YOU"})
		default:
			lines = append(lines, line{styled: assistantRoleStyle.Render(pad(" ROUTER", maxWidth)), plain: " ROUTER"})
		}

		if t.Role == model.RoleUser {
			for _, wl := range wrapText(t.Content, maxWidth-2) {
				lines = append(lines, line{styled: " " + wl, plain: " " + wl})
			}
		} else {
			lines = append(lines, renderAssistant(t.Content, maxWidth-2)...)
		}

		if t.Meta != nil {
			lines = append(lines, renderMeta(*t.Meta))
		}

		// blank separator
		lines = append(lines, plainLine(""))
	}

	return lines
}

func renderAssistant(content string, width int) []line {
	var lines []line
	for _, ml := range markdown.Render(content) {
		style := assistantTextStyle
		switch ml.Kind {
		case markdown.KindHeading:
			style = headingStyle
		case markdown.KindCode:
			style = codeStyle
		case markdown.KindQuote:
			style = quoteStyle
		case markdown.KindBlank:
			lines = append(lines, plainLine(""))
			continue
		case markdown.KindRule:
			rule := strings.Repeat("─", min(width, 40))
			lines = append(lines, line{styled: " " + dimStyle.Render(rule), plain: " " + rule})
			continue
		}

		indent := strings.Repeat(" ", utf8.RuneCountInString(ml.Prefix))
		textWidth := width - utf8.RuneCountInString(ml.Prefix)
		if textWidth < 10 {
			textWidth = 10
		}
		for i, wl := range wrapText(ml.Text, textWidth) {
			prefix := indent
			if i == 0 {
				prefix = ml.Prefix
			}
			lines = append(lines, line{
				styled: " " + dimStyle.Render(prefix) + style.Render(wl),
				plain:  " " + prefix + wl,
			})
		}
	}
	return lines
}

func renderMeta(meta model.Meta) line {
	plain := fmt.Sprintf(" ⚙ %s  [%s]  %s saved", meta.ModelUsed, meta.RoutingDecision, meta.CostSaved)
	styled := " " + metaStyle.Render("⚙ "+meta.ModelUsed) + "  " +
		decisionStyle.Render(meta.RoutingDecision) + "  " +
		savingsStyle.Render(meta.CostSaved+" saved")
	return line{styled: styled, plain: plain}
}

// wrapText splits text into lines that fit within maxWidth.
func wrapText(text string, maxWidth int) []string {
	if maxWidth < 1 {
		maxWidth = 1
	}
	var result []string
	for _, l := range strings.Split(text, "\n") {
		if l == "" {
			result = append(result, "")
			continue
		}
		runes := []rune(l)
		for len(runes) > maxWidth {
			cut := breakAt(runes, maxWidth)
			result = append(result, strings.TrimRight(string(runes[:cut]), " "))
			runes = runes[cut:]
			for len(runes) > 0 && runes[0] == ' ' {
				runes = runes[1:]
			}
		}
		if len(runes) > 0 {
			result = append(result, string(runes))
		}
	}
	return result
}

// breakAt prefers the last space within maxWidth, falling back to a hard cut.
func breakAt(runes []rune, maxWidth int) int {
	for i := maxWidth; i > maxWidth/2; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return maxWidth
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}

// contentLines is the transcript plus the in-progress indicator while a
// request is in flight. The indicator is never part of the session.
func (m Model) contentLines() []line {
	if !m.orch.Busy() {
		return m.lines
	}
	out := make([]line, len(m.lines), len(m.lines)+1)
	copy(out, m.lines)
	indicator := " " + m.spinner.View() + " routing..."
	return append(out, line{styled: dimStyle.Render(indicator), plain: indicator})
}

func (m Model) transcriptRows() int {
	// title bar + input line + help bar
	rows := m.height - 3
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m Model) maxOffset() int {
	maxOffset := len(m.contentLines()) - m.transcriptRows()
	if maxOffset < 0 {
		maxOffset = 0
	}
	return maxOffset
}

func (m *Model) scrollUp(n int) {
	m.stopScroll()
	m.offset -= n
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) scrollDown(n int) {
	m.stopScroll()
	m.offset += n
	m.clampOffset()
}

func (m *Model) clampOffset() {
	if limit := m.maxOffset(); m.offset > limit {
		m.offset = limit
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model) viewTranscript() string {
	var b strings.Builder
	content := m.contentLines()
	visible := m.transcriptRows()

	offset := m.offset
	if limit := len(content) - visible; offset > limit {
		offset = limit
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + visible
	if end > len(content) {
		end = len(content)
	}

	for i := offset; i < end; i++ {
		row := content[i].styled
		if m.searchQuery != "" && m.isCurrentMatch(i) {
			row = searchHighlightStyle.Render(content[i].plain)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	// pad remaining rows
	for i := end - offset; i < visible; i++ {
		b.WriteString("\n")
	}
	return b.String()
}

// Search match support

func (m *Model) computeSearchMatches() {
	m.matches = nil
	m.matchIdx = 0
	query := strings.ToLower(m.searchQuery)
	if query == "" {
		return
	}
	for i, l := range m.lines {
		if strings.Contains(strings.ToLower(l.plain), query) {
			m.matches = append(m.matches, i)
		}
	}
	// jump to first match
	if len(m.matches) > 0 {
		m.scrollToMatch(0)
	}
}

func (m *Model) nextMatch() {
	if len(m.matches) == 0 {
		return
	}
	m.matchIdx = (m.matchIdx + 1) % len(m.matches)
	m.scrollToMatch(m.matchIdx)
}

func (m *Model) prevMatch() {
	if len(m.matches) == 0 {
		return
	}
	m.matchIdx--
	if m.matchIdx < 0 {
		m.matchIdx = len(m.matches) - 1
	}
	m.scrollToMatch(m.matchIdx)
}

func (m *Model) scrollToMatch(idx int) {
	m.stopScroll()
	// center the match in the viewport
	m.offset = m.matches[idx] - m.transcriptRows()/2
	m.clampOffset()
}

func (m Model) isCurrentMatch(lineIdx int) bool {
	return len(m.matches) > 0 && m.matches[m.matchIdx] == lineIdx
}

func (m Model) matchInfo() string {
	switch {
	case m.searchQuery == "":
		return ""
	case len(m.matches) == 0:
		return dimStyle.Render("  No matches")
	default:
		return dimStyle.Render(fmt.Sprintf("  Match %d/%d", m.matchIdx+1, len(m.matches)))
	}
}
