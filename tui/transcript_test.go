package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackwu/routerchat/model"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "hello world", 20, []string{"hello world"}},
		{"word break", "hello big world", 10, []string{"hello big", "world"}},
		{"hard cut", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"keeps blank lines", "a\n\nb", 10, []string{"a", "", "b"}},
		{"wide runes", "héllo wörld", 6, []string{"héllo", "wörld"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapText(tt.text, tt.width))
		})
	}
}

func TestBarLength(t *testing.T) {
	assert.Equal(t, 0, barLength(0, 10, 20))
	assert.Equal(t, 0, barLength(3, 0, 20))
	assert.Equal(t, 20, barLength(10, 10, 20))
	assert.Equal(t, 10, barLength(5, 10, 20))
	assert.Equal(t, 1, barLength(1, 1000, 20))
}

func plainRows(lines []line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.plain
	}
	return out
}

func TestRenderTranscript(t *testing.T) {
	turns := []model.Turn{
		model.UserTurn("Summarize this report"),
		model.AssistantTurn("# Result\n\nAll **good**.", model.Meta{
			ModelUsed:       "small-model",
			CostSaved:       "$0.002",
			RoutingDecision: "cheap",
		}),
		model.FallbackTurn(),
	}

	rows := plainRows(renderTranscript(turns, 80))
	joined := strings.Join(rows, "\n")

	assert.Equal(t, " YOU", rows[0])
	assert.Equal(t, " Summarize this report", rows[1])
	assert.Contains(t, rows, " ROUTER")
	assert.Contains(t, rows, " Result")
	assert.Contains(t, rows, " All good.")
	assert.Contains(t, rows, " ⚙ small-model  [cheap]  $0.002 saved")
	assert.Contains(t, joined, "Error connecting to the backend router")

	// only the successful reply carries a footer
	assert.Equal(t, 1, strings.Count(joined, "⚙"))
}

func TestContentLines_IndicatorNotStored(t *testing.T) {
	h, m := newHarness(t, 100, 40)
	m, _ = submit(t, m, "hello")

	rows := plainRows(m.contentLines())
	require.NotEmpty(t, rows)
	assert.True(t, strings.HasSuffix(rows[len(rows)-1], "routing..."))
	for _, turn := range h.store.Turns() {
		assert.NotContains(t, turn.Content, "routing...")
	}
}
