package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Paragraphs(t *testing.T) {
	lines := Render("Hello **world**.\nSecond line with `code`.\n\nNext paragraph.")

	require.Len(t, lines, 4)
	assert.Equal(t, Line{Kind: KindText, Text: "Hello world."}, lines[0])
	assert.Equal(t, Line{Kind: KindText, Text: "Second line with code."}, lines[1])
	assert.Equal(t, KindBlank, lines[2].Kind)
	assert.Equal(t, "Next paragraph.", lines[3].Text)
}

func TestRender_Heading(t *testing.T) {
	lines := Render("## Summary\n\nBody")
	require.Len(t, lines, 3)
	assert.Equal(t, Line{Kind: KindHeading, Text: "Summary"}, lines[0])
}

func TestRender_Lists(t *testing.T) {
	lines := Render("- one\n- two\n\n3. three\n4. four")

	want := []Line{
		{Kind: KindText, Prefix: "• ", Text: "one"},
		{Kind: KindText, Prefix: "• ", Text: "two"},
		{Kind: KindBlank},
		{Kind: KindText, Prefix: "3. ", Text: "three"},
		{Kind: KindText, Prefix: "4. ", Text: "four"},
	}
	assert.Equal(t, want, lines)
}

func TestRender_NestedList(t *testing.T) {
	lines := Render("- outer\n  - inner")
	require.Len(t, lines, 2)
	assert.Equal(t, "• ", lines[0].Prefix)
	assert.Equal(t, "  • ", lines[1].Prefix)
	assert.Equal(t, "inner", lines[1].Text)
}

func TestRender_CodeBlock(t *testing.T) {
	lines := Render("```go\nfunc main() {}\n  x := 1\n```")
	want := []Line{
		{Kind: KindCode, Text: "func main() {}"},
		{Kind: KindCode, Text: "  x := 1"},
	}
	assert.Equal(t, want, lines)
}

func TestRender_QuoteAndRule(t *testing.T) {
	lines := Render("> careful\n\n---")
	require.Len(t, lines, 3)
	assert.Equal(t, Line{Kind: KindQuote, Prefix: "│ ", Text: "careful"}, lines[0])
	assert.Equal(t, KindRule, lines[2].Kind)
}

func TestRender_Links(t *testing.T) {
	lines := Render("See [docs](https://example.com) or <https://example.org>.")
	require.Len(t, lines, 1)
	assert.Equal(t, "See docs (https://example.com) or https://example.org.", lines[0].Text)
}

func TestRender_Empty(t *testing.T) {
	assert.Empty(t, Render(""))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "• a\n• b", PlainText("* a\n* b"))
	assert.Equal(t, "x\n\n───", PlainText("x\n\n***"))
}
