// Package markdown flattens assistant replies into plain terminal lines.
//
// Rendering keeps the reply's own line breaks, drops markup characters and
// tags each line with the kind of block it came from so the caller can
// style it. No ANSI sequences are produced here.
package markdown

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type Kind int

const (
	KindText Kind = iota
	KindHeading
	KindCode
	KindQuote
	KindRule
	KindBlank
)

// Line is one rendered line. Prefix carries list markers and quote bars and
// is repeated as indentation when the caller wraps Text.
type Line struct {
	Kind   Kind
	Prefix string
	Text   string
}

var md = goldmark.New()

// Render parses src as CommonMark and returns its lines.
func Render(src string) []Line {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))

	var out []Line
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		lines := block(c, source)
		if len(lines) == 0 {
			continue
		}
		if len(out) > 0 {
			out = append(out, Line{Kind: KindBlank})
		}
		out = append(out, lines...)
	}
	return out
}

// PlainText returns the rendered lines joined with newlines, prefixes included.
func PlainText(src string) string {
	lines := Render(src)
	parts := make([]string, len(lines))
	for i, l := range lines {
		if l.Kind == KindRule {
			parts[i] = l.Prefix + "───"
			continue
		}
		parts[i] = l.Prefix + l.Text
	}
	return strings.Join(parts, "\n")
}

func block(n ast.Node, src []byte) []Line {
	switch n := n.(type) {
	case *ast.Heading:
		return []Line{{Kind: KindHeading, Text: inline(n, src)}}

	case *ast.Paragraph, *ast.TextBlock:
		var out []Line
		for _, l := range strings.Split(inline(n, src), "\n") {
			out = append(out, Line{Kind: KindText, Text: l})
		}
		return out

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return raw(n, src, KindCode)

	case *ast.HTMLBlock:
		return raw(n, src, KindText)

	case *ast.ThematicBreak:
		return []Line{{Kind: KindRule}}

	case *ast.Blockquote:
		inner := children(n, src)
		for i := range inner {
			inner[i].Prefix = "│ " + inner[i].Prefix
			if inner[i].Kind == KindText {
				inner[i].Kind = KindQuote
			}
		}
		return inner

	case *ast.List:
		num := n.Start
		var out []Line
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "• "
			if n.IsOrdered() {
				marker = fmt.Sprintf("%d. ", num)
				num++
			}
			pad := strings.Repeat(" ", utf8.RuneCountInString(marker))
			inner := children(item, src)
			if len(inner) == 0 {
				inner = []Line{{Kind: KindText}}
			}
			for i := range inner {
				if i == 0 {
					inner[i].Prefix = marker + inner[i].Prefix
				} else {
					inner[i].Prefix = pad + inner[i].Prefix
				}
			}
			out = append(out, inner...)
		}
		return out

	default:
		return children(n, src)
	}
}

func children(n ast.Node, src []byte) []Line {
	var out []Line
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, block(c, src)...)
	}
	return out
}

func raw(n ast.Node, src []byte, kind Kind) []Line {
	segs := n.Lines()
	out := make([]Line, 0, segs.Len())
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		out = append(out, Line{Kind: kind, Text: strings.TrimRight(string(seg.Value(src)), "\r\n")})
	}
	return out
}

func inline(n ast.Node, src []byte) string {
	var b strings.Builder
	writeInline(&b, n, src)
	return b.String()
}

func writeInline(b *strings.Builder, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(src))
			// soft breaks are kept: replies are laid out by the service
			if c.SoftLineBreak() || c.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(c.Value)
		case *ast.AutoLink:
			b.Write(c.URL(src))
		case *ast.Link:
			start := b.Len()
			writeInline(b, c, src)
			label := b.String()[start:]
			if dest := string(c.Destination); dest != "" && dest != label {
				fmt.Fprintf(b, " (%s)", dest)
			}
		case *ast.RawHTML:
			for i := 0; i < c.Segments.Len(); i++ {
				seg := c.Segments.At(i)
				b.Write(seg.Value(src))
			}
		default:
			writeInline(b, c, src)
		}
	}
}
