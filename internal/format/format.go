// Package format turns chat message text into display markup.
//
// The grammar is deliberately small: a newline is a line break and text
// between a pair of double asterisks is emphasized. Pairs match
// non-greedily, left to right, and may span line breaks. An unpaired
// marker stays literal. Nothing else is interpreted.
package format

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

// Kind identifies a span of markup.
type Kind int

const (
	// Text is a run of characters, emphasized when Span.Strong is set.
	Text Kind = iota
	// Break is a line break.
	Break
)

// Span is one element of formatted markup.
type Span struct {
	Kind   Kind
	Text   string
	Strong bool
}

// Markup is a flat sequence of spans, safe to hand to any renderer.
type Markup []Span

var strongPattern = regexp.MustCompile(`(?s)\*\*(.*?)\*\*`)

// Format parses text into markup. Control characters other than newline and
// tab are dropped so that terminal escape sequences never reach a renderer.
func Format(text string) Markup {
	text = stripControl(text)

	var out Markup
	last := 0
	for _, loc := range strongPattern.FindAllStringSubmatchIndex(text, -1) {
		out = appendLines(out, text[last:loc[0]], false)
		out = appendLines(out, text[loc[2]:loc[3]], true)
		last = loc[1]
	}
	return appendLines(out, text[last:], false)
}

func appendLines(out Markup, s string, strong bool) Markup {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			out = append(out, Span{Kind: Break})
		}
		if line != "" {
			out = append(out, Span{Kind: Text, Text: line, Strong: strong})
		}
	}
	return out
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// HTML renders the markup as an HTML fragment. All text is escaped; the only
// tags emitted are <br> and <strong>.
func (m Markup) HTML() string {
	var sb strings.Builder
	for _, s := range m {
		switch s.Kind {
		case Break:
			sb.WriteString("<br>")
		case Text:
			if s.Strong {
				sb.WriteString("<strong>")
				sb.WriteString(html.EscapeString(s.Text))
				sb.WriteString("</strong>")
			} else {
				sb.WriteString(html.EscapeString(s.Text))
			}
		}
	}
	return sb.String()
}

// Plain renders the markup without emphasis.
func (m Markup) Plain() string {
	var sb strings.Builder
	for _, s := range m {
		if s.Kind == Break {
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}
