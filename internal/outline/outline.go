// Package outline previews how a Markdown document will be split into
// ePub chapters and which headings reach the table of contents.
package outline

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pdiddy/md2epub/internal/metadata"
)

// Heading is one ATX or setext heading in document order.
type Heading struct {
	Level int
	Text  string
}

// Headings parses source as Markdown and returns its headings. Front matter
// is ignored.
func Headings(source []byte) ([]Heading, error) {
	body := metadata.StripFrontMatter(source)
	doc := goldmark.New().Parser().Parse(text.NewReader(body))

	var headings []Heading
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		headings = append(headings, Heading{
			Level: h.Level,
			Text:  strings.TrimSpace(string(h.Text(body))),
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking markdown: %w", err)
	}
	return headings, nil
}

// LeadingContent reports whether source has body content before its first
// heading.
func LeadingContent(source []byte) bool {
	body := metadata.StripFrontMatter(source)
	doc := goldmark.New().Parser().Parse(text.NewReader(body))
	first := doc.FirstChild()
	if first == nil {
		return false
	}
	_, isHeading := first.(*ast.Heading)
	return !isHeading
}

// Chapters counts the chapters the converter will produce: one per heading
// at or above chapterLevel, plus a leading chapter for content before the
// first such heading.
func Chapters(headings []Heading, chapterLevel int, leadingContent bool) int {
	n := 0
	for _, h := range headings {
		if h.Level <= chapterLevel {
			n++
		}
	}
	if leadingContent || n == 0 {
		n++
	}
	return n
}

// Render writes headings up to tocDepth as an indented tree. Headings that
// open a new chapter are marked with "§".
func Render(w io.Writer, headings []Heading, tocDepth, chapterLevel int) {
	for _, h := range headings {
		if h.Level > tocDepth {
			continue
		}
		mark := " "
		if h.Level <= chapterLevel {
			mark = "§"
		}
		fmt.Fprintf(w, "%s %s%s\n", mark, strings.Repeat("  ", h.Level-1), h.Text)
	}
}
