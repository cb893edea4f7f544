package tts

import (
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"
)

// Normalize prepares a detected sentence for synthesis: NFC composition,
// optional markdown removal, and whitespace collapsing.
func Normalize(s string, stripMarkdown bool) string {
	s = norm.NFC.String(s)
	if stripMarkdown {
		s = StripMarkdown(s)
	}
	return collapseSpace(s)
}

// Speakable reports whether s holds at least one letter or digit.
func Speakable(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// StripMarkdown removes markdown syntax, keeping only the words a listener
// should hear. Code blocks and raw HTML are dropped; link and image text
// is kept without the destination.
func StripMarkdown(markdown string) string {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var buf strings.Builder
	walkMarkdown(doc, source, &buf)
	return collapseSpace(buf.String())
}

func walkMarkdown(node ast.Node, source []byte, buf *strings.Builder) {
	switch n := node.(type) {
	case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock, *ast.RawHTML:
		return

	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte(' ')
		}
		return

	case *ast.String:
		buf.Write(n.Value)
		return

	case *ast.AutoLink:
		buf.Write(n.Label(source))
		return

	case *ast.Heading, *ast.Paragraph, *ast.ListItem, *ast.ThematicBreak:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walkMarkdown(c, source, buf)
		}
		buf.WriteByte(' ')
		return
	}

	// Links, images, emphasis and code spans keep their inner text.
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		walkMarkdown(c, source, buf)
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
