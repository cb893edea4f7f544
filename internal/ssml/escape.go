// Package ssml builds the speech synthesis markup sent to the Azure speech
// endpoint and escapes free text so it can be embedded in that markup.
package ssml

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidText is returned by Sanitize for text that cannot be represented
// in an XML document.
var ErrInvalidText = errors.New("text cannot be embedded in markup")

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape replaces the five reserved markup characters with their entity
// references. It is not idempotent: escaping twice escapes the ampersands
// of the first pass.
func Escape(text string) string {
	return escaper.Replace(text)
}

// Sanitize validates that text holds only characters XML allows and
// escapes it for use as a text node.
func Sanitize(text string) (string, error) {
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrInvalidText)
	}
	for i, r := range text {
		if !isXMLChar(r) {
			return "", fmt.Errorf("%w: character %U at byte %d", ErrInvalidText, r, i)
		}
	}
	return Escape(text), nil
}

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	switch {
	case r == 0x09 || r == 0x0A || r == 0x0D:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}
