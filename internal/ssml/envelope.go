package ssml

import (
	"strings"
)

// Namespace of the Microsoft speech extensions used by express-as.
const MSTTSNamespace = "https://www.w3.org/2001/mstts"

// Voice carries the developer-supplied attributes of an envelope. Values are
// attribute-escaped when rendered; they are never part of the text node.
type Voice struct {
	Language    string
	Name        string
	Rate        string
	Pitch       string
	Volume      string
	Style       string
	StyleDegree string
	Role        string
}

// Envelope wraps already escaped text in a speak document for voice. The
// express-as element is emitted only when a style is set.
func Envelope(voice Voice, escaped string) string {
	var b strings.Builder
	b.Grow(len(escaped) + 256)

	b.WriteString("<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xmlns:mstts='")
	b.WriteString(MSTTSNamespace)
	b.WriteString("'")
	attr(&b, "xml:lang", voice.Language)
	b.WriteString(">")

	b.WriteString("<voice")
	attr(&b, "xml:lang", voice.Language)
	attr(&b, "name", voice.Name)
	b.WriteString(">")

	if voice.Style != "" {
		b.WriteString("<mstts:express-as")
		attr(&b, "style", voice.Style)
		if voice.Role != "" {
			attr(&b, "role", voice.Role)
		}
		if voice.StyleDegree != "" {
			attr(&b, "styledegree", voice.StyleDegree)
		}
		b.WriteString(">")
	}

	b.WriteString("<prosody")
	attr(&b, "rate", orDefault(voice.Rate, DefaultRate))
	attr(&b, "pitch", orDefault(voice.Pitch, DefaultPitch))
	attr(&b, "volume", orDefault(voice.Volume, DefaultVolume))
	b.WriteString(">")
	b.WriteString(escaped)
	b.WriteString("</prosody>")

	if voice.Style != "" {
		b.WriteString("</mstts:express-as>")
	}
	b.WriteString("</voice></speak>")
	return b.String()
}

func attr(b *strings.Builder, name, value string) {
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString("='")
	b.WriteString(Escape(value))
	b.WriteString("'")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
