package sentence

import "unicode"

// ScriptClass is the script family a span of text belongs to. It selects
// the terminator rules applied to that span.
type ScriptClass int

const (
	// Other covers digits, punctuation, whitespace and unclassified scripts.
	Other ScriptClass = iota
	// Latin covers Latin, Greek and Cyrillic text.
	Latin
	// CJK covers Han, Hiragana, Katakana and Hangul.
	CJK
	// Arabic covers Arabic script, including Urdu.
	Arabic
	// Indic covers the Brahmic scripts of the Indian subcontinent.
	Indic
)

// String returns the name of the script class.
func (c ScriptClass) String() string {
	switch c {
	case Latin:
		return "latin"
	case CJK:
		return "cjk"
	case Arabic:
		return "arabic"
	case Indic:
		return "indic"
	default:
		return "other"
	}
}

var (
	latinTables = []*unicode.RangeTable{unicode.Latin, unicode.Greek, unicode.Cyrillic}
	cjkTables   = []*unicode.RangeTable{unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul}
	indicTables = []*unicode.RangeTable{
		unicode.Devanagari, unicode.Bengali, unicode.Gurmukhi, unicode.Gujarati,
		unicode.Oriya, unicode.Tamil, unicode.Telugu, unicode.Kannada,
		unicode.Malayalam, unicode.Sinhala,
	}
)

// ClassOf returns the script class of a single rune. Runes that carry no
// script information (digits, punctuation, spaces) are Other.
func ClassOf(r rune) ScriptClass {
	switch {
	case r < 0x80:
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			return Latin
		}
		return Other
	case unicode.IsOneOf(latinTables, r):
		return Latin
	case unicode.IsOneOf(cjkTables, r):
		return CJK
	case unicode.Is(unicode.Arabic, r):
		// Arabic-Indic digits and punctuation share the block; only letters
		// classify a run.
		if unicode.IsLetter(r) {
			return Arabic
		}
		return Other
	case unicode.IsOneOf(indicTables, r):
		if unicode.IsLetter(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) {
			return Indic
		}
		return Other
	default:
		return Other
	}
}

// Classify returns the dominant script class of text by majority vote over
// the first window classified runes. Ties resolve in favor of the class seen
// first. A window of zero or less votes over the whole text.
func Classify(text string, window int) ScriptClass {
	var (
		counts [Indic + 1]int
		order  []ScriptClass
		seen   int
	)
	for _, r := range text {
		c := ClassOf(r)
		if c == Other {
			continue
		}
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
		seen++
		if window > 0 && seen >= window {
			break
		}
	}

	best := Other
	for _, c := range order {
		if counts[c] > counts[best] || best == Other {
			best = c
		}
	}
	return best
}
