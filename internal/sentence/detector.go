package sentence

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Default detector tuning.
const (
	DefaultMinLength  = 3
	DefaultMaxLength  = 1000
	DefaultLeadWindow = 64
)

// Sentence is a span of text ended by a detected boundary, or the final
// remainder of the input. Text is trimmed of surrounding whitespace.
type Sentence struct {
	Text  string
	Class ScriptClass
}

// Detector finds sentence boundaries in an accumulation buffer. It holds no
// per-stream state, so one Detector may serve many sessions.
type Detector struct {
	rules      RuleBook
	minLength  int
	maxLength  int
	leadWindow int
}

// Option configures a Detector.
type Option func(*Detector)

// WithRules replaces the default rule book.
func WithRules(rb RuleBook) Option {
	return func(d *Detector) {
		d.rules = rb
	}
}

// WithMinLength sets the minimum whitespace-normalized length, in runes, of
// an emitted sentence. Shorter spans are merged into the span that follows.
func WithMinLength(n int) Option {
	return func(d *Detector) {
		d.minLength = n
	}
}

// WithMaxLength sets the length, in runes, at which a span without a
// boundary is cut at its last whitespace. Zero disables the ceiling.
func WithMaxLength(n int) Option {
	return func(d *Detector) {
		d.maxLength = n
	}
}

// WithLeadWindow sets how many classified runes Classify votes over.
func WithLeadWindow(n int) Option {
	return func(d *Detector) {
		d.leadWindow = n
	}
}

// NewDetector creates a Detector with the default rule book and limits.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		rules:      DefaultRules(),
		minLength:  DefaultMinLength,
		maxLength:  DefaultMaxLength,
		leadWindow: DefaultLeadWindow,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Split returns the complete sentences at the head of buf and the unconsumed
// remainder. Calling Split again on the remainder returns no sentences and
// the remainder unchanged.
func (d *Detector) Split(buf string) ([]Sentence, string) {
	return d.scan(buf, false)
}

// Flush splits buf as the end of the input: the trailing text becomes a
// final sentence even without a terminator.
func (d *Detector) Flush(buf string) []Sentence {
	sentences, _ := d.scan(buf, true)
	return sentences
}

// Classify returns the dominant script of text over the detector's lead window.
func (d *Detector) Classify(text string) ScriptClass {
	return Classify(text, d.leadWindow)
}

type verdict int

const (
	noBoundary verdict = iota
	boundary
	undecided
)

// span tracks the state of the sentence being scanned. It is reset at every
// cut, so a rescan of the remainder starts from the same state.
type span struct {
	class  ScriptClass
	depth  int
	quoted bool
}

func (s *span) track(r rune, rb RuleBook) {
	switch {
	case r == '"':
		s.quoted = !s.quoted
	case rb.openers[r] != 0:
		s.depth++
	case rb.closers[r]:
		if s.depth > 0 {
			s.depth--
		}
	}
}

func (d *Detector) scan(buf string, final bool) ([]Sentence, string) {
	runes := []rune(buf)
	n := len(runes)

	var (
		out   []Sentence
		start int
		st    span
	)

	for i := 0; i < n; {
		r := runes[i]
		if c := ClassOf(r); c != Other {
			st.class = c
		}

		if term, set, ok := d.rules.terminal(r, st.class); ok {
			end := i + 1
			for end < n && d.rules.isTerminator(runes[end], st.class) {
				end++
			}

			v, cut := d.judge(runes, start, i, end, st, term, set, final)
			if v == undecided {
				return out, string(runes[start:])
			}
			if v == boundary {
				if s, ok := d.sentence(runes[start:cut], false); ok {
					out = append(out, s)
					start, i, st = cut, cut, span{}
					continue
				}
			}
			i = end
			continue
		}

		if !isApostrophe(runes, i) {
			st.track(r, d.rules)
		}
		i++

		if d.maxLength > 0 && i-start >= d.maxLength {
			cut := forceCut(runes, start, i)
			if s, ok := d.sentence(runes[start:cut], true); ok {
				out = append(out, s)
			}
			start, i, st = cut, cut, span{}
		}
	}

	if final {
		if s, ok := d.sentence(runes[start:], true); ok {
			out = append(out, s)
		}
		return out, ""
	}
	return out, string(runes[start:])
}

// judge decides whether the terminator run runes[i:end] ends the current
// sentence. On a boundary it returns the cut offset, which includes any
// closing quotes or brackets that follow the run.
func (d *Detector) judge(runes []rune, start, i, end int, st span, term Terminal, set RuleSet, final bool) (verdict, int) {
	n := len(runes)
	r := runes[i]

	if r == '.' && end == i+1 && end < n && i > start &&
		unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[end]) {
		return noBoundary, 0
	}

	j := end
	depth, quoted := st.depth, st.quoted
closers:
	for j < n {
		c := runes[j]
		switch {
		case c == '"' && quoted:
			quoted = false
		case d.rules.closers[c]:
			if depth > 0 {
				depth--
			}
		case d.rules.trailers[c]:
		default:
			break closers
		}
		j++
	}

	if j == n && !final {
		return undecided, 0
	}
	if depth > 0 || quoted {
		return noBoundary, 0
	}
	if j == n {
		return boundary, n
	}
	if term.NeedsSpace && !unicode.IsSpace(runes[j]) {
		return noBoundary, 0
	}

	if set.Abbreviations && r == '.' && end == i+1 {
		word := wordBefore(runes, start, i)
		lower := strings.ToLower(word)
		if d.rules.titles[lower] {
			return noBoundary, 0
		}
		if isInitial(word) {
			return initial(runes, start, i, j, final)
		}
		if d.rules.abbrevs[lower] {
			return nextWord(runes, j, final)
		}
	}

	if term.Ellipsis || isDotRun(runes[i:end]) {
		return nextWord(runes, j, final)
	}
	return boundary, j
}

// nextWord splits before the next word unless it starts in lowercase.
func nextWord(runes []rune, j int, final bool) (verdict, int) {
	k := j
	for k < len(runes) && unicode.IsSpace(runes[k]) {
		k++
	}
	if k == len(runes) {
		if final {
			return boundary, j
		}
		return undecided, 0
	}
	if unicode.IsLower(runes[k]) {
		return noBoundary, 0
	}
	return boundary, j
}

// sentence trims a span into a Sentence. Spans below the minimum length are
// rejected unless force is set.
func (d *Detector) sentence(runes []rune, force bool) (Sentence, bool) {
	text := strings.TrimSpace(string(runes))
	if text == "" {
		return Sentence{}, false
	}
	if !force && normalizedLen(text) < d.minLength {
		return Sentence{}, false
	}
	return Sentence{Text: text, Class: Classify(text, d.leadWindow)}, true
}

func normalizedLen(text string) int {
	return utf8.RuneCountInString(strings.Join(strings.Fields(text), " "))
}

// forceCut picks where to break an overlong span: the last whitespace after
// the first visible rune, or end when there is none.
func forceCut(runes []rune, start, end int) int {
	first := start
	for first < end && unicode.IsSpace(runes[first]) {
		first++
	}
	for j := end - 1; j > first; j-- {
		if unicode.IsSpace(runes[j]) {
			return j
		}
	}
	return end
}

func wordBefore(runes []rune, start, pos int) string {
	k := pos
	for k > start {
		c := runes[k-1]
		if unicode.IsSpace(c) || c == '"' || c == '(' || c == '[' || c == '“' || c == '\'' {
			break
		}
		k--
	}
	return string(runes[k:pos])
}

// isInitial reports whether word is a single capital letter. The pronoun
// "I" is not an initial.
func isInitial(word string) bool {
	r, size := utf8.DecodeRuneInString(word)
	return size == len(word) && unicode.IsUpper(r) && r != 'I'
}

// initial judges the dot after a single capital letter at runes[i-1]. At
// the start of a sentence or inside a run of initials ("J. R. R.") the dot
// never splits. Otherwise the letter may end the sentence ("Plan B."), so
// the next word decides.
func initial(runes []rune, start, i, j int, final bool) (verdict, int) {
	k := i - 1
	for k > start && unicode.IsSpace(runes[k-1]) {
		k--
	}
	if k == start || isInitialDot(wordBefore(runes, start, k)) {
		return noBoundary, 0
	}

	m := j
	for m < len(runes) && unicode.IsSpace(runes[m]) {
		m++
	}
	if m+2 > len(runes) {
		if final {
			return nextWord(runes, j, final)
		}
		return undecided, 0
	}
	if isInitialDot(string(runes[m : m+2])) {
		return noBoundary, 0
	}
	return nextWord(runes, j, final)
}

func isInitialDot(word string) bool {
	name, ok := strings.CutSuffix(word, ".")
	return ok && isInitial(name)
}

// isApostrophe reports whether the right single quote at runes[i] sits
// inside a word ("don’t") rather than closing a quotation.
func isApostrophe(runes []rune, i int) bool {
	return runes[i] == '’' && i > 0 && i+1 < len(runes) &&
		unicode.IsLetter(runes[i-1]) && unicode.IsLetter(runes[i+1])
}

func isDotRun(runes []rune) bool {
	if len(runes) < 2 {
		return false
	}
	for _, r := range runes {
		if r != '.' {
			return false
		}
	}
	return true
}
