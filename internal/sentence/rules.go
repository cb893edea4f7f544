package sentence

import "strings"

// Terminal describes how a terminator rune ends a sentence.
type Terminal struct {
	// NeedsSpace requires whitespace (or end of input) after the terminator
	// and any closing quotes or brackets.
	NeedsSpace bool
	// Ellipsis marks terminators that only end a sentence when the next word
	// does not start in lowercase.
	Ellipsis bool
}

// RuleSet is the terminator table for one script class.
type RuleSet struct {
	Class       ScriptClass
	Terminators map[rune]Terminal
	// Abbreviations enables abbreviation and initial suppression.
	Abbreviations bool
}

// RuleBook holds the rule sets for every script class along with the
// abbreviation tables. It is built once and shared read-only between
// detectors.
type RuleBook struct {
	sets     map[ScriptClass]RuleSet
	native   map[rune]ScriptClass
	abbrevs  map[string]bool
	titles   map[string]bool
	openers  map[rune]rune
	closers  map[rune]bool
	trailers map[rune]bool
}

// NewRuleBook builds a RuleBook from rule sets and abbreviation lists.
// Terminators that appear in exactly one rule set are treated as native to
// that script and always use its rule, whatever run they follow.
// Abbreviations are matched lowercase without the trailing period.
func NewRuleBook(sets []RuleSet, abbreviations, titles []string) RuleBook {
	rb := RuleBook{
		sets:     make(map[ScriptClass]RuleSet, len(sets)),
		native:   make(map[rune]ScriptClass),
		abbrevs:  make(map[string]bool, len(abbreviations)),
		titles:   make(map[string]bool, len(titles)),
		openers:  defaultPairs(),
		closers:  make(map[rune]bool),
		trailers: map[rune]bool{'\'': true, '’': true},
	}

	owners := make(map[rune][]ScriptClass)
	for _, s := range sets {
		rb.sets[s.Class] = s
		for r := range s.Terminators {
			owners[r] = append(owners[r], s.Class)
		}
	}
	for r, classes := range owners {
		if len(classes) == 1 {
			rb.native[r] = classes[0]
		}
	}
	for _, closer := range rb.openers {
		rb.closers[closer] = true
	}
	for _, a := range abbreviations {
		rb.abbrevs[strings.ToLower(a)] = true
	}
	for _, t := range titles {
		rb.titles[strings.ToLower(t)] = true
	}
	return rb
}

// DefaultRules returns the built-in rule book.
func DefaultRules() RuleBook {
	space := Terminal{NeedsSpace: true}
	tight := Terminal{}
	dots := Terminal{NeedsSpace: true, Ellipsis: true}

	return NewRuleBook(
		[]RuleSet{
			{
				Class:         Latin,
				Terminators:   map[rune]Terminal{'.': space, '!': space, '?': space, '…': dots},
				Abbreviations: true,
			},
			{
				Class:         Other,
				Terminators:   map[rune]Terminal{'.': space, '!': space, '?': space, '…': dots},
				Abbreviations: true,
			},
			{
				Class: CJK,
				Terminators: map[rune]Terminal{
					'。': tight, '！': tight, '？': tight, '｡': tight,
					'!': tight, '?': tight, '.': space, '…': dots,
				},
			},
			{
				Class:       Arabic,
				Terminators: map[rune]Terminal{'۔': tight, '؟': tight, '.': space, '!': space, '?': space},
			},
			{
				Class:       Indic,
				Terminators: map[rune]Terminal{'।': tight, '॥': tight, '.': space, '!': space, '?': space},
			},
		},
		defaultAbbreviations(),
		defaultTitleAbbreviations(),
	)
}

// terminal looks up the rule for r given the class of the run it ends.
func (rb RuleBook) terminal(r rune, run ScriptClass) (Terminal, RuleSet, bool) {
	if owner, ok := rb.native[r]; ok {
		set := rb.sets[owner]
		return set.Terminators[r], set, true
	}
	set, ok := rb.sets[run]
	if !ok {
		set, ok = rb.sets[Other]
		if !ok {
			return Terminal{}, RuleSet{}, false
		}
	}
	t, ok := set.Terminators[r]
	return t, set, ok
}

func (rb RuleBook) isTerminator(r rune, run ScriptClass) bool {
	_, _, ok := rb.terminal(r, run)
	return ok
}

func defaultPairs() map[rune]rune {
	return map[rune]rune{
		'(': ')', '[': ']', '{': '}',
		'“': '”', '‘': '’', '«': '»', '‹': '›',
		'（': '）', '【': '】', '「': '」', '『': '』',
		'《': '》', '〈': '〉', '〔': '〕',
	}
}

func defaultAbbreviations() []string {
	return []string{
		"etc", "vs", "e.g", "i.e", "cf", "al", "approx", "dept",
		"inc", "ltd", "co", "corp", "st", "ave", "blvd",
		"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec",
		"a.m", "p.m", "u.s", "u.k",
		"ft", "yd", "mi", "mm", "cm", "km", "oz", "lb", "lbs", "kg",
		"sec", "min", "hr", "hrs",
	}
}

func defaultTitleAbbreviations() []string {
	return []string{
		"mr", "mrs", "ms", "dr", "prof", "sr", "jr", "rev", "gen", "col", "capt", "lt", "sgt", "hon",
		"ph.d", "m.d", "b.a", "m.a", "b.s", "m.s",
	}
}
