// Package sentence implements incremental sentence boundary detection for
// text that arrives in fragments. A Detector splits an accumulation buffer
// into complete sentences and an unconsumed remainder, applying per-script
// terminator rules (Latin, CJK, Arabic/Urdu, Indic) that are injected as an
// immutable RuleBook.
//
// Detection is chunk-boundary insensitive: a decision that depends on text
// not yet received is deferred, so feeding a text one rune at a time yields
// the same sentences as feeding it whole.
package sentence
