package tts

import (
	"strings"

	"github.com/dgnsrekt/ttsgate/internal/sentence"
)

// Strategy decides how a session's buffer is cut into synthesis units.
// It is chosen once per session and never changes afterwards.
type Strategy interface {
	// Name identifies the strategy in logs and metrics.
	Name() string

	// Split returns the units that can be dispatched now and the part of
	// buf that must wait for more input.
	Split(buf string) ([]sentence.Sentence, string)

	// Flush returns the units left in buf at end of input.
	Flush(buf string) []sentence.Sentence
}

// StreamingStrategy dispatches each sentence as soon as its boundary is
// confirmed.
type StreamingStrategy struct {
	Detector *sentence.Detector
}

// Name implements Strategy.
func (StreamingStrategy) Name() string { return "streaming" }

// Split implements Strategy.
func (s StreamingStrategy) Split(buf string) ([]sentence.Sentence, string) {
	return s.Detector.Split(buf)
}

// Flush implements Strategy.
func (s StreamingStrategy) Flush(buf string) []sentence.Sentence {
	return s.Detector.Flush(buf)
}

// WholeTextStrategy holds everything until end of input and synthesizes
// it in one call, for consumers that cannot play partial audio.
type WholeTextStrategy struct {
	LeadWindow int
}

// Name implements Strategy.
func (WholeTextStrategy) Name() string { return "whole-text" }

// Split implements Strategy. Nothing is ready before end of input.
func (WholeTextStrategy) Split(buf string) ([]sentence.Sentence, string) {
	return nil, buf
}

// Flush implements Strategy.
func (w WholeTextStrategy) Flush(buf string) []sentence.Sentence {
	text := strings.TrimSpace(buf)
	if text == "" {
		return nil
	}
	return []sentence.Sentence{{Text: text, Class: sentence.Classify(text, w.LeadWindow)}}
}
