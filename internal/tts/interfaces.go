package tts

import (
	"context"
)

// Synthesizer turns one piece of already sanitized text into audio.
// Implementations must be safe for concurrent use.
type Synthesizer interface {
	// Synthesize returns the audio for text. The returned chunk carries
	// Format and Data; the caller assigns Sequence and Text.
	Synthesize(ctx context.Context, text string, params VoiceParameters) (AudioChunk, error)
}

// VoiceCatalog lists the voices a Synthesizer can use.
type VoiceCatalog interface {
	Voices(ctx context.Context) ([]Voice, error)
}

// Observer is notified about every synthesis call. Implementations must be
// safe for concurrent use.
type Observer interface {
	SessionStarted(strategy string)
	SessionFinished(strategy string, err error)
	SynthesisDone(result SynthesisResult)
}

// EmitFunc delivers a finished chunk to the consumer. Returning an error
// stops the session.
type EmitFunc func(AudioChunk) error
