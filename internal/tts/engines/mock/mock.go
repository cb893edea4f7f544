// Package mock provides a scriptable Synthesizer for tests.
package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/ttsgate/internal/tts"
)

// Call records one Synthesize invocation.
type Call struct {
	Text   string
	Params tts.VoiceParameters
}

// Engine implements tts.Synthesizer and tts.VoiceCatalog without any
// network access. Audio is the bytes "audio:" followed by the text.
type Engine struct {
	mu sync.Mutex

	// Configuration
	delay   time.Duration
	delayFn func(text string) time.Duration
	voices  []tts.Voice

	// Control for testing
	failOn   map[int]error
	failText map[string]error
	empty    bool

	// State
	calls       []Call
	inflight    int
	maxInflight int
}

var (
	_ tts.Synthesizer  = (*Engine)(nil)
	_ tts.VoiceCatalog = (*Engine)(nil)
)

// New creates a mock engine with no delay and a small catalog.
func New() *Engine {
	return &Engine{
		failOn:   make(map[int]error),
		failText: make(map[string]error),
		voices:   DefaultVoices(),
	}
}

// Synthesize records the call and returns fake audio, or the configured
// failure.
func (e *Engine) Synthesize(ctx context.Context, text string, params tts.VoiceParameters) (tts.AudioChunk, error) {
	e.mu.Lock()
	idx := len(e.calls)
	e.calls = append(e.calls, Call{Text: text, Params: params})
	e.inflight++
	if e.inflight > e.maxInflight {
		e.maxInflight = e.inflight
	}
	delay := e.delay
	if e.delayFn != nil {
		delay = e.delayFn(text)
	}
	err := e.failOn[idx]
	for substr, ferr := range e.failText {
		if err == nil && strings.Contains(text, substr) {
			err = ferr
		}
	}
	empty := e.empty
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inflight--
		e.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return tts.AudioChunk{}, ctx.Err()
		}
	}
	if err != nil {
		return tts.AudioChunk{}, err
	}
	if empty {
		return tts.AudioChunk{Format: params.OutputFormat}, nil
	}

	format := params.OutputFormat
	if format == "" {
		format = "mock"
	}
	return tts.AudioChunk{Format: format, Data: []byte("audio:" + text)}, nil
}

// Voices returns the configured catalog.
func (e *Engine) Voices(ctx context.Context) ([]tts.Voice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]tts.Voice(nil), e.voices...), nil
}

// Test control methods

// SetDelay sets the simulated synthesis latency.
func (e *Engine) SetDelay(delay time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delay = delay
}

// SetDelayFunc sets a per-text latency, overriding SetDelay.
func (e *Engine) SetDelayFunc(fn func(text string) time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delayFn = fn
}

// FailOn makes the call with the given zero-based index fail with err.
func (e *Engine) FailOn(call int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failOn[call] = err
}

// FailText makes every call whose text contains substr fail with err.
func (e *Engine) FailText(substr string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failText[substr] = err
}

// SetEmpty makes every call succeed with no audio.
func (e *Engine) SetEmpty(empty bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.empty = empty
}

// SetVoices replaces the catalog.
func (e *Engine) SetVoices(voices []tts.Voice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.voices = voices
}

// ClearFailure resets the engine to normal operation.
func (e *Engine) ClearFailure() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failOn = make(map[int]error)
	e.failText = make(map[string]error)
	e.empty = false
}

// Calls returns every recorded call in order.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// Texts returns the text of every recorded call in order.
func (e *Engine) Texts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	texts := make([]string, len(e.calls))
	for i, c := range e.calls {
		texts[i] = c.Text
	}
	return texts
}

// MaxConcurrent returns the highest number of overlapping calls seen.
func (e *Engine) MaxConcurrent() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxInflight
}

// DefaultVoices is a small catalog in Azure's shape.
func DefaultVoices() []tts.Voice {
	return []tts.Voice{
		{ShortName: "en-US-GuyNeural", LocalName: "Guy", Gender: "Male", Locale: "en-US"},
		{ShortName: "en-US-JennyNeural", LocalName: "Jenny", Gender: "Female", Locale: "en-US", StyleList: []string{"cheerful", "sad"}},
		{ShortName: "en-GB-RyanNeural", LocalName: "Ryan", Gender: "Male", Locale: "en-GB"},
		{ShortName: "it-IT-DiegoNeural", LocalName: "Diego", Gender: "Male", Locale: "it-IT"},
		{ShortName: "it-IT-ElsaNeural", LocalName: "Elsa", Gender: "Female", Locale: "it-IT"},
		{ShortName: "de-DE-ConradNeural", LocalName: "Conrad", Gender: "Male", Locale: "de-DE"},
		{ShortName: "zh-CN-XiaoxiaoNeural", LocalName: "晓晓", Gender: "Female", Locale: "zh-CN"},
	}
}
