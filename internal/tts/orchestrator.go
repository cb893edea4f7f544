package tts

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dgnsrekt/ttsgate/internal/queue"
	"github.com/dgnsrekt/ttsgate/internal/sentence"
)

// Orchestrator wires the sentence detector to a Synthesizer. It holds no
// per-session state and may be shared by any number of sessions.
type Orchestrator struct {
	synth         Synthesizer
	detector      *sentence.Detector
	lookahead     int
	stripMarkdown bool
	defaults      VoiceParameters
	logger        *log.Logger
	observer      observers
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDetector replaces the default sentence detector.
func WithDetector(d *sentence.Detector) Option {
	return func(o *Orchestrator) {
		o.detector = d
	}
}

// WithLookahead allows up to n synthesis calls in flight per session.
// Values below 2 keep dispatch sequential.
func WithLookahead(n int) Option {
	return func(o *Orchestrator) {
		o.lookahead = n
	}
}

// WithStripMarkdown removes markdown syntax from sentences before synthesis.
func WithStripMarkdown(strip bool) Option {
	return func(o *Orchestrator) {
		o.stripMarkdown = strip
	}
}

// WithDefaults sets the voice parameters that per-session parameters are
// merged onto.
func WithDefaults(p VoiceParameters) Option {
	return func(o *Orchestrator) {
		o.defaults = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithObserver adds an observer notified about every session and call.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		o.observer = append(o.observer, obs)
	}
}

// NewOrchestrator creates an Orchestrator around synth.
func NewOrchestrator(synth Synthesizer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		synth:     synth,
		lookahead: 1,
		logger:    log.Default().WithPrefix("tts"),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.detector == nil {
		o.detector = sentence.NewDetector()
	}
	return o
}

// Strategy picks how a session is spoken based on what the consumer can
// play.
func (o *Orchestrator) Strategy(caps Capabilities) Strategy {
	if caps.Streaming {
		return StreamingStrategy{Detector: o.detector}
	}
	return WholeTextStrategy{LeadWindow: sentence.DefaultLeadWindow}
}

// NewSession starts a session. ctx bounds the lifetime of any synthesis
// call the session runs in the background; emit receives chunks in order.
func (o *Orchestrator) NewSession(ctx context.Context, strategy Strategy, params VoiceParameters, emit EmitFunc) *Session {
	s := &Session{
		id:       uuid.NewString(),
		orch:     o,
		strategy: strategy,
		params:   o.defaults.Merge(params),
		emit:     emit,
	}
	s.logger = o.logger.With("session", s.id[:8], "strategy", strategy.Name())

	ctx, s.cancel = context.WithCancel(ctx)
	if o.lookahead > 1 {
		s.group, s.gctx = errgroup.WithContext(ctx)
		s.group.SetLimit(o.lookahead)
		s.reorder = queue.NewReorder[AudioChunk](0)
	}

	o.observer.SessionStarted(strategy.Name())
	s.logger.Debug("session started", "voice", s.params.Voice, "lookahead", o.lookahead)
	return s
}

// Stream speaks the fragments read from the channel. Chunks are delivered
// in order and the chunk channel is closed when the session ends. At most
// one error is sent on the error channel, which is closed afterwards.
func (o *Orchestrator) Stream(ctx context.Context, caps Capabilities, params VoiceParameters, fragments <-chan string) (<-chan AudioChunk, <-chan error) {
	chunks := make(chan AudioChunk)
	errs := make(chan error, 1)

	go func() {
		defer close(errs)
		defer close(chunks)

		emit := func(c AudioChunk) error {
			select {
			case chunks <- c:
				return nil
			case <-ctx.Done():
				return aborted(ctx.Err())
			}
		}
		s := o.NewSession(ctx, o.Strategy(caps), params, emit)

		if err := o.pump(ctx, s, fragments); err != nil {
			errs <- err
		}
	}()

	return chunks, errs
}

func (o *Orchestrator) pump(ctx context.Context, s *Session, fragments <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return s.Abort(ctx.Err())
		case f, ok := <-fragments:
			if !ok {
				return s.Close(ctx)
			}
			if err := s.Write(ctx, f); err != nil {
				return err
			}
		}
	}
}

// Synthesize speaks text in a single call and returns the one chunk.
func (o *Orchestrator) Synthesize(ctx context.Context, params VoiceParameters, text string) (AudioChunk, error) {
	var out []AudioChunk
	s := o.NewSession(ctx, WholeTextStrategy{LeadWindow: sentence.DefaultLeadWindow}, params, func(c AudioChunk) error {
		out = append(out, c)
		return nil
	})

	if err := s.Write(ctx, text); err != nil {
		return AudioChunk{}, err
	}
	if err := s.Close(ctx); err != nil {
		return AudioChunk{}, err
	}
	if len(out) == 0 {
		return AudioChunk{}, NewTTSError(ErrorCodeSanitization, "nothing to synthesize", ErrNothingToSpeak).
			WithContext("text", Preview(strings.TrimSpace(text)))
	}
	return out[0], nil
}
