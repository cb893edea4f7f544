package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dgnsrekt/ttsgate/internal/queue"
	"github.com/dgnsrekt/ttsgate/internal/sentence"
	"github.com/dgnsrekt/ttsgate/internal/ssml"
)

// Session turns one incoming text stream into an ordered series of audio
// chunks. Its methods are safe for concurrent use and dispatch follows the
// order of the calls.
type Session struct {
	id       string
	orch     *Orchestrator
	strategy Strategy
	params   VoiceParameters
	emit     EmitFunc
	logger   *log.Logger

	cancel context.CancelFunc

	// Lookahead dispatch only.
	group   *errgroup.Group
	gctx    context.Context
	reorder *queue.Reorder[AudioChunk]
	emitMu  sync.Mutex

	mu    sync.Mutex
	state State
	buf   strings.Builder
	seq   int
	err   error
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that ended the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Write appends fragment to the buffer and dispatches every sentence whose
// boundary is now confirmed.
func (s *Session) Write(ctx context.Context, fragment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	if s.state >= StateFlushing {
		return ErrSessionDone
	}
	if err := ctx.Err(); err != nil {
		return s.fail(aborted(err))
	}

	s.state = StateAccumulating
	s.buf.WriteString(fragment)

	units, rest := s.strategy.Split(s.buf.String())
	if len(units) == 0 {
		return nil
	}
	s.buf.Reset()
	s.buf.WriteString(rest)

	for _, u := range units {
		if err := s.dispatch(ctx, u); err != nil {
			return s.fail(err)
		}
	}
	return nil
}

// Close marks the end of input, speaks whatever is left in the buffer and
// waits for all outstanding synthesis calls.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	if s.state >= StateFlushing {
		return ErrSessionDone
	}
	if err := ctx.Err(); err != nil {
		return s.fail(aborted(err))
	}

	s.state = StateFlushing
	units := s.strategy.Flush(s.buf.String())
	s.buf.Reset()

	for _, u := range units {
		if err := s.dispatch(ctx, u); err != nil {
			return s.fail(err)
		}
	}
	if s.group != nil {
		if err := s.group.Wait(); err != nil {
			return s.fail(err)
		}
	}

	s.state = StateDone
	s.cancel()
	if s.reorder != nil {
		s.reorder.Close()
	}
	s.orch.observer.SessionFinished(s.strategy.Name(), nil)
	s.logger.Debug("session closed", "chunks", s.seq)
	return nil
}

// Abort ends the session without flushing. Calls in flight are cancelled
// and their results discarded.
func (s *Session) Abort(cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDone {
		return s.err
	}
	if cause == nil {
		cause = context.Canceled
	}
	return s.fail(aborted(cause))
}

// fail ends the session with err. Must be called with s.mu held.
func (s *Session) fail(err error) error {
	if s.err == nil {
		s.err = err
	}
	s.state = StateDone
	s.buf.Reset()
	s.cancel()
	if s.group != nil {
		// Drain workers; whatever they produce now is dropped.
		_ = s.group.Wait()
		s.reorder.Close()
	}
	s.orch.observer.SessionFinished(s.strategy.Name(), s.err)
	s.logger.Debug("session failed", "err", s.err)
	return s.err
}

// dispatch prepares one unit and hands it to synthesis. Units that hold
// nothing to say, or cannot be embedded in markup, are skipped.
func (s *Session) dispatch(ctx context.Context, u sentence.Sentence) error {
	text := Normalize(u.Text, s.orch.stripMarkdown)
	if !Speakable(text) {
		s.logger.Debug("skipping unspeakable sentence", "text", Preview(u.Text))
		return nil
	}

	escaped, err := ssml.Sanitize(text)
	if err != nil {
		terr := NewTTSError(ErrorCodeSanitization, "sentence skipped", err).
			WithContext("class", u.Class.String())
		s.logger.Warn("skipping sentence", "err", terr, "text", Preview(text))
		return nil
	}

	seq := s.seq
	s.seq++

	if s.group == nil {
		chunk, err := s.synthesize(ctx, seq, text, escaped)
		if err != nil {
			return err
		}
		if err := s.emit(chunk); err != nil {
			return s.emitError(ctx, err)
		}
		return nil
	}

	if s.gctx.Err() != nil {
		// A worker failed or the session was cancelled.
		if err := s.group.Wait(); err != nil {
			return err
		}
		return aborted(s.gctx.Err())
	}
	s.group.Go(func() error {
		chunk, err := s.synthesize(s.gctx, seq, text, escaped)
		if err != nil {
			return err
		}
		return s.release(seq, chunk)
	})
	return nil
}

// release pushes a finished chunk through the reorder buffer and emits
// everything that is now in sequence.
func (s *Session) release(seq int, chunk AudioChunk) error {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	ready, err := s.reorder.Push(uint64(seq), chunk)
	if errors.Is(err, queue.ErrQueueClosed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reorder sequence %d: %w", seq, err)
	}
	for _, c := range ready {
		if s.gctx.Err() != nil {
			return aborted(s.gctx.Err())
		}
		if err := s.emit(c); err != nil {
			return s.emitError(s.gctx, err)
		}
	}
	return nil
}

// synthesize runs one synthesis call and classifies its failure.
func (s *Session) synthesize(ctx context.Context, seq int, text, escaped string) (AudioChunk, error) {
	start := time.Now()
	chunk, err := s.orch.synth.Synthesize(ctx, escaped, s.params)
	took := time.Since(start)

	if err == nil && len(chunk.Data) == 0 {
		err = NewTTSError(ErrorCodeSynthesisEmpty, "synthesis returned no audio", nil)
	}
	if err != nil {
		err = classify(ctx, err).WithContext("seq", seq)
	}

	s.orch.observer.SynthesisDone(SynthesisResult{
		Strategy: s.strategy.Name(),
		Sequence: seq,
		Text:     text,
		Duration: took,
		Bytes:    len(chunk.Data),
		Err:      err,
	})
	if err != nil {
		return AudioChunk{}, err
	}

	chunk.Sequence = seq
	chunk.Text = text
	if chunk.Format == "" {
		chunk.Format = s.params.OutputFormat
	}
	return chunk, nil
}

func (s *Session) emitError(ctx context.Context, err error) error {
	var te *TTSError
	if errors.As(err, &te) {
		return err
	}
	if ctx.Err() != nil {
		return aborted(ctx.Err())
	}
	return aborted(err)
}

// classify maps any error from a Synthesizer onto a TTSError.
func classify(ctx context.Context, err error) *TTSError {
	if ctx.Err() != nil {
		return aborted(ctx.Err())
	}
	var te *TTSError
	if errors.As(err, &te) {
		return te
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return aborted(err)
	}
	return NewTTSError(ErrorCodeSynthesisNetwork, "synthesis failed", err)
}
