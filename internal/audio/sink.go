package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dgnsrekt/ttsgate/internal/tts"
)

// ErrSinkClosed is returned when writing to a closed sink.
var ErrSinkClosed = errors.New("sink is closed")

// Sink consumes audio chunks in sequence order.
type Sink interface {
	Write(chunk tts.AudioChunk) error
	Close() error
}

// WriterSink appends the raw audio of every chunk to an io.Writer.
// Containerless formats such as MP3 frames concatenate cleanly.
type WriterSink struct {
	w io.Writer

	mu     sync.Mutex
	bytes  int64
	chunks int
	closed bool
}

// NewWriterSink creates a sink writing to w. Close closes w when it is an
// io.Closer.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Write implements Sink.
func (s *WriterSink) Write(chunk tts.AudioChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	n, err := s.w.Write(chunk.Data)
	s.bytes += int64(n)
	if err != nil {
		return fmt.Errorf("failed to write chunk %d: %w", chunk.Sequence, err)
	}
	s.chunks++
	return nil
}

// Close implements Sink.
func (s *WriterSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Written returns the number of chunks and bytes written so far.
func (s *WriterSink) Written() (chunks int, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chunks, s.bytes
}

// Pump copies chunks into sink until the chunk channel closes, then
// returns the stream's error, if any. When the sink fails, the remaining
// chunks are drained so the producer is never blocked.
func Pump(ctx context.Context, chunks <-chan tts.AudioChunk, errs <-chan error, sink Sink) error {
	var sinkErr error
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				if err := <-errs; err != nil {
					return err
				}
				return sinkErr
			}
			if sinkErr == nil {
				sinkErr = sink.Write(chunk)
			}
		case <-ctx.Done():
			// The producer observes the same context and closes its channels.
			for range chunks {
			}
			if err := <-errs; err != nil {
				return err
			}
			return ctx.Err()
		}
	}
}
