package audio

import (
	"sync"
	"time"

	"github.com/dgnsrekt/ttsgate/internal/tts"
)

// MockPlayer is a Sink that records chunks instead of playing them.
type MockPlayer struct {
	mu      sync.Mutex
	chunks  []tts.AudioChunk
	state   PlayerState
	delay   time.Duration
	failAt  int
	failErr error

	// OnWrite is called for every accepted chunk.
	OnWrite func(chunk tts.AudioChunk)
}

// NewMockPlayer creates a mock sink.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{failAt: -1}
}

// SetDelay simulates playback time for every chunk.
func (mp *MockPlayer) SetDelay(d time.Duration) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.delay = d
}

// FailOn makes the n-th write (zero based) return err.
func (mp *MockPlayer) FailOn(n int, err error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.failAt = n
	mp.failErr = err
}

// Write implements Sink.
func (mp *MockPlayer) Write(chunk tts.AudioChunk) error {
	mp.mu.Lock()
	if mp.state == StateClosed {
		mp.mu.Unlock()
		return ErrSinkClosed
	}
	if mp.failAt == len(mp.chunks) {
		err := mp.failErr
		mp.mu.Unlock()
		return err
	}
	mp.chunks = append(mp.chunks, chunk)
	mp.state = StatePlaying
	delay := mp.delay
	onWrite := mp.OnWrite
	mp.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if onWrite != nil {
		onWrite(chunk)
	}

	mp.mu.Lock()
	if mp.state == StatePlaying {
		mp.state = StateStopped
	}
	mp.mu.Unlock()
	return nil
}

// Close implements Sink.
func (mp *MockPlayer) Close() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.state = StateClosed
	return nil
}

// Chunks returns a copy of the recorded chunks.
func (mp *MockPlayer) Chunks() []tts.AudioChunk {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	out := make([]tts.AudioChunk, len(mp.chunks))
	copy(out, mp.chunks)
	return out
}

// State returns the mock's state.
func (mp *MockPlayer) State() PlayerState {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.state
}
