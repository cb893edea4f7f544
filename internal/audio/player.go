package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/dgnsrekt/ttsgate/internal/tts"
)

// PlayerState represents the current state of a player.
type PlayerState int32

const (
	StateStopped PlayerState = iota
	StatePlaying
	StateClosed
)

// String returns the name of the state.
func (s PlayerState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// pollInterval is how often a playing chunk is checked for completion.
const pollInterval = 10 * time.Millisecond

// Player is a Sink that plays PCM chunks on the default sound device, one
// after another. oto allows a single context per process, so a program
// should create at most one Player.
type Player struct {
	context *oto.Context
	format  PCMFormat
	logger  *log.Logger

	// mu serializes playback; chunks never overlap.
	mu     sync.Mutex
	state  atomic.Int32
	volume float64
	played time.Duration
}

// NewPlayer opens the sound device for the given Azure output format.
func NewPlayer(format string, logger *log.Logger) (*Player, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, fmt.Errorf("cannot play %s: %w", format, err)
	}
	if logger == nil {
		logger = log.Default().WithPrefix("audio")
	}

	op := &oto.NewContextOptions{
		SampleRate:   f.SampleRate,
		ChannelCount: f.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   100 * time.Millisecond,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	p := &Player{
		context: ctx,
		format:  f,
		logger:  logger,
		volume:  1.0,
	}
	p.state.Store(int32(StateStopped))
	return p, nil
}

// SetVolume sets the playback volume (0.0 to 1.0) for following chunks.
func (p *Player) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}
	p.mu.Lock()
	p.volume = volume
	p.mu.Unlock()
	return nil
}

// Write implements Sink. It blocks until the chunk has been played.
func (p *Player) Write(chunk tts.AudioChunk) error {
	return p.Play(context.Background(), chunk)
}

// Play plays one chunk and waits for it to finish or for ctx to end.
func (p *Player) Play(ctx context.Context, chunk tts.AudioChunk) error {
	if chunk.Format != "" {
		if f, err := ParseFormat(chunk.Format); err != nil || f.SampleRate != p.format.SampleRate || f.Channels != p.format.Channels {
			return fmt.Errorf("chunk %d has format %s, player expects %d Hz", chunk.Sequence, chunk.Format, p.format.SampleRate)
		}
	}
	pcm := p.format.samples(chunk.Data)
	if len(pcm) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if PlayerState(p.state.Load()) == StateClosed {
		return ErrSinkClosed
	}

	// The reader keeps the samples alive until the oto player is closed.
	player := p.context.NewPlayer(bytes.NewReader(pcm))
	if player == nil {
		return errors.New("failed to create oto player")
	}
	player.SetVolume(p.volume)
	player.Play()
	p.state.Store(int32(StatePlaying))

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var err error
wait:
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			err = ctx.Err()
			break wait
		case <-ticker.C:
		}
	}
	if cerr := player.Close(); cerr != nil && err == nil {
		err = cerr
	}

	d := time.Duration(len(pcm)) * time.Second / time.Duration(p.format.BytesPerSecond())
	p.played += d
	p.state.Store(int32(StateStopped))
	p.logger.Debug("played chunk", "seq", chunk.Sequence, "duration", d.Round(time.Millisecond))
	return err
}

// Played returns the total duration of audio played so far.
func (p *Player) Played() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played
}

// State returns the current player state.
func (p *Player) State() PlayerState {
	return PlayerState(p.state.Load())
}

// Close implements Sink. The oto context stays alive for the process.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Store(int32(StateClosed))
	return nil
}
