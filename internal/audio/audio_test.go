package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/dgnsrekt/ttsgate/internal/tts"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    PCMFormat
		wantErr bool
	}{
		{"raw-24khz-16bit-mono-pcm", PCMFormat{SampleRate: 24000, Channels: 1, BitDepth: 16}, false},
		{"raw-8khz-16bit-mono-pcm", PCMFormat{SampleRate: 8000, Channels: 1, BitDepth: 16}, false},
		{"raw-22050hz-16bit-mono-pcm", PCMFormat{SampleRate: 22050, Channels: 1, BitDepth: 16}, false},
		{"riff-44100hz-16bit-mono-pcm", PCMFormat{SampleRate: 44100, Channels: 1, BitDepth: 16, RIFF: true}, false},
		{"RAW-48KHZ-16BIT-MONO-PCM", PCMFormat{SampleRate: 48000, Channels: 1, BitDepth: 16}, false},
		{"audio-24khz-96kbitrate-mono-mp3", PCMFormat{}, true},
		{"raw-8khz-8bit-mono-mulaw", PCMFormat{}, true},
		{"raw-24khz-24bit-mono-pcm", PCMFormat{}, true},
		{"raw-fastkhz-16bit-mono-pcm", PCMFormat{}, true},
		{"", PCMFormat{}, true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %+v, want %+v", tt.name, got, tt.want)
		}
		if Playable(tt.name) == tt.wantErr {
			t.Errorf("Playable(%q) = %v", tt.name, !tt.wantErr)
		}
	}
}

func wav(payload []byte) []byte {
	var b bytes.Buffer
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(36+len(payload)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	b.Write(make([]byte, 16))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, uint32(len(payload)))
	b.Write(payload)
	return b.Bytes()
}

func TestStripRIFF(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6}

	if got := stripRIFF(wav(payload)); !bytes.Equal(got, payload) {
		t.Errorf("stripRIFF(wav) = %v, want %v", got, payload)
	}
	if got := stripRIFF(payload); !bytes.Equal(got, payload) {
		t.Errorf("stripRIFF(raw) = %v, want unchanged", got)
	}

	f := PCMFormat{SampleRate: 24000, Channels: 1, BitDepth: 16, RIFF: true}
	if got := f.samples(wav(payload)); !bytes.Equal(got, payload) {
		t.Errorf("samples() = %v, want %v", got, payload)
	}
	if got := f.BytesPerSecond(); got != 48000 {
		t.Errorf("BytesPerSecond() = %d, want 48000", got)
	}
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf)

	for i, data := range []string{"one", "two", "three"} {
		if err := sink.Write(tts.AudioChunk{Sequence: i, Data: []byte(data)}); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if got := buf.String(); got != "onetwothree" {
		t.Errorf("written = %q", got)
	}
	if chunks, n := sink.Written(); chunks != 3 || n != 11 {
		t.Errorf("Written() = %d, %d, want 3, 11", chunks, n)
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := sink.Write(tts.AudioChunk{Data: []byte("late")}); !errors.Is(err, ErrSinkClosed) {
		t.Errorf("Write() after Close error = %v, want ErrSinkClosed", err)
	}

	boom := errors.New("disk full")
	bad := NewWriterSink(failingWriter{boom})
	if err := bad.Write(tts.AudioChunk{Data: []byte("x")}); !errors.Is(err, boom) {
		t.Errorf("Write() error = %v, want %v", err, boom)
	}
}

func stream(chunks []tts.AudioChunk, err error) (<-chan tts.AudioChunk, <-chan error) {
	out := make(chan tts.AudioChunk)
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		defer close(out)
		for _, c := range chunks {
			out <- c
		}
		if err != nil {
			errs <- err
		}
	}()
	return out, errs
}

func TestPump(t *testing.T) {
	chunks := []tts.AudioChunk{
		{Sequence: 0, Data: []byte("a")},
		{Sequence: 1, Data: []byte("b")},
		{Sequence: 2, Data: []byte("c")},
	}

	t.Run("all chunks", func(t *testing.T) {
		mp := NewMockPlayer()
		out, errs := stream(chunks, nil)
		if err := Pump(context.Background(), out, errs, mp); err != nil {
			t.Fatalf("Pump() error = %v", err)
		}
		got := mp.Chunks()
		if len(got) != 3 {
			t.Fatalf("sink got %d chunks, want 3", len(got))
		}
		for i, c := range got {
			if c.Sequence != i {
				t.Errorf("chunk %d has sequence %d", i, c.Sequence)
			}
		}
	})

	t.Run("stream error", func(t *testing.T) {
		boom := tts.NewTTSError(tts.ErrorCodeSynthesisNetwork, "down", nil)
		mp := NewMockPlayer()
		out, errs := stream(chunks[:1], boom)
		if err := Pump(context.Background(), out, errs, mp); !errors.Is(err, boom) {
			t.Errorf("Pump() error = %v, want %v", err, boom)
		}
		if len(mp.Chunks()) != 1 {
			t.Errorf("sink got %d chunks, want 1", len(mp.Chunks()))
		}
	})

	t.Run("sink error drains", func(t *testing.T) {
		boom := errors.New("device lost")
		mp := NewMockPlayer()
		mp.FailOn(1, boom)
		out, errs := stream(chunks, nil)
		if err := Pump(context.Background(), out, errs, mp); !errors.Is(err, boom) {
			t.Errorf("Pump() error = %v, want %v", err, boom)
		}
		if len(mp.Chunks()) != 1 {
			t.Errorf("sink got %d chunks, want 1", len(mp.Chunks()))
		}
	})
}

func TestMockPlayer(t *testing.T) {
	mp := NewMockPlayer()
	mp.SetDelay(5 * time.Millisecond)

	var seen []int
	mp.OnWrite = func(c tts.AudioChunk) { seen = append(seen, c.Sequence) }

	if err := mp.Write(tts.AudioChunk{Sequence: 7}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(seen) != 1 || seen[0] != 7 {
		t.Errorf("OnWrite saw %v", seen)
	}
	if mp.State() != StateStopped {
		t.Errorf("State() = %v, want stopped", mp.State())
	}

	_ = mp.Close()
	if err := mp.Write(tts.AudioChunk{}); !errors.Is(err, ErrSinkClosed) {
		t.Errorf("Write() after Close error = %v", err)
	}
	if mp.State().String() != "closed" {
		t.Errorf("State() = %v", mp.State())
	}
}

func TestNewPlayer_RejectsCompressedFormat(t *testing.T) {
	if _, err := NewPlayer("audio-24khz-96kbitrate-mono-mp3", nil); err == nil {
		t.Error("NewPlayer() accepted an mp3 format")
	}
}
