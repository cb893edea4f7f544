package tts

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf8"
)

func collectFragments(t *testing.T, frags <-chan string, errs <-chan error) ([]string, error) {
	t.Helper()
	var out []string
	for f := range frags {
		out = append(out, f)
	}
	return out, <-errs
}

func TestReadFragments(t *testing.T) {
	const text = "héllo 你好世界 wörld. Ünïcödé ✓ done"

	tests := []struct {
		name   string
		reader func() *strings.Reader
		size   int
		wrap   bool
	}{
		{"small reads", func() *strings.Reader { return strings.NewReader(text) }, 4, false},
		{"odd size", func() *strings.Reader { return strings.NewReader(text) }, 5, false},
		{"one byte reader", func() *strings.Reader { return strings.NewReader(text) }, 64, true},
		{"default size", func() *strings.Reader { return strings.NewReader(text) }, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r io.Reader = tt.reader()
			if tt.wrap {
				r = iotest.OneByteReader(r)
			}

			fragCh, errCh := ReadFragments(context.Background(), r, tt.size)
			frags, err := collectFragments(t, fragCh, errCh)
			if err != nil {
				t.Fatalf("ReadFragments() error = %v", err)
			}
			for _, f := range frags {
				if !utf8.ValidString(f) {
					t.Errorf("fragment %q splits a character", f)
				}
			}
			if got := strings.Join(frags, ""); got != text {
				t.Errorf("joined fragments = %q, want %q", got, text)
			}
		})
	}
}

func TestReadFragments_Error(t *testing.T) {
	boom := errors.New("boom")
	fragCh, errCh := ReadFragments(context.Background(), iotest.ErrReader(boom), 16)
	_, err := collectFragments(t, fragCh, errCh)
	if !errors.Is(err, boom) {
		t.Errorf("ReadFragments() error = %v, want %v", err, boom)
	}
}

func TestReadFragments_TruncatedInput(t *testing.T) {
	// A dangling lead byte at EOF is still delivered.
	input := "ok " + string([]byte{0xe4, 0xbd})
	fragCh, errCh := ReadFragments(context.Background(), strings.NewReader(input), 4)
	frags, err := collectFragments(t, fragCh, errCh)
	if err != nil {
		t.Fatalf("ReadFragments() error = %v", err)
	}
	if got := strings.Join(frags, ""); got != input {
		t.Errorf("joined fragments = %q, want %q", got, input)
	}
}

func TestCompletePrefix(t *testing.T) {
	tests := []struct {
		in   []byte
		want int
	}{
		{[]byte("abc"), 3},
		{[]byte("a\xe4\xbd"), 1},
		{[]byte("a\xe4\xbd\xa0"), 4},
		{[]byte("\xc3"), 0},
		{nil, 0},
	}

	for _, tt := range tests {
		if got := completePrefix(tt.in); got != tt.want {
			t.Errorf("completePrefix(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
