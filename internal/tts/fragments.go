package tts

import (
	"context"
	"io"
	"unicode/utf8"
)

// DefaultFragmentSize is the read size used by ReadFragments when none is given.
const DefaultFragmentSize = 512

// ReadFragments streams r as text fragments of at most size bytes. A
// multi-byte character is never split across fragments. The fragment
// channel closes at EOF; a read error is sent on the error channel.
func ReadFragments(ctx context.Context, r io.Reader, size int) (<-chan string, <-chan error) {
	if size < utf8.UTFMax {
		size = DefaultFragmentSize
	}
	out := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(errs)
		defer close(out)

		send := func(s string) bool {
			select {
			case out <- s:
				return true
			case <-ctx.Done():
				errs <- ctx.Err()
				return false
			}
		}

		buf := make([]byte, size)
		var carry []byte
		for {
			n, err := r.Read(buf)
			if n > 0 {
				data := append(carry, buf[:n]...)
				cut := completePrefix(data)
				carry = append([]byte(nil), data[cut:]...)
				if cut > 0 && !send(string(data[:cut])) {
					return
				}
			}
			if err == io.EOF {
				if len(carry) > 0 {
					send(string(carry))
				}
				return
			}
			if err != nil {
				errs <- err
				return
			}
		}
	}()

	return out, errs
}

// completePrefix returns the length of the longest prefix of b that does
// not end inside a multi-byte character.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}
