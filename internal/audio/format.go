package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// PCMFormat describes uncompressed little-endian PCM audio.
type PCMFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int

	// RIFF is true when every chunk starts with a WAV header.
	RIFF bool
}

// ParseFormat decodes an Azure output format name such as
// "raw-24khz-16bit-mono-pcm" or "riff-44100hz-16bit-mono-pcm". Compressed
// formats return an error.
func ParseFormat(name string) (PCMFormat, error) {
	parts := strings.Split(strings.ToLower(name), "-")
	if len(parts) != 5 || parts[4] != "pcm" || (parts[0] != "raw" && parts[0] != "riff") {
		return PCMFormat{}, fmt.Errorf("%q is not a PCM format", name)
	}

	f := PCMFormat{RIFF: parts[0] == "riff"}

	rate := parts[1]
	mult := 1
	switch {
	case strings.HasSuffix(rate, "khz"):
		rate, mult = strings.TrimSuffix(rate, "khz"), 1000
	case strings.HasSuffix(rate, "hz"):
		rate = strings.TrimSuffix(rate, "hz")
	default:
		return PCMFormat{}, fmt.Errorf("invalid sample rate in %q", name)
	}
	n, err := strconv.Atoi(rate)
	if err != nil || n <= 0 {
		return PCMFormat{}, fmt.Errorf("invalid sample rate in %q", name)
	}
	f.SampleRate = n * mult

	bits, err := strconv.Atoi(strings.TrimSuffix(parts[2], "bit"))
	if err != nil || bits != 16 {
		return PCMFormat{}, fmt.Errorf("unsupported bit depth in %q", name)
	}
	f.BitDepth = bits

	switch parts[3] {
	case "mono":
		f.Channels = 1
	case "stereo":
		f.Channels = 2
	default:
		return PCMFormat{}, fmt.Errorf("invalid channel layout in %q", name)
	}
	return f, nil
}

// Playable reports whether the output format can be sent to the sound device.
func Playable(name string) bool {
	_, err := ParseFormat(name)
	return err == nil
}

// BytesPerSecond is the data rate of the format.
func (f PCMFormat) BytesPerSecond() int {
	return f.SampleRate * f.Channels * f.BitDepth / 8
}

// samples returns the PCM payload of one chunk, skipping the WAV header of
// RIFF formats.
func (f PCMFormat) samples(data []byte) []byte {
	if !f.RIFF {
		return data
	}
	return stripRIFF(data)
}

// stripRIFF returns the payload of the data chunk of a WAV file. Input that
// does not look like WAV is returned unchanged.
func stripRIFF(data []byte) []byte {
	if len(data) < 12 || !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return data
	}
	pos := 12
	for pos+8 <= len(data) {
		id := data[pos : pos+4]
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		pos += 8
		if bytes.Equal(id, []byte("data")) {
			end := pos + size
			if end > len(data) || size == 0 {
				end = len(data)
			}
			return data[pos:end]
		}
		pos += size + size%2
	}
	return nil
}
