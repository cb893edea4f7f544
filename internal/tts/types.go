package tts

import (
	"strings"
)

// State represents where a session is in its lifecycle
type State int

const (
	// StateIdle indicates no text has arrived yet
	StateIdle State = iota

	// StateAccumulating indicates fragments are being buffered and dispatched
	StateAccumulating

	// StateFlushing indicates end of input was seen and the remainder is being spoken
	StateFlushing

	// StateDone indicates the session is finished, successfully or not
	StateDone
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StateFlushing:
		return "flushing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// VoiceParameters selects the voice and prosody for a session. It is
// passed by value and never modified once a session starts.
type VoiceParameters struct {
	Voice        string `yaml:"name" json:"name,omitempty" env:"NAME"`
	Language     string `yaml:"language" json:"language,omitempty" env:"LANGUAGE"`
	Rate         string `yaml:"rate" json:"rate,omitempty" env:"RATE"`
	Pitch        string `yaml:"pitch" json:"pitch,omitempty" env:"PITCH"`
	Volume       string `yaml:"volume" json:"volume,omitempty" env:"VOLUME"`
	Style        string `yaml:"style" json:"style,omitempty" env:"STYLE"`
	StyleDegree  string `yaml:"style_degree" json:"style_degree,omitempty" env:"STYLE_DEGREE"`
	Role         string `yaml:"role" json:"role,omitempty" env:"ROLE"`
	OutputFormat string `yaml:"output_format" json:"output_format,omitempty" env:"OUTPUT_FORMAT"`
}

// Merge returns p with every non-empty field of o applied on top.
func (p VoiceParameters) Merge(o VoiceParameters) VoiceParameters {
	pick := func(base, over string) string {
		if over != "" {
			return over
		}
		return base
	}
	return VoiceParameters{
		Voice:        pick(p.Voice, o.Voice),
		Language:     pick(p.Language, o.Language),
		Rate:         pick(p.Rate, o.Rate),
		Pitch:        pick(p.Pitch, o.Pitch),
		Volume:       pick(p.Volume, o.Volume),
		Style:        pick(p.Style, o.Style),
		StyleDegree:  pick(p.StyleDegree, o.StyleDegree),
		Role:         pick(p.Role, o.Role),
		OutputFormat: pick(p.OutputFormat, o.OutputFormat),
	}
}

// AudioChunk is the audio for one sentence, or for the whole text when
// streaming is off.
type AudioChunk struct {
	Sequence int
	Text     string
	Format   string
	Data     []byte
}

// Capabilities describes what the playback consumer can handle.
type Capabilities struct {
	// Streaming is true when the consumer can play audio chunk by chunk.
	Streaming bool
}

// Voice is one entry of the Azure voice catalog.
type Voice struct {
	Name         string   `json:"Name"`
	ShortName    string   `json:"ShortName"`
	DisplayName  string   `json:"DisplayName"`
	LocalName    string   `json:"LocalName"`
	Gender       string   `json:"Gender"`
	Locale       string   `json:"Locale"`
	StyleList    []string `json:"StyleList,omitempty"`
	RolePlayList []string `json:"RolePlayList,omitempty"`
	VoiceType    string   `json:"VoiceType"`
}

// Label is the human readable name used when listing voices.
func (v Voice) Label() string {
	name := v.LocalName
	if name == "" {
		name = v.DisplayName
	}
	return name + " (" + v.Gender + ")"
}

// HasStyle reports whether the voice supports an express-as style.
func (v Voice) HasStyle(style string) bool {
	for _, s := range v.StyleList {
		if strings.EqualFold(s, style) {
			return true
		}
	}
	return false
}

// ContentType maps an Azure output format to a MIME type.
func ContentType(format string) string {
	f := strings.ToLower(format)
	switch {
	case strings.Contains(f, "mp3"):
		return "audio/mpeg"
	case strings.HasPrefix(f, "webm"):
		return "audio/webm"
	case strings.HasPrefix(f, "ogg"):
		return "audio/ogg"
	case strings.HasPrefix(f, "riff"):
		return "audio/wav"
	case strings.HasPrefix(f, "raw") && strings.HasSuffix(f, "pcm"):
		return "audio/L16"
	default:
		return "application/octet-stream"
	}
}
