package tts

import (
	"regexp"
	"time"

	"github.com/dgnsrekt/ttsgate/internal/sentence"
	"github.com/dgnsrekt/ttsgate/internal/ssml"
)

// Defaults for the Azure endpoint.
const (
	DefaultRegion       = "eastus"
	DefaultLanguage     = "en-US"
	DefaultVoice        = "en-US-JennyNeural"
	DefaultOutputFormat = "audio-24khz-96kbitrate-mono-mp3"
	DefaultUserAgent    = "ttsgate"
)

// Config contains all gateway configuration options. Fields carry no env
// defaults so that an unset variable never overrides the config file.
type Config struct {
	// Azure credentials
	Key      string `yaml:"key" env:"KEY"`
	Region   string `yaml:"region" env:"REGION"`
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`

	Voice VoiceParameters `yaml:"voice" envPrefix:"VOICE_"`

	// Streaming is the default capability assumed for consumers that do
	// not announce one.
	Streaming     bool `yaml:"streaming" env:"STREAMING"`
	Lookahead     int  `yaml:"lookahead" env:"LOOKAHEAD"`
	StripMarkdown bool `yaml:"strip_markdown" env:"STRIP_MARKDOWN"`

	Sentence SentenceConfig `yaml:"sentence" envPrefix:"SENTENCE_"`
	HTTP     HTTPConfig     `yaml:"http" envPrefix:"HTTP_"`
	Cache    CacheConfig    `yaml:"cache" envPrefix:"CACHE_"`
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
}

// SentenceConfig tunes the sentence detector.
type SentenceConfig struct {
	MinLength  int `yaml:"min_length" env:"MIN_LENGTH"`
	MaxLength  int `yaml:"max_length" env:"MAX_LENGTH"`
	LeadWindow int `yaml:"lead_window" env:"LEAD_WINDOW"`
}

// HTTPConfig tunes the Azure HTTP client.
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout" env:"TIMEOUT"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"REQUESTS_PER_MINUTE"`
	UserAgent         string        `yaml:"user_agent" env:"USER_AGENT"`
}

// CacheConfig sizes the voice catalog cache.
type CacheConfig struct {
	Dir      string        `yaml:"dir" env:"DIR"`
	MemoryMB int           `yaml:"memory_mb" env:"MEMORY_MB"`
	DiskMB   int           `yaml:"disk_mb" env:"DISK_MB"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
}

// ServerConfig configures the gateway.
type ServerConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Region: DefaultRegion,
		Voice: VoiceParameters{
			Voice:        DefaultVoice,
			Language:     DefaultLanguage,
			Rate:         ssml.DefaultRate,
			Pitch:        ssml.DefaultPitch,
			Volume:       ssml.DefaultVolume,
			StyleDegree:  ssml.DefaultStyleDegree,
			OutputFormat: DefaultOutputFormat,
		},
		Streaming: true,
		Lookahead: 1,
		Sentence: SentenceConfig{
			MinLength:  sentence.DefaultMinLength,
			MaxLength:  sentence.DefaultMaxLength,
			LeadWindow: sentence.DefaultLeadWindow,
		},
		HTTP: HTTPConfig{
			Timeout:           30 * time.Second,
			RequestsPerMinute: 600,
			UserAgent:         DefaultUserAgent,
		},
		Cache: CacheConfig{
			MemoryMB: 8,
			DiskMB:   64,
			TTL:      24 * time.Hour,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DetectorOptions returns the detector options described by the config.
func (c Config) DetectorOptions() []sentence.Option {
	return []sentence.Option{
		sentence.WithMinLength(c.Sentence.MinLength),
		sentence.WithMaxLength(c.Sentence.MaxLength),
		sentence.WithLeadWindow(c.Sentence.LeadWindow),
	}
}

// OrchestratorOptions returns the orchestrator options described by the config.
func (c Config) OrchestratorOptions() []Option {
	return []Option{
		WithDetector(sentence.NewDetector(c.DetectorOptions()...)),
		WithLookahead(c.Lookahead),
		WithStripMarkdown(c.StripMarkdown),
		WithDefaults(c.Voice),
	}
}

var regionPattern = regexp.MustCompile(`^[a-z0-9]+$`)
