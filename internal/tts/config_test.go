package tts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

const sampleConfig = `
key: abc123def
region: westeurope
voice:
  name: it-IT-ElsaNeural
  language: it-IT
  rate: 1.2
  style: cheerful
sentence:
  min_length: 5
http:
  timeout: 10s
cache:
  ttl: 1h
lookahead: 3
streaming: false
`

func loadSample(t *testing.T, doc string) Config {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(doc)); err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	return cfg
}

func TestLoadConfig_File(t *testing.T) {
	cfg := loadSample(t, sampleConfig)

	if cfg.Key != "abc123def" || cfg.Region != "westeurope" {
		t.Errorf("credentials = %q/%q", cfg.Key, cfg.Region)
	}
	if cfg.Voice.Voice != "it-IT-ElsaNeural" || cfg.Voice.Language != "it-IT" {
		t.Errorf("voice = %q/%q", cfg.Voice.Voice, cfg.Voice.Language)
	}
	if cfg.Voice.Rate != "+20%" {
		t.Errorf("rate = %q, want +20%%", cfg.Voice.Rate)
	}
	if cfg.Voice.Style != "cheerful" {
		t.Errorf("style = %q", cfg.Voice.Style)
	}
	if cfg.Sentence.MinLength != 5 {
		t.Errorf("min length = %d, want 5", cfg.Sentence.MinLength)
	}
	if cfg.HTTP.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.HTTP.Timeout)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("cache ttl = %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Lookahead != 3 || cfg.Streaming {
		t.Errorf("lookahead/streaming = %d/%v", cfg.Lookahead, cfg.Streaming)
	}

	// Unset keys keep their defaults.
	def := DefaultConfig()
	if cfg.Voice.OutputFormat != def.Voice.OutputFormat {
		t.Errorf("output format = %q, want default", cfg.Voice.OutputFormat)
	}
	if cfg.Sentence.MaxLength != def.Sentence.MaxLength {
		t.Errorf("max length = %d, want default", cfg.Sentence.MaxLength)
	}
	if cfg.Server.Addr != def.Server.Addr {
		t.Errorf("addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("TTSGATE_REGION", "northeurope")
	t.Setenv("TTSGATE_VOICE_STYLE", "sad")
	t.Setenv("TTSGATE_LOOKAHEAD", "2")
	t.Setenv("TTSGATE_HTTP_TIMEOUT", "5s")

	cfg := loadSample(t, sampleConfig)

	if cfg.Region != "northeurope" {
		t.Errorf("region = %q, want northeurope", cfg.Region)
	}
	if cfg.Voice.Style != "sad" {
		t.Errorf("style = %q, want sad", cfg.Voice.Style)
	}
	if cfg.Lookahead != 2 {
		t.Errorf("lookahead = %d, want 2", cfg.Lookahead)
	}
	if cfg.HTTP.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.HTTP.Timeout)
	}
	if cfg.Key != "abc123def" {
		t.Errorf("key = %q, file value lost", cfg.Key)
	}
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	t.Setenv("TTSGATE_LOOKAHEAD", "many")

	v := viper.New()
	_, err := LoadConfig(v)
	if CodeOf(err) != ErrorCodeConfiguration {
		t.Errorf("LoadConfig() error = %v, want %s", err, ErrorCodeConfiguration)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.Key = "secret"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing key", func(c *Config) { c.Key = "  " }, true},
		{"bad region", func(c *Config) { c.Region = "West Europe" }, true},
		{"endpoint without region", func(c *Config) { c.Region = ""; c.Endpoint = "https://tts.example.com" }, false},
		{"no output format", func(c *Config) { c.Voice.OutputFormat = "" }, true},
		{"zero lookahead", func(c *Config) { c.Lookahead = 0 }, true},
		{"min above max", func(c *Config) { c.Sentence.MinLength = 50; c.Sentence.MaxLength = 10 }, true},
		{"negative rate limit", func(c *Config) { c.HTTP.RequestsPerMinute = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && CodeOf(err) != ErrorCodeConfiguration {
				t.Errorf("Validate() code = %q, want %q", CodeOf(err), ErrorCodeConfiguration)
			}
		})
	}
}

func TestConfig_ValidateMissingKeyGuidance(t *testing.T) {
	err := DefaultConfig().Validate()
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("Validate() error = %v, want ErrMissingKey", err)
	}
	if g := guidanceOf(err); !strings.Contains(g, "TTSGATE_KEY") {
		t.Errorf("guidance does not mention TTSGATE_KEY: %q", g)
	}
}

func TestConfig_Describe(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Key = "0123456789abcdef"

	got := cfg.Describe()
	if strings.Contains(got, "0123456789") {
		t.Errorf("Describe() leaks the key: %s", got)
	}
	if !strings.Contains(got, "****cdef") {
		t.Errorf("Describe() = %s, want masked key suffix", got)
	}
}

type staticCatalog struct {
	voices []Voice
	err    error
}

func (c staticCatalog) Voices(context.Context) ([]Voice, error) {
	return c.voices, c.err
}

func TestValidateService(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Key = "secret"

	t.Run("available", func(t *testing.T) {
		res := ValidateService(context.Background(), cfg, staticCatalog{voices: catalog()})
		if !res.Available || res.Error != nil {
			t.Fatalf("result = %+v", res)
		}
		if res.Details["voice"] != "en-US-JennyNeural (en-US)" {
			t.Errorf("voice detail = %q", res.Details["voice"])
		}
		if res.Details["voices"] != "6" {
			t.Errorf("voices detail = %q", res.Details["voices"])
		}
	})

	t.Run("unknown voice", func(t *testing.T) {
		c := cfg
		c.Voice.Voice = "en-US-NobodyNeural"
		res := ValidateService(context.Background(), c, staticCatalog{voices: catalog()})
		if !res.Available || res.Guidance == "" {
			t.Errorf("result = %+v, want available with guidance", res)
		}
	})

	t.Run("rejected key", func(t *testing.T) {
		auth := NewTTSError(ErrorCodeSynthesisAuth, "unauthorized", nil)
		res := ValidateService(context.Background(), cfg, staticCatalog{err: auth})
		if res.Available || !errors.Is(res.Error, auth) {
			t.Errorf("result = %+v", res)
		}
		if !strings.Contains(res.Guidance, "rejected") {
			t.Errorf("guidance = %q", res.Guidance)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		res := ValidateService(context.Background(), DefaultConfig(), staticCatalog{voices: catalog()})
		if res.Available || res.Guidance == "" {
			t.Errorf("result = %+v", res)
		}
	})
}
