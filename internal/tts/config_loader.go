package tts

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/ttsgate/internal/ssml"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "TTSGATE_"

// LoadConfig builds the configuration from defaults, then the config file
// held by v, then the environment.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := LoadConfigFromViper(v)
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.Voice.Rate = ssml.NormalizeRate(cfg.Voice.Rate)
	return cfg, nil
}

// ApplyEnv overlays TTSGATE_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return NewTTSError(ErrorCodeConfiguration, "invalid environment", err)
	}
	return nil
}

// LoadConfigFromViper loads configuration from Viper. Keys that are not
// set keep their defaults.
func LoadConfigFromViper(v *viper.Viper) Config {
	cfg := DefaultConfig()

	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	flag := func(key string, dst *bool) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}

	// Credentials
	str("key", &cfg.Key)
	str("region", &cfg.Region)
	str("endpoint", &cfg.Endpoint)

	// Voice
	str("voice.name", &cfg.Voice.Voice)
	str("voice.language", &cfg.Voice.Language)
	str("voice.rate", &cfg.Voice.Rate)
	str("voice.pitch", &cfg.Voice.Pitch)
	str("voice.volume", &cfg.Voice.Volume)
	str("voice.style", &cfg.Voice.Style)
	str("voice.style_degree", &cfg.Voice.StyleDegree)
	str("voice.role", &cfg.Voice.Role)
	str("voice.output_format", &cfg.Voice.OutputFormat)

	// Pipeline
	flag("streaming", &cfg.Streaming)
	num("lookahead", &cfg.Lookahead)
	flag("strip_markdown", &cfg.StripMarkdown)

	// Sentence detector
	num("sentence.min_length", &cfg.Sentence.MinLength)
	num("sentence.max_length", &cfg.Sentence.MaxLength)
	num("sentence.lead_window", &cfg.Sentence.LeadWindow)

	// HTTP client
	if v.IsSet("http.timeout") {
		cfg.HTTP.Timeout = v.GetDuration("http.timeout")
	}
	num("http.requests_per_minute", &cfg.HTTP.RequestsPerMinute)
	str("http.user_agent", &cfg.HTTP.UserAgent)

	// Voice catalog cache
	str("cache.dir", &cfg.Cache.Dir)
	num("cache.memory_mb", &cfg.Cache.MemoryMB)
	num("cache.disk_mb", &cfg.Cache.DiskMB)
	if v.IsSet("cache.ttl") {
		cfg.Cache.TTL = v.GetDuration("cache.ttl")
	}

	str("server.addr", &cfg.Server.Addr)
	str("log.level", &cfg.Log.Level)

	return cfg
}

// Describe renders the effective configuration with the key masked.
func (c Config) Describe() string {
	key := "(unset)"
	if n := len(c.Key); n > 4 {
		key = "****" + c.Key[n-4:]
	} else if n > 0 {
		key = "****"
	}
	return fmt.Sprintf("region=%s endpoint=%q key=%s voice=%s language=%s format=%s streaming=%t lookahead=%d",
		c.Region, c.Endpoint, key, c.Voice.Voice, c.Voice.Language, c.Voice.OutputFormat, c.Streaming, c.Lookahead)
}
