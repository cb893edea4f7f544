package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ValidationResult contains the result of checking the service end to end
type ValidationResult struct {
	// Available indicates the key and region were accepted by Azure
	Available bool

	// Error contains any validation error
	Error error

	// Guidance provides setup instructions if validation failed
	Guidance string

	// Details contains additional validation information
	Details map[string]string
}

// Validate checks the configuration before any network call is made.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return configError("missing subscription key", ErrMissingKey, buildKeyGuidance())
	}
	if c.Endpoint == "" && !regionPattern.MatchString(c.Region) {
		return configError(fmt.Sprintf("invalid region %q", c.Region), nil,
			"Regions are lowercase Azure location names such as eastus or westeurope.")
	}
	if strings.TrimSpace(c.Voice.OutputFormat) == "" {
		return configError("missing output format", nil,
			"Set voice.output_format, for example "+DefaultOutputFormat+".")
	}
	if c.Lookahead < 1 {
		return configError(fmt.Sprintf("lookahead must be at least 1, got %d", c.Lookahead), nil,
			"Use 1 for strictly sequential synthesis.")
	}
	if c.Sentence.MaxLength > 0 && c.Sentence.MinLength > c.Sentence.MaxLength {
		return configError(fmt.Sprintf("sentence.min_length %d exceeds sentence.max_length %d",
			c.Sentence.MinLength, c.Sentence.MaxLength), nil, "")
	}
	if c.HTTP.RequestsPerMinute < 0 {
		return configError("http.requests_per_minute must not be negative", nil, "Use 0 to disable rate limiting.")
	}
	return nil
}

// ValidateService checks the configuration and then fetches the voice
// catalog, which proves the key and region are accepted.
func ValidateService(ctx context.Context, cfg Config, catalog VoiceCatalog) *ValidationResult {
	result := &ValidationResult{Details: make(map[string]string)}
	result.Details["region"] = cfg.Region
	if cfg.Endpoint != "" {
		result.Details["endpoint"] = cfg.Endpoint
	}

	if err := cfg.Validate(); err != nil {
		result.Error = err
		result.Guidance = guidanceOf(err)
		return result
	}

	voices, err := catalog.Voices(ctx)
	if err != nil {
		result.Error = err
		result.Guidance = buildServiceGuidance(err)
		return result
	}

	result.Available = true
	result.Details["voices"] = fmt.Sprint(len(voices))

	locale := ResolveLocale(voices, cfg.Voice.Language)
	result.Details["language"] = locale
	if found := findVoice(voices, cfg.Voice.Voice); found != nil {
		result.Details["voice"] = found.ShortName + " (" + found.Locale + ")"
	} else {
		result.Details["voice"] = cfg.Voice.Voice + " (not in catalog)"
		result.Guidance = "The configured voice was not found. Run `ttsgate voices " + locale + "` to list voices."
	}
	return result
}

func configError(msg string, cause error, guidance string) *TTSError {
	err := NewTTSError(ErrorCodeConfiguration, msg, cause)
	if guidance != "" {
		err.WithContext("guidance", guidance)
	}
	return err
}

func guidanceOf(err error) string {
	var te *TTSError
	if errors.As(err, &te) {
		if g, ok := te.Context["guidance"].(string); ok {
			return g
		}
	}
	return ""
}

func buildKeyGuidance() string {
	return `An Azure Speech subscription key is required. To configure one:

1. Create a Speech resource in the Azure portal and copy one of its keys.

2. Add it to the config file (ttsgate config):
   key: <your key>
   region: eastus

3. Or export it:
   export TTSGATE_KEY=<your key>
   export TTSGATE_REGION=eastus`
}

func buildServiceGuidance(err error) string {
	switch CodeOf(err) {
	case ErrorCodeSynthesisAuth:
		return "Azure rejected the key. Check that the key belongs to a Speech resource in the configured region."
	case ErrorCodeSynthesisQuota:
		return "The Speech resource is over its quota. Wait, or move to a higher pricing tier."
	case ErrorCodeSynthesisNetwork:
		return "Azure could not be reached. Check the region name, any custom endpoint, and network access."
	default:
		return ""
	}
}
