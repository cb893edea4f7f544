package engines

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/ttsgate/internal/cache"
	"github.com/dgnsrekt/ttsgate/internal/ssml"
	"github.com/dgnsrekt/ttsgate/internal/tts"
)

const (
	synthesisPath = "/cognitiveservices/v1"
	voicesPath    = "/cognitiveservices/voices/list"

	// maxAudioSize bounds a single response body.
	maxAudioSize = 50 * 1024 * 1024

	// maxErrorBody bounds how much of an error response ends up in a message.
	maxErrorBody = 512
)

var (
	_ tts.Synthesizer  = (*AzureEngine)(nil)
	_ tts.VoiceCatalog = (*AzureEngine)(nil)
)

// AzureEngine implements tts.Synthesizer against the Azure speech REST API.
// It is safe for concurrent use.
type AzureEngine struct {
	key       string
	baseURL   string
	userAgent string

	client      *http.Client
	rateLimiter *rate.Limiter
	cache       *cache.Store
	logger      *log.Logger
}

// AzureConfig holds configuration for the Azure engine.
type AzureConfig struct {
	// Subscription key of the Speech resource
	Key string

	// Region such as "eastus", used to derive the host
	Region string

	// Endpoint overrides the region-derived base URL when set
	Endpoint string

	// Timeout per HTTP request (defaults to 30s)
	Timeout time.Duration

	// Rate limit in requests per minute; 0 disables limiting
	RequestsPerMinute int

	// Burst of requests allowed above the rate (defaults to 1)
	Burst int

	// User-Agent header (defaults to "ttsgate")
	UserAgent string

	// Cache holds the voice catalog (optional)
	Cache *cache.Store

	// HTTPClient replaces the default client (optional)
	HTTPClient *http.Client

	Logger *log.Logger
}

// AzureConfigFrom extracts the engine settings from the gateway config.
func AzureConfigFrom(cfg tts.Config) AzureConfig {
	return AzureConfig{
		Key:               cfg.Key,
		Region:            cfg.Region,
		Endpoint:          cfg.Endpoint,
		Timeout:           cfg.HTTP.Timeout,
		RequestsPerMinute: cfg.HTTP.RequestsPerMinute,
		UserAgent:         cfg.HTTP.UserAgent,
	}
}

// NewAzureEngine creates a new Azure engine.
func NewAzureEngine(config AzureConfig) (*AzureEngine, error) {
	if strings.TrimSpace(config.Key) == "" {
		return nil, tts.NewTTSError(tts.ErrorCodeConfiguration, "missing subscription key", tts.ErrMissingKey)
	}

	baseURL := strings.TrimRight(config.Endpoint, "/")
	if baseURL == "" {
		if config.Region == "" {
			return nil, tts.NewTTSError(tts.ErrorCodeConfiguration, "region or endpoint required", nil)
		}
		baseURL = "https://" + config.Region + ".tts.speech.microsoft.com"
	}

	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = tts.DefaultUserAgent
	}
	if config.Burst < 1 {
		config.Burst = 1
	}

	limit := rate.Inf
	if config.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(config.RequestsPerMinute))
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}

	logger := config.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("azure")
	}

	return &AzureEngine{
		key:         config.Key,
		baseURL:     baseURL,
		userAgent:   config.UserAgent,
		client:      client,
		rateLimiter: rate.NewLimiter(limit, config.Burst),
		cache:       config.Cache,
		logger:      logger,
	}, nil
}

// BaseURL returns the host the engine talks to.
func (e *AzureEngine) BaseURL() string {
	return e.baseURL
}

// Synthesize posts a speak document holding the already escaped text and
// returns the audio body.
func (e *AzureEngine) Synthesize(ctx context.Context, text string, params tts.VoiceParameters) (tts.AudioChunk, error) {
	if text == "" {
		return tts.AudioChunk{}, tts.NewTTSError(tts.ErrorCodeSanitization, "empty text", tts.ErrNothingToSpeak)
	}
	format := params.OutputFormat
	if format == "" {
		format = tts.DefaultOutputFormat
	}

	if err := e.rateLimiter.Wait(ctx); err != nil {
		return tts.AudioChunk{}, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	doc := ssml.Envelope(envelopeVoice(params), text)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+synthesisPath, strings.NewReader(doc))
	if err != nil {
		return tts.AudioChunk{}, tts.NewTTSError(tts.ErrorCodeConfiguration, "invalid endpoint", err)
	}
	e.authorize(req)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", format)

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return tts.AudioChunk{}, transportError(ctx, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode/100 != 2 {
		return tts.AudioChunk{}, statusError(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioSize+1))
	if err != nil {
		return tts.AudioChunk{}, transportError(ctx, err)
	}
	if len(data) > maxAudioSize {
		return tts.AudioChunk{}, tts.NewTTSError(tts.ErrorCodeSynthesisNetwork,
			fmt.Sprintf("audio response larger than %d bytes", maxAudioSize), nil)
	}
	if len(data) == 0 {
		return tts.AudioChunk{}, tts.NewTTSError(tts.ErrorCodeSynthesisEmpty, "service returned no audio", nil)
	}

	e.logger.Debug("synthesis response",
		"voice", params.Voice,
		"status", resp.StatusCode,
		"bytes", len(data),
		"took", time.Since(start).Round(time.Millisecond))

	return tts.AudioChunk{Format: format, Data: data}, nil
}

// Voices returns the voice catalog of the region. The catalog is cached
// for the cache TTL when a cache is configured.
func (e *AzureEngine) Voices(ctx context.Context) ([]tts.Voice, error) {
	var (
		raw []byte
		err error
	)
	if e.cache != nil {
		raw, err = e.cache.GetOrLoad(ctx, cache.Key("voices", e.baseURL), e.fetchVoices)
	} else {
		raw, err = e.fetchVoices(ctx)
	}
	if err != nil {
		return nil, err
	}

	var voices []tts.Voice
	if err := json.Unmarshal(raw, &voices); err != nil {
		if e.cache != nil {
			_ = e.cache.Delete(cache.Key("voices", e.baseURL))
		}
		return nil, tts.NewTTSError(tts.ErrorCodeSynthesisNetwork, "malformed voice list", err)
	}
	return voices, nil
}

func (e *AzureEngine) fetchVoices(ctx context.Context) ([]byte, error) {
	if err := e.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+voicesPath, nil)
	if err != nil {
		return nil, tts.NewTTSError(tts.ErrorCodeConfiguration, "invalid endpoint", err)
	}
	e.authorize(req)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioSize))
	if err != nil {
		return nil, transportError(ctx, err)
	}
	if !json.Valid(raw) {
		return nil, tts.NewTTSError(tts.ErrorCodeSynthesisNetwork, "malformed voice list", nil)
	}

	e.logger.Debug("fetched voice catalog", "bytes", len(raw))
	return raw, nil
}

func (e *AzureEngine) authorize(req *http.Request) {
	req.Header.Set("Ocp-Apim-Subscription-Key", e.key)
	req.Header.Set("User-Agent", e.userAgent)
}

func envelopeVoice(p tts.VoiceParameters) ssml.Voice {
	return ssml.Voice{
		Language:    p.Language,
		Name:        p.Voice,
		Rate:        p.Rate,
		Pitch:       p.Pitch,
		Volume:      p.Volume,
		Style:       p.Style,
		StyleDegree: p.StyleDegree,
		Role:        p.Role,
	}
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(bytes.ToValidUTF8(body, nil)))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	var code tts.ErrorCode
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = tts.ErrorCodeSynthesisAuth
	case http.StatusTooManyRequests:
		code = tts.ErrorCodeSynthesisQuota
	case http.StatusBadRequest:
		code = tts.ErrorCodeSynthesisMarkup
	default:
		code = tts.ErrorCodeSynthesisNetwork
	}

	return tts.NewTTSError(code, fmt.Sprintf("azure returned %d: %s", resp.StatusCode, msg), nil).
		WithContext("status", resp.StatusCode)
}

func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var te *tts.TTSError
	if errors.As(err, &te) {
		return te
	}
	return tts.NewTTSError(tts.ErrorCodeSynthesisNetwork, "request failed", err)
}
