package tts

import (
	"errors"
	"fmt"
)

// Common TTS errors
var (
	// ErrSessionDone is returned by writes to a session that was closed or aborted
	ErrSessionDone = errors.New("session is done")

	// ErrNothingToSpeak indicates the input held no letters or digits
	ErrNothingToSpeak = errors.New("no speakable text")

	// ErrMissingKey indicates no subscription key was configured
	ErrMissingKey = errors.New("no Azure subscription key configured")
)

// TTSError represents a TTS-specific error with additional context
type TTSError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *TTSError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *TTSError) Unwrap() error {
	return e.Cause
}

// ErrorCode identifies specific error types
type ErrorCode string

const (
	// Setup errors
	ErrorCodeConfiguration ErrorCode = "CONFIGURATION"

	// Input errors
	ErrorCodeSanitization ErrorCode = "SANITIZATION"

	// Synthesis errors
	ErrorCodeSynthesisAuth    ErrorCode = "SYNTHESIS_AUTH"
	ErrorCodeSynthesisQuota   ErrorCode = "SYNTHESIS_QUOTA"
	ErrorCodeSynthesisNetwork ErrorCode = "SYNTHESIS_NETWORK"
	ErrorCodeSynthesisMarkup  ErrorCode = "SYNTHESIS_MARKUP"
	ErrorCodeSynthesisEmpty   ErrorCode = "SYNTHESIS_EMPTY"

	// Session errors
	ErrorCodeStreamAborted ErrorCode = "STREAM_ABORTED"
)

// NewTTSError creates a new TTS error with context
func NewTTSError(code ErrorCode, message string, cause error) *TTSError {
	return &TTSError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *TTSError) WithContext(key string, value interface{}) *TTSError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// IsFatal returns true if no later request can succeed without operator action
func (e *TTSError) IsFatal() bool {
	switch e.Code {
	case ErrorCodeConfiguration,
		ErrorCodeSynthesisAuth:
		return true
	default:
		return false
	}
}

// IsRetryable returns true if the same request could succeed later.
// Nothing in this module retries; callers decide.
func (e *TTSError) IsRetryable() bool {
	switch e.Code {
	case ErrorCodeSynthesisQuota:
		return true
	case ErrorCodeSynthesisNetwork:
		status, ok := e.Context["status"].(int)
		return !ok || status >= 500
	default:
		return false
	}
}

// IsSynthesis reports whether the error came from the synthesis endpoint.
func (e *TTSError) IsSynthesis() bool {
	switch e.Code {
	case ErrorCodeSynthesisAuth,
		ErrorCodeSynthesisQuota,
		ErrorCodeSynthesisNetwork,
		ErrorCodeSynthesisMarkup,
		ErrorCodeSynthesisEmpty:
		return true
	default:
		return false
	}
}

// CodeOf returns the code of the first TTSError in err's chain, or "" if
// there is none.
func CodeOf(err error) ErrorCode {
	var te *TTSError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsFatal reports whether err carries a fatal TTSError.
func IsFatal(err error) bool {
	var te *TTSError
	return errors.As(err, &te) && te.IsFatal()
}

// IsRetryable reports whether err carries a retryable TTSError.
func IsRetryable(err error) bool {
	var te *TTSError
	return errors.As(err, &te) && te.IsRetryable()
}

func aborted(cause error) *TTSError {
	return NewTTSError(ErrorCodeStreamAborted, "stream aborted", cause)
}
