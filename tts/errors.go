package tts

import (
	"errors"
	"fmt"
)

// Common errors for the TTS system.
var (
	// Environment errors
	ErrUnsupported = errors.New("speech synthesis is not supported in this environment")

	// Input errors
	ErrEmptyInput = errors.New("please enter some text to speak")

	// Voice errors
	ErrNoVoices      = errors.New("no voices available")
	ErrVoiceNotFound = errors.New("requested voice not found")

	// Provider errors
	ErrSynthesis      = errors.New("speech synthesis failed")
	ErrProviderClosed = errors.New("provider has been closed")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("required configuration missing")
)

// IsRecoverableError checks if an error is recoverable. Only a missing
// capability or a broken configuration ends the session.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}

	switch {
	case errors.Is(err, ErrUnsupported),
		errors.Is(err, ErrProviderClosed),
		errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrMissingConfig):
		return false
	}

	return true
}

// SynthesisError is a provider failure carrying the provider's error code.
type SynthesisError struct {
	Code string // Provider error code, e.g. "network" or "synthesis-failed"
	Err  error  // The underlying error
}

// Error implements the error interface.
func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Err)
	}
	return e.Code
}

// Unwrap returns the underlying error.
func (e *SynthesisError) Unwrap() []error {
	return []error{ErrSynthesis, e.Err}
}

// NewSynthesisError creates a synthesis error with a code.
func NewSynthesisError(code string, err error) *SynthesisError {
	if code == "" {
		code = "synthesis-failed"
	}
	return &SynthesisError{Code: code, Err: err}
}

// ErrorCode extracts the provider error code from err, if any.
func ErrorCode(err error) string {
	var se *SynthesisError
	if errors.As(err, &se) {
		return se.Code
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
