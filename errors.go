package codeshift

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrModelUnavailable is matched by every model failure.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrValidationFailed is matched by rejected model output.
	ErrValidationFailed = errors.New("model output failed validation")
	// ErrNoRuleAvailable is matched when no rule table exists for a language pair.
	ErrNoRuleAvailable = errors.New("no rule available")
	// ErrBusy is returned when a session already has a request in flight.
	ErrBusy = errors.New("conversion already in progress")
	// ErrEmptySource is returned for empty or whitespace-only source code.
	ErrEmptySource = errors.New("source code is empty")
	// ErrSameLanguage is returned when a target equals the source language.
	ErrSameLanguage = errors.New("target language must differ from source")
	// ErrUnsupportedLanguage is matched by unknown language identifiers.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrConversionFailed is returned when a conversion aborted unexpectedly.
	ErrConversionFailed = errors.New("conversion failed")
	// ErrInvalidSettings is matched by rejected settings updates.
	ErrInvalidSettings = errors.New("invalid settings")
	// ErrCorruptState is matched when a persisted snapshot cannot be decoded.
	ErrCorruptState = errors.New("corrupt state")
)

// ModelUnavailableError indicates the model endpoint could not produce a usable result
// (transport error, timeout, non-2xx status, empty or too-short response).
type ModelUnavailableError struct {
	Message    string
	Cause      error
	StatusCode int // HTTP status when the endpoint answered, 0 otherwise
}

func (e *ModelUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model unavailable: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("model unavailable: %s", e.Message)
}

func (e *ModelUnavailableError) Unwrap() error {
	return e.Cause
}

// Is matches ErrModelUnavailable.
func (e *ModelUnavailableError) Is(target error) bool {
	return target == ErrModelUnavailable
}

// ValidationError indicates model output that cannot be used as code.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Reason)
}

// Is matches ErrValidationFailed and ErrModelUnavailable, since rejected
// output is handled exactly like an unavailable model.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed || target == ErrModelUnavailable
}

// NoRuleError indicates that no rule table exists for a language pair.
type NoRuleError struct {
	From Language
	To   Language
}

func (e *NoRuleError) Error() string {
	return fmt.Sprintf("no rule available for %s -> %s", e.From, e.To)
}

// Is matches ErrNoRuleAvailable.
func (e *NoRuleError) Is(target error) bool {
	return target == ErrNoRuleAvailable
}

// UnsupportedLanguageError indicates an unknown language identifier.
type UnsupportedLanguageError struct {
	Name string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %q", e.Name)
}

// Is matches ErrUnsupportedLanguage.
func (e *UnsupportedLanguageError) Is(target error) bool {
	return target == ErrUnsupportedLanguage
}

// CacheError indicates a pattern cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// StoreError indicates a state store failure.
type StoreError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("store error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("store error: %s", e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}
