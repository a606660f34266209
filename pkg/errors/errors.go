package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeSession represents browser session lifecycle errors
	ErrorTypeSession ErrorType = "session"
	// ErrorTypeNavigation represents navigation step errors
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeLocate represents element location errors
	ErrorTypeLocate ErrorType = "locate"
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
)

// retryableSubstrings is the fixed classification set for transient browser
// failures. An error whose message contains any of these is eligible for a
// full fresh-session retry.
var retryableSubstrings = []string{
	"invalid session",
	"session invalidated",
	"disconnected",
	"unreachable",
	"timeout",
	"no such session",
	"no such element",
	"stale element",
	"context deadline exceeded",
}

// ScrapeError represents a pipeline-specific error
type ScrapeError struct {
	Type    ErrorType
	Source  string
	Step    string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Type, e.Source)
	if e.Step != "" {
		fmt.Fprintf(&b, " (%s)", e.Step)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, " - %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if a brand-new session attempt may succeed.
// Navigation, location and session errors are classified by message against
// the fixed substring set; network errors are always retryable.
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork:
		return true
	case ErrorTypeSession, ErrorTypeNavigation, ErrorTypeLocate:
		return MessageRetryable(e.Error())
	default:
		return false
	}
}

// MessageRetryable reports whether a raw error message matches the
// retryable classification set.
func MessageRetryable(msg string) bool {
	lower := strings.ToLower(msg)
	for _, s := range retryableSubstrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// IsRetryable classifies an arbitrary error. Typed errors use their own
// classification; untyped errors fall back to the substring set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.IsRetryable()
	}
	return MessageRetryable(err.Error())
}

// New creates a new ScrapeError
func New(errType ErrorType, source, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewSession creates a new session error
func NewSession(source, message string, err error) *ScrapeError {
	return New(ErrorTypeSession, source, message, err)
}

// NewNavigation creates a new navigation error carrying the failed step name
func NewNavigation(source, step, message string, err error) *ScrapeError {
	e := New(ErrorTypeNavigation, source, message, err)
	e.Step = step
	return e
}

// NewLocate creates a new element location error
func NewLocate(source, slot string, err error) *ScrapeError {
	e := New(ErrorTypeLocate, source, "slot exhausted all strategies", err)
	e.Step = slot
	return e
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewValidation creates a new validation error
func NewValidation(source, message string) *ScrapeError {
	return New(ErrorTypeValidation, source, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(source, message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, source, message, err)
}

// NewCache creates a new cache error
func NewCache(source, message string, err error) *ScrapeError {
	return New(ErrorTypeCache, source, message, err)
}
