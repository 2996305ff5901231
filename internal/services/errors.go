package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a pipeline failure so callers can branch on cause
// instead of matching free-text messages.
type ErrorKind string

const (
	ErrKindTransient     ErrorKind = "upstream_transient"
	ErrKindPermanent     ErrorKind = "upstream_permanent"
	ErrKindConfigMissing ErrorKind = "configuration_missing"
	ErrKindNotFound      ErrorKind = "not_found"
)

// PipelineError wraps an underlying error with its kind and the operation
// that produced it.
type PipelineError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Transient marks an error as a retryable upstream failure
func Transient(op string, err error) *PipelineError {
	return &PipelineError{Kind: ErrKindTransient, Op: op, Err: err}
}

// Permanent marks an error as a non-retryable upstream failure
func Permanent(op string, err error) *PipelineError {
	return &PipelineError{Kind: ErrKindPermanent, Op: op, Err: err}
}

// ConfigMissing marks an error caused by an absent credential or setting
func ConfigMissing(op string, err error) *PipelineError {
	return &PipelineError{Kind: ErrKindConfigMissing, Op: op, Err: err}
}

// NotFound marks a lookup failure for an unknown identifier
func NotFound(op string, err error) *PipelineError {
	return &PipelineError{Kind: ErrKindNotFound, Op: op, Err: err}
}

// KindOf returns the error's kind, defaulting to permanent for untagged errors
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrKindPermanent
}

// transientMarkers are the substrings that identify a retryable upstream
// failure in an error message.
var transientMarkers = []string{
	"503",
	"service unavailable",
	"timed out",
}

// IsTransientMessage reports whether an upstream error message looks like a
// transient unavailability (matched case-insensitively by substring).
func IsTransientMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range transientMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
