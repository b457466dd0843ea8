package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input
	ErrCatGraph      ErrorCategory = "graph"      // Dependency graph construction failure
	ErrCatTransition ErrorCategory = "transition" // Illegal state machine event
	ErrCatState      ErrorCategory = "state"      // Session state conflict or divergence
	ErrCatNetwork    ErrorCategory = "network"    // Backend connectivity
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// DomainError represents a structured error from the engine.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
	Details   map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatValidation,
		Code:     code,
		Message:  message,
	}
}

// ErrGraph creates a graph construction error. Fatal to building a graph.
func ErrGraph(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatGraph,
		Code:     code,
		Message:  message,
	}
}

// ErrTransition creates a state machine transition error. Never fatal to the
// engine; callers log and continue.
func ErrTransition(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatTransition,
		Code:     code,
		Message:  message,
	}
}

// ErrRemoteCall creates a backend call error.
func ErrRemoteCall(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatNetwork,
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// ErrState creates a session state error.
func ErrState(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatState,
		Code:     code,
		Message:  message,
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) *DomainError {
	return &DomainError{
		Category: ErrCatNotFound,
		Code:     "NOT_FOUND",
		Message:  fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Retryable
	}
	return false
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// Predefined error codes
const (
	CodeCycleDetected       = "CYCLE_DETECTED"
	CodeUnknownDependency   = "UNKNOWN_DEPENDENCY"
	CodeDuplicateAgent      = "DUPLICATE_AGENT"
	CodeIllegalTransition   = "ILLEGAL_TRANSITION"
	CodeDependencyNotMet    = "DEPENDENCY_NOT_MET"
	CodeNonMonotonic        = "NON_MONOTONIC_PROGRESS"
	CodeBackendUnavailable  = "BACKEND_UNAVAILABLE"
	CodeBackendStatus       = "BACKEND_STATUS"
	CodeInvalidSessionState = "INVALID_SESSION_STATE"
	CodeStaleSession        = "STALE_SESSION"
	CodeSyncDivergence      = "SYNC_DIVERGENCE"
)
