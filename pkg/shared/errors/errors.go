// Package errors defines the structured error taxonomy used across the
// pipeline (spec §7). Every stage that can fail returns an *AppError so
// the CLI can map failures to distinct exit codes without string
// matching.
package errors

import "fmt"

// ErrorType classifies an AppError along the taxonomy of spec §7.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeInternal   ErrorType = "internal"
	// ErrorTypeBlocked marks a record halted at a verification gate.
	ErrorTypeBlocked ErrorType = "blocked"
	// ErrorTypeGateFail marks a statistical-validation gate failure; not
	// a bug, recorded as data per spec §7 ("Gate failures are data").
	ErrorTypeGateFail ErrorType = "gate_fail"
)

// exitCode is consulted by cmd/researchkit to translate an AppError into
// a process exit code (spec §6: distinct codes for BLOCKED, INVALIDATED, ERROR).
var exitCode = map[ErrorType]int{
	ErrorTypeValidation: 2,
	ErrorTypeAuth:       3,
	ErrorTypeNotFound:   4,
	ErrorTypeConflict:   5,
	ErrorTypeTimeout:    6,
	ErrorTypeRateLimit:  7,
	ErrorTypeDatabase:   10,
	ErrorTypeNetwork:    11,
	ErrorTypeInternal:   1,
	ErrorTypeBlocked:    20,
	ErrorTypeGateFail:   21,
}

// AppError is a structured, wrappable error carrying a classification,
// a human message, optional details, and an optional underlying cause.
type AppError struct {
	Type    ErrorType
	Message string
	Details string
	Cause   error
}

// New creates an AppError of the given type with no cause.
func New(t ErrorType, message string) *AppError {
	return &AppError{Type: t, Message: message}
}

// Newf creates an AppError with a formatted message.
func Newf(t ErrorType, format string, args ...any) *AppError {
	return New(t, fmt.Sprintf(format, args...))
}

// Wrap creates an AppError of the given type around an existing error.
func Wrap(cause error, t ErrorType, message string) *AppError {
	return &AppError{Type: t, Message: message, Cause: cause}
}

// Wrapf creates a Wrap error with a formatted message.
func Wrapf(cause error, t ErrorType, format string, args ...any) *AppError {
	return Wrap(cause, t, fmt.Sprintf(format, args...))
}

// WithDetails attaches (or replaces) the Details field and returns the
// same *AppError, modified in place, for fluent construction.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithDetailsf attaches a formatted Details string.
func (e *AppError) WithDetailsf(format string, args ...any) *AppError {
	e.Details = fmt.Sprintf(format, args...)
	return e
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ExitCode returns 0 for a nil err, the process exit code associated
// with err's type for an *AppError, or 1 (ErrorTypeInternal's code) if
// err is not an *AppError or its type has no entry.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if ae, ok := err.(*AppError); ok {
		if code, known := exitCode[ae.Type]; known {
			return code
		}
	}
	return 1
}

// IsType reports whether err is an *AppError of type t.
func IsType(err error, t ErrorType) bool {
	ae, ok := err.(*AppError)
	return ok && ae.Type == t
}

// Predefined constructors mirroring common failure shapes (spec §7).

func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message)
}

func NewDatabaseError(operation string, cause error) *AppError {
	return Wrapf(cause, ErrorTypeDatabase, "database operation failed: %s", operation)
}

func NewNotFoundError(what string) *AppError {
	return Newf(ErrorTypeNotFound, "%s not found", what)
}

func NewConflictError(message string) *AppError {
	return New(ErrorTypeConflict, message)
}

func NewTimeoutError(operation string) *AppError {
	return Newf(ErrorTypeTimeout, "operation timed out: %s", operation)
}

func NewRateLimitError(resource string) *AppError {
	return Newf(ErrorTypeRateLimit, "rate limit exceeded for %s", resource)
}

func NewBlockedError(reason string) *AppError {
	return New(ErrorTypeBlocked, reason)
}

func NewGateFailError(gate string) *AppError {
	return Newf(ErrorTypeGateFail, "gate failed: %s", gate)
}
