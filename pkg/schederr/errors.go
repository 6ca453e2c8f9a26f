// Package schederr provides structured error types for the scheduler.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the core pipeline
//   - Machine-readable error codes for programmatic handling
//   - Distinguishing recoverable conditions (timeout) from fatal bugs
//     (inconsistent DAG, schedule violation, transformation inconsistency)
//
// # Error Codes
//
// Codes follow §7 of the scheduler design: parse errors and undefined
// names are surfaced to the CLI and abort the current input; schedule
// violations, inconsistent-DAG, and transformation-inconsistency errors
// are fatal and indicate a bug in the core; timeout is the sole
// recoverable condition, handled internally by falling back to the list
// scheduler.
//
// # Usage
//
//	err := schederr.New(schederr.ErrCodeParse, "line %d: undefined name %q", line, name)
//	if schederr.Is(err, schederr.ErrCodeParse) {
//	    // surface to CLI, abort this input
//	}
package schederr

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes per §7's taxonomy.
const (
	// ErrCodeParse covers malformed DDL/LSD input.
	ErrCodeParse Code = "PARSE_ERROR"
	// ErrCodeUndefinedName covers a DDL input name used before definition.
	ErrCodeUndefinedName Code = "UNDEFINED_NAME"
	// ErrCodeScheduleViolation means check_against_dag failed internally; a bug.
	ErrCodeScheduleViolation Code = "SCHEDULE_VIOLATION"
	// ErrCodeInconsistentDAG means an internal DAG invariant check failed; a bug.
	ErrCodeInconsistentDAG Code = "INCONSISTENT_DAG"
	// ErrCodeTimeout means the exact scheduler exceeded its wall-clock budget.
	// Recoverable: callers fall back to a best-found schedule or the list scheduler.
	ErrCodeTimeout Code = "TIMEOUT"
	// ErrCodeTransformInconsistency means a transformation's emitted chain was
	// missing expected units; a bug.
	ErrCodeTransformInconsistency Code = "TRANSFORM_INCONSISTENCY"
	// ErrCodeInternal is the catch-all for unexpected internal errors.
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Fatal reports whether code indicates a bug rather than a recoverable
// or input-driven condition. Fatal errors should terminate the current
// run with a diagnostic rather than attempt local recovery.
func Fatal(code Code) bool {
	switch code {
	case ErrCodeScheduleViolation, ErrCodeInconsistentDAG, ErrCodeTransformInconsistency, ErrCodeInternal:
		return true
	default:
		return false
	}
}

// Recoverable reports whether code is the scheduler-timeout condition,
// the only error class with an in-process fallback path.
func Recoverable(code Code) bool {
	return code == ErrCodeTimeout
}
