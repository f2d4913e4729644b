// Package errors provides structured error types for vkgraph.
//
// Errors carry a machine-readable [Code] so the CLI can tell fatal
// configuration problems apart from the soft failures the crawler absorbs:
//   - INVALID_*: input and configuration validation failures
//   - NOT_FOUND: an identity the API does not know about
//   - NETWORK_ERROR, TIMEOUT: transport failures talking to the API
//   - API_ERROR: an error payload inside a successful HTTP response
//   - SINK_ERROR: a graph store write or query failed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "access token is required")
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // refuse to start
//	}
//
//	err := errors.Wrap(errors.ErrCodeSink, origErr, "upsert identity %d", key)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidSeed   Code = "INVALID_SEED"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Remote API errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"
	ErrCodeAPI     Code = "API_ERROR"

	// Graph store errors
	ErrCodeSink Code = "SINK_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// Is reports whether any *Error in err's chain carries code, so a sink
// failure wrapped as an invalid seed still matches both codes.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// if there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns err without its code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
