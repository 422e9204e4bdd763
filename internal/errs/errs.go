// Package errs provides structured error types for the watermarker.
//
// Every failure that concerns a file carries the offending path so the
// caller can report "which file, and why" without parsing messages.
//
// # Error Codes
//
//   - INVALID_CONFIG: a configuration value is out of range or malformed.
//     Fatal for the whole invocation; detected before any image work.
//   - INVALID_PATH: an input, mark, or output path is missing or has an
//     unsupported extension. Also a configuration failure.
//   - DECODE_FAILED: a canvas or mark file is missing, unreadable, or corrupt.
//     Fatal only to the image it concerns.
//   - ENCODE_FAILED: the composited image could not be written.
//     Fatal only to the image it concerns.
//   - MARK_TOO_LARGE: the scaled mark would exceed watermark.MaxMarkPixels.
//     Fatal only to the image it concerns.
//   - DEGENERATE_GEOMETRY: the scaled mark or tile step collapsed to zero.
//     Never returned as a failure; reported as a warning.
//   - CANCELLED: the operation was aborted through its context.
//
// # Usage
//
//	err := errs.New(errs.CodeInvalidConfig, "proportion must be in (0, 1], got %g", p)
//	if errs.Is(err, errs.CodeInvalidConfig) {
//	    // abort the whole run
//	}
//
//	err = errs.Wrap(errs.CodeDecode, cause, "failed to decode image").WithPath(path)
package errs

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	CodeInvalidConfig Code = "INVALID_CONFIG"
	CodeInvalidPath   Code = "INVALID_PATH"
	CodeDecode        Code = "DECODE_FAILED"
	CodeEncode        Code = "ENCODE_FAILED"
	CodeTooLarge      Code = "MARK_TOO_LARGE"
	CodeDegenerate    Code = "DEGENERATE_GEOMETRY"
	CodeCancelled     Code = "CANCELLED"
)

// Error is a structured error with a code, an optional file path and an
// optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Path    string // File the error concerns (optional)
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithPath sets the file path the error concerns and returns e.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
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

// IsFatal reports whether err must abort the whole invocation rather than
// a single image. Configuration and path errors are fatal; decode, encode
// and cancellation errors concern one image only.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case CodeInvalidConfig, CodeInvalidPath:
		return true
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the path and message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}
