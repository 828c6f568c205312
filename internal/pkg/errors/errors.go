// Package errors provides custom error types and error handling utilities.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes.
const (
	// Input errors.
	CodeMalformedInput  = "MALFORMED_INPUT"
	CodeMissingResource = "MISSING_RESOURCE"
	CodeMissingScore    = "MISSING_SCORE"
	CodeInvalidConfig   = "INVALID_CONFIG"

	// Everything else.
	CodeInternal = "INTERNAL_ERROR"
)

// Exit statuses returned by the command line tools.
const (
	ExitOK              = 0
	ExitInternal        = 1
	ExitMalformedInput  = 2
	ExitMissingResource = 3
	ExitMissingScore    = 4
	ExitInvalidConfig   = 5
)

// AppError represents an application error with code and details.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit status for this error.
func (e *AppError) ExitCode() int {
	switch e.Code {
	case CodeMalformedInput:
		return ExitMalformedInput
	case CodeMissingResource:
		return ExitMissingResource
	case CodeMissingScore:
		return ExitMissingScore
	case CodeInvalidConfig:
		return ExitInvalidConfig
	default:
		return ExitInternal
	}
}

// New creates a new AppError.
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError.
func Wrap(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// WithDetail adds a single detail to the error.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Convenience constructors.

// MalformedInputError reports a line that could not be parsed.
func MalformedInputError(path string, line int, message string) *AppError {
	return New(CodeMalformedInput, fmt.Sprintf("%s:%d: %s", path, line, message)).
		WithDetail("path", path).
		WithDetail("line", fmt.Sprintf("%d", line))
}

// MalformedFileError reports an input file a format parser rejected as a
// whole, without a line position.
func MalformedFileError(path string, err error) *AppError {
	return Wrap(CodeMalformedInput, path, err).
		WithDetail("path", path)
}

// MissingResourceError reports an input file that could not be opened.
func MissingResourceError(path string, err error) *AppError {
	return Wrap(CodeMissingResource, fmt.Sprintf("cannot open %s", path), err).
		WithDetail("path", path)
}

// MissingScoreError reports a run without a score for a measure.
func MissingScoreError(table, measure, run string) *AppError {
	return New(CodeMissingScore, fmt.Sprintf("no %s score for run %s in %s table", measure, run, table)).
		WithDetails(map[string]string{
			"table":   table,
			"measure": measure,
			"run":     run,
		})
}

// ConfigError creates an invalid configuration error.
func ConfigError(message string) *AppError {
	return New(CodeInvalidConfig, message)
}

// InternalError creates an internal error.
func InternalError(message string, err error) *AppError {
	return Wrap(CodeInternal, message, err)
}

// Code returns the code of the first AppError in err's chain, or "".
func Code(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// ExitCode returns the exit status for any error.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.ExitCode()
	}
	return ExitInternal
}

// IsMalformed checks if error is a malformed input error.
func IsMalformed(err error) bool {
	return Code(err) == CodeMalformedInput
}

// IsMissingResource checks if error is a missing resource error.
func IsMissingResource(err error) bool {
	return Code(err) == CodeMissingResource
}

// IsMissingScore checks if error is a missing score error.
func IsMissingScore(err error) bool {
	return Code(err) == CodeMissingScore
}

// IsConfig checks if error is a configuration error.
func IsConfig(err error) bool {
	return Code(err) == CodeInvalidConfig
}
