// Package errors provides standardized error types for the analysis pipeline.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for pipeline failures.
const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeNotFound        = "NOT_FOUND"
	CodeIOFailed        = "IO_FAILED"
	CodeParseFailed     = "PARSE_FAILED"
	CodeWarehouseFailed = "WAREHOUSE_FAILED"
	CodeInternal        = "INTERNAL_ERROR"
)

// PipelineError represents a pipeline error with a code, message, and optional cause.
type PipelineError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by code.
func (e *PipelineError) Is(target error) bool {
	t, ok := target.(*PipelineError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail adds a single detail to the error.
func (e *PipelineError) WithDetail(key string, value interface{}) *PipelineError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Common errors.
var (
	ErrInputNotFound = &PipelineError{Code: CodeNotFound, Message: "input file not found"}
	ErrEmptyInput    = &PipelineError{Code: CodeInvalidInput, Message: "input contains no data rows"}
	ErrMissingHeader = &PipelineError{Code: CodeParseFailed, Message: "input is missing required header fields"}
)

// New creates a new PipelineError with the given code and message.
func New(code, message string) *PipelineError {
	return &PipelineError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new PipelineError with a formatted message.
func Newf(code, format string, args ...interface{}) *PipelineError {
	return &PipelineError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with a PipelineError.
func Wrap(err error, code, message string) *PipelineError {
	if err == nil {
		return nil
	}
	return &PipelineError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code, format string, args ...interface{}) *PipelineError {
	if err == nil {
		return nil
	}
	return &PipelineError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// GetCode extracts the error code from an error, returning CodeInternal for
// errors that are not PipelineErrors.
func GetCode(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return CodeInternal
}
