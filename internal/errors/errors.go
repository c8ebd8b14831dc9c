// Package errors provides shared error types for the Trello endpoint invoker.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// MissingParameterError indicates a required parameter was not supplied.
// It is always raised before any network I/O.
type MissingParameterError struct {
	Endpoint  string // tool name, e.g. "trello_get_card"
	Parameter string // parameter name, e.g. "id"
}

func (e *MissingParameterError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("%s: missing required parameter %q", e.Endpoint, e.Parameter)
	}
	return fmt.Sprintf("missing required parameter %q", e.Parameter)
}

// NewMissingParameterError creates a MissingParameterError.
func NewMissingParameterError(endpoint, parameter string) *MissingParameterError {
	return &MissingParameterError{
		Endpoint:  endpoint,
		Parameter: parameter,
	}
}

// HTTPRequestError indicates the Trello API answered with a non-2xx status.
type HTTPRequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *HTTPRequestError) Error() string {
	msg := fmt.Sprintf("%s %s: HTTP %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if body := truncate(string(e.Body), 300); body != "" {
		msg += ": " + body
	}
	return msg
}

// DecodeError reports a response body that could not be decoded as JSON.
// It is soft: the invoker logs it and returns a no-content result.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: response is not valid JSON: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValidationError indicates invalid input parameters.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (may be empty for sensitive data)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsMissingParameter returns true if err is or wraps a MissingParameterError.
func IsMissingParameter(err error) bool {
	var target *MissingParameterError
	return errors.As(err, &target)
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// StatusCode returns the HTTP status carried by an HTTPRequestError, or 0.
func StatusCode(err error) int {
	var target *HTTPRequestError
	if errors.As(err, &target) {
		return target.StatusCode
	}
	return 0
}

// IsNotFound returns true if the Trello API answered 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized returns true if the Trello API rejected the credentials.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
