package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMissingParameterError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *MissingParameterError
		expected string
	}{
		{
			name:     "with endpoint",
			err:      &MissingParameterError{Endpoint: "trello_get_card", Parameter: "id"},
			expected: `trello_get_card: missing required parameter "id"`,
		},
		{
			name:     "without endpoint",
			err:      &MissingParameterError{Parameter: "idList"},
			expected: `missing required parameter "idList"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("MissingParameterError.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestHTTPRequestError_Error(t *testing.T) {
	err := &HTTPRequestError{
		Method:     "GET",
		Path:       "/cards/abc",
		StatusCode: 404,
		Body:       []byte("The requested resource was not found."),
	}

	got := err.Error()
	want := "GET /cards/abc: HTTP 404 Not Found: The requested resource was not found."
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestHTTPRequestError_TruncatesBody(t *testing.T) {
	err := &HTTPRequestError{
		Method:     "PUT",
		Path:       "/cards/abc",
		StatusCode: 500,
		Body:       []byte(strings.Repeat("x", 1000)),
	}

	got := err.Error()
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncated body, got %q", got)
	}
	if len(got) > 400 {
		t.Errorf("error message too long: %d chars", len(got))
	}
}

func TestHTTPRequestError_EmptyBody(t *testing.T) {
	err := &HTTPRequestError{Method: "DELETE", Path: "/cards/abc", StatusCode: 401}
	if got := err.Error(); got != "DELETE /cards/abc: HTTP 401 Unauthorized" {
		t.Errorf("Error() = %q", got)
	}
}

func TestStatusCodeHelpers(t *testing.T) {
	notFound := fmt.Errorf("wrapped: %w", &HTTPRequestError{StatusCode: 404})
	unauthorized := &HTTPRequestError{StatusCode: 401}
	forbidden := &HTTPRequestError{StatusCode: 403}
	plain := errors.New("boom")

	if StatusCode(notFound) != 404 {
		t.Errorf("StatusCode(notFound) = %d, want 404", StatusCode(notFound))
	}
	if StatusCode(plain) != 0 {
		t.Errorf("StatusCode(plain) = %d, want 0", StatusCode(plain))
	}
	if !IsNotFound(notFound) {
		t.Error("IsNotFound should be true for wrapped 404")
	}
	if IsNotFound(unauthorized) {
		t.Error("IsNotFound should be false for 401")
	}
	if !IsUnauthorized(unauthorized) || !IsUnauthorized(forbidden) {
		t.Error("IsUnauthorized should be true for 401 and 403")
	}
	if IsUnauthorized(plain) {
		t.Error("IsUnauthorized should be false for plain errors")
	}
}

func TestDecodeError(t *testing.T) {
	inner := errors.New("invalid character 'x'")
	err := &DecodeError{Endpoint: "trello_delete_card", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("DecodeError should unwrap to inner error")
	}
	if !strings.Contains(err.Error(), "trello_delete_card") {
		t.Errorf("Error() should mention endpoint, got %q", err.Error())
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		expected string
	}{
		{
			name:     "with field and value",
			err:      &ValidationError{Field: "pos", Value: "middle", Message: "must be top, bottom or a number"},
			expected: `validation failed for pos="middle": must be top, bottom or a number`,
		},
		{
			name:     "with field only",
			err:      &ValidationError{Field: "token", Message: "is required"},
			expected: "validation failed for token: is required",
		},
		{
			name:     "message only",
			err:      &ValidationError{Message: "something went wrong"},
			expected: "validation failed: something went wrong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestIsMissingParameter(t *testing.T) {
	if !IsMissingParameter(NewMissingParameterError("x", "id")) {
		t.Error("expected true for MissingParameterError")
	}
	if !IsMissingParameter(fmt.Errorf("call failed: %w", NewMissingParameterError("x", "id"))) {
		t.Error("expected true for wrapped MissingParameterError")
	}
	if IsMissingParameter(NewValidationError("id", "", "bad")) {
		t.Error("expected false for ValidationError")
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(NewValidationError("field", "value", "message")) {
		t.Error("expected true for ValidationError")
	}
	if IsValidation(errors.New("generic error")) {
		t.Error("expected false for generic error")
	}
	if IsValidation(nil) {
		t.Error("expected false for nil")
	}
}
