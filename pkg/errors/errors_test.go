package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidWorld, "unknown location: %s", "Cave")

	if err.Code != ErrCodeInvalidWorld {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidWorld)
	}

	if err.Message != "unknown location: Cave" {
		t.Errorf("Message = %v, want %v", err.Message, "unknown location: Cave")
	}

	expected := "INVALID_WORLD: unknown location: Cave"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeStructural, cause, "integrate world")

	if err.Code != ErrCodeStructural {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeStructural)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeNoValidFill, "test"),
			code:     ErrCodeNoValidFill,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeStructural,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeStructural, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeStructural,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("generate: %w", New(ErrCodeCapacity, "too many items")),
			code:     ErrCodeCapacity,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeInvalidConfig, "test"), ErrCodeInvalidConfig},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeNoValidFill, "no valid configuration could be generated"), "no valid configuration could be generated"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidWorld, "x"), 400},
		{New(ErrCodeFileNotFound, "x"), 404},
		{New(ErrCodeNoValidFill, "x"), 422},
		{New(ErrCodeInternal, "x"), 500},
		{errors.New("plain"), 500},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
