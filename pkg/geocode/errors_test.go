package geocode

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "message only",
			err:      &Error{Kind: KindUnauthorized, StatusCode: 401, Message: "Unauthorized access"},
			expected: "Unauthorized access",
		},
		{
			name:     "message with cause",
			err:      &Error{Kind: KindUpstreamUnreachable, Message: "Error fetching data for address: Berlin", Err: errors.New("connection refused")},
			expected: "Error fetching data for address: Berlin: connection refused",
		},
		{
			name:     "kind only",
			err:      &Error{Kind: KindMalformedResponse},
			expected: "malformed_upstream_response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_IsMatchesKind(t *testing.T) {
	err := NewError(KindInvalidInput, "Invalid address provided")

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("expected errors.Is to match ErrInvalidInput")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Error("errors.Is matched the wrong kind")
	}

	wrapped := fmt.Errorf("lookup: %w", err)
	if !errors.Is(wrapped, ErrInvalidInput) {
		t.Error("expected errors.Is to match through wrapping")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("i/o timeout")
	err := &Error{Kind: KindUpstreamUnreachable, Message: "x", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap did not return the cause")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   Kind
		wantOK bool
	}{
		{"direct", NewError(KindUnauthorized, "x"), KindUnauthorized, true},
		{"wrapped", fmt.Errorf("ctx: %w", NewError(KindMalformedResponse, "x")), KindMalformedResponse, true},
		{"plain error", errors.New("boom"), "", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := KindOf(tt.err)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("KindOf = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
