package client

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Sternrassler/batch-dashboard/pkg/batch"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "authentication",
			err:      newAuthError(),
			expected: "batch auth error (status 401): " + AuthenticationMessage,
		},
		{
			name:     "api error",
			err:      newAPIError(404, &batch.APIError{Status: 404, Reason: "Not Found", Message: "Job instance 9 not found"}),
			expected: "batch api error (status 404): Job instance 9 not found",
		},
		{
			name:     "api error without message uses reason",
			err:      newAPIError(400, &batch.APIError{Status: 400, Reason: "Bad Request"}),
			expected: "batch api error (status 400): Bad Request",
		},
		{
			name:     "transport error with wrapped error",
			err:      newTransportError(0, "request failed", errors.New("connection refused")),
			expected: "batch transport error: request failed: connection refused",
		},
		{
			name:     "transport error with status",
			err:      newTransportError(502, "HTTP error 502: Bad Gateway", nil),
			expected: "batch transport error (status 502): HTTP error 502: Bad Gateway",
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

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: timeout")
	err := newTransportError(0, "request failed", inner)

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
	if newAuthError().Unwrap() != nil {
		t.Error("auth error should wrap nothing")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"foreign error", errors.New("boom"), ""},
		{"auth", newAuthError(), KindAuth},
		{"wrapped auth", fmt.Errorf("load: %w", newAuthError()), KindAuth},
		{"api", newAPIError(500, &batch.APIError{Message: "x"}), KindAPI},
		{"transport", newTransportError(0, "x", nil), KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}

	if !IsAuthentication(fmt.Errorf("wrap: %w", newAuthError())) {
		t.Error("IsAuthentication should see through wrapping")
	}
	if IsAuthentication(newAPIError(403, &batch.APIError{Message: "forbidden"})) {
		t.Error("403 is not an authentication error")
	}
}
