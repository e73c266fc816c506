package client

import (
	"errors"
	"fmt"

	"github.com/Sternrassler/batch-dashboard/pkg/batch"
)

// ErrorKind is the tag of an Error.
type ErrorKind string

const (
	// KindAuth marks HTTP 401 responses.
	KindAuth ErrorKind = "auth"

	// KindAPI marks non-2xx responses carrying a structured error body.
	KindAPI ErrorKind = "api"

	// KindTransport marks network failures, unparseable responses and non-2xx
	// responses without a structured body.
	KindTransport ErrorKind = "transport"
)

// AuthenticationMessage is the message of every KindAuth error.
const AuthenticationMessage = "Authentication required. Please log in to continue."

// Error is the error returned by every client request.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	// API is set for KindAPI errors.
	API *batch.APIError
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := fmt.Sprintf("batch %s error", e.Kind)
	if e.StatusCode != 0 {
		prefix = fmt.Sprintf("%s (status %d)", prefix, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a client error anywhere in err's chain, or "" if
// err did not originate from the client.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsAuthentication reports whether err is an authentication error.
func IsAuthentication(err error) bool {
	return KindOf(err) == KindAuth
}

func newAuthError() *Error {
	return &Error{
		Kind:       KindAuth,
		StatusCode: 401,
		Message:    AuthenticationMessage,
	}
}

func newAPIError(status int, body *batch.APIError) *Error {
	msg := body.Message
	if msg == "" {
		msg = body.Reason
	}
	return &Error{
		Kind:       KindAPI,
		StatusCode: status,
		Message:    msg,
		API:        body,
	}
}

func newTransportError(status int, message string, err error) *Error {
	return &Error{
		Kind:       KindTransport,
		StatusCode: status,
		Message:    message,
		Err:        err,
	}
}
