package auth

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind string

const (
	// LoginFailed covers bad credentials and malformed login responses.
	LoginFailed Kind = "LoginFailed"
	// SessionExpired means the session was stale and could not be renewed.
	SessionExpired Kind = "SessionExpired"
	// AuthorizationRejected means the server refused the credentials, even after renewal.
	AuthorizationRejected Kind = "AuthorizationRejected"
	// TransportFailure covers network and response decoding errors.
	TransportFailure Kind = "TransportFailure"
	// StorageCorrupt reports unreadable persisted credentials.
	StorageCorrupt Kind = "StorageCorrupt"
	// HTTPStatus covers any other non-2xx response.
	HTTPStatus Kind = "HTTPStatus"
)

var (
	ErrLoginFailed           = &Error{Kind: LoginFailed}
	ErrSessionExpired        = &Error{Kind: SessionExpired}
	ErrAuthorizationRejected = &Error{Kind: AuthorizationRejected}
	ErrTransportFailure      = &Error{Kind: TransportFailure}
	ErrStorageCorrupt        = &Error{Kind: StorageCorrupt}
	ErrHTTPStatus            = &Error{Kind: HTTPStatus}
)

// Error is returned by every failing Client operation.
type Error struct {
	Kind Kind
	// StatusCode is the HTTP status, or the envelope status_code when the
	// server reported failure inside a 2xx response; zero when no response arrived.
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same Kind, so errors.Is(err, ErrSessionExpired) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of err, or an empty Kind when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(kind Kind, statusCode int, message string, err error) *Error {
	return &Error{Kind: kind, StatusCode: statusCode, Message: message, Err: err}
}

func statusMessage(statusCode int) string {
	return fmt.Sprintf("HTTP error! status: %d", statusCode)
}
