package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call.
type Kind string

const (
	// KindTransport covers network failures, timeouts and non-2xx responses
	// that carry no application envelope.
	KindTransport Kind = "transport"
	// KindApplication covers envelopes with success=false.
	KindApplication Kind = "application"
)

const (
	fallbackMessage    = "network error, please try again"
	applicationMessage = "API request failed"
)

// Error is the single error type returned by Client for failed calls.
// Message is user-visible; Err keeps the underlying cause, if any.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is a transport-level client error.
func IsTransport(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindTransport
}

// IsApplication reports whether err came from an envelope with success=false.
func IsApplication(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindApplication
}

// StatusCode returns the HTTP status attached to err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func transportError(err error, message string) *Error {
	if message == "" {
		message = fallbackMessage
	}
	return &Error{Kind: KindTransport, Message: message, Err: err}
}

// statusError builds the error for a non-2xx response. A backend message wins,
// then the generic status message.
func statusError(code int, body []byte) *Error {
	env, ok := DecodeEnvelope(body)
	if ok && env.Message != "" {
		return &Error{Kind: KindApplication, StatusCode: code, Message: env.Message}
	}
	if msg := bareMessage(body); msg != "" {
		return &Error{Kind: KindTransport, StatusCode: code, Message: msg}
	}
	kind := KindTransport
	if ok {
		kind = KindApplication
	}
	return &Error{
		Kind:       kind,
		StatusCode: code,
		Message:    fmt.Sprintf("request failed with status code %d", code),
	}
}
