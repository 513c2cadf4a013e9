// Package apperr classifies pipeline failures and maps them to HTTP statuses.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindAuthorization
	KindValidation
	KindEngine
	KindDelivery
	KindCleanup
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindEngine:
		return "engine"
	case KindDelivery:
		return "delivery"
	case KindCleanup:
		return "cleanup"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Message is safe to show to the caller;
// Err carries the internal cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindAuthorization:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// As extracts an *Error from err, wrapping unclassified errors as delivery
// failures with a generic message.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return New(KindDelivery, "error processing request", err)
}
