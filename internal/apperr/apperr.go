package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the error taxonomy surfaced to the mobile client.
type Kind string

const (
	Unauthenticated Kind = "unauthenticated"
	InvalidArgument Kind = "invalid-argument"
	NotFound        Kind = "not-found"
	AlreadyExists   Kind = "already-exists"
	Internal        Kind = "internal"
)

// Error is a structured error a handler can render directly.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches the underlying error while keeping the client-facing message.
func Wrap(kind Kind, message string, err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: kind, Message: message, cause: err}
}

// KindOf classifies any error; unknown errors are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Status maps an error kind to its HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case AlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
