// Package apperr defines the error taxonomy shared across the identity
// service. Every expected failure is modelled as a typed kind so callers can
// branch on the kind at compile time instead of matching message strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport boundary.
type Kind string

const (
	KindValidation     Kind = "validation"     // malformed or missing input
	KindConflict       Kind = "conflict"       // duplicate resource
	KindAuthentication Kind = "authentication" // bad credentials or tokens
	KindNotFound       Kind = "not_found"      // missing resource
	KindUnavailable    Kind = "unavailable"    // backing store timeout or outage
)

// Error carries a kind, a client-safe message and an optional internal cause.
// The cause is never surfaced to clients; it exists for diagnostics only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind with a client-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches an internal cause to a kinded error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error     { return New(KindValidation, message) }
func Conflict(message string) *Error       { return New(KindConflict, message) }
func Authentication(message string) *Error { return New(KindAuthentication, message) }
func NotFound(message string) *Error       { return New(KindNotFound, message) }

// Unavailable wraps a store outage or timeout. The client-visible message is
// deliberately generic.
func Unavailable(err error) *Error {
	return Wrap(KindUnavailable, "store unavailable", err)
}

// KindOf returns the kind of err, or the empty Kind when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the client-safe message of err, or a generic fallback.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
