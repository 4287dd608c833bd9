package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorInvalidID     = errors.New("invalid identifier")

	// Service-level causes: ErrorInternal marks unexpected failures,
	// ErrorUnauthorized a mutation attempted without an identity.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Kind classifies an operation failure. Transports map kinds to their own
// status codes; the message attached to an Error is safe to show to callers.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindConflict
	KindUnauthenticated
	KindNotFound
	KindUpstreamFailure
	// KindEmpty is the soft "nothing to show" outcome of a listing.
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindUpstreamFailure:
		return "upstream_failure"
	case KindEmpty:
		return "empty"
	default:
		return "internal"
	}
}

// Error is a classified failure with an outward message and an optional
// internal cause. The cause is never rendered to clients in production.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError returns a classified error without an internal cause.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError returns a classified error that keeps err as its cause.
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of err. Unclassified errors are internal, except
// bare repository and token sentinels which keep their natural meaning.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrorNotFound):
		return KindNotFound
	case errors.Is(err, ErrorAlreadyExists):
		return KindConflict
	case errors.Is(err, ErrorInvalidID):
		return KindInvalidInput
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired), errors.Is(err, ErrorUnauthorized):
		return KindUnauthenticated
	case errors.Is(err, ErrorInternal):
		return KindInternal
	}
	return KindInternal
}

// MessageOf returns the outward message of err. Internal failures never
// expose their cause.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	switch KindOf(err) {
	case KindNotFound:
		return "Resource not found"
	case KindConflict:
		return "Duplicate value"
	case KindInvalidInput:
		return "Invalid input"
	case KindUnauthenticated:
		return "Invalid token"
	}
	return "Internal server error"
}
