// Package apperror defines the error taxonomy shared by every service
// operation. Handlers map kinds to HTTP status codes; services never panic.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an operation failure.
type Kind int

const (
	// KindNotFound means a referenced entity does not exist.
	KindNotFound Kind = iota + 1
	// KindForbidden means the caller's role or ownership fails the gate.
	KindForbidden
	// KindConflict means a uniqueness constraint was violated.
	KindConflict
	// KindValidation means structurally invalid input.
	KindValidation
	// KindAllocationExhausted means batch-number retries ran out. Fatal for
	// the operation; surfaced as a 5xx condition.
	KindAllocationExhausted
	// KindUpstreamUnavailable means the blob store or auth provider failed.
	KindUpstreamUnavailable
)

// Error carries a kind and a caller-facing message. Wrapped causes are
// preserved for logging.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match two *Error values by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newf(KindForbidden, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

func AllocationExhausted(format string, args ...interface{}) *Error {
	return newf(KindAllocationExhausted, format, args...)
}

// UpstreamUnavailable wraps a collaborator failure (blob store, auth
// provider) without swallowing the cause.
func UpstreamUnavailable(cause error, format string, args ...interface{}) *Error {
	e := newf(KindUpstreamUnavailable, format, args...)
	e.cause = cause
	return e
}

// KindOf extracts the kind from err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the status code the HTTP layer should return.
// Unclassified errors are treated as internal.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindAllocationExhausted:
		return http.StatusInternalServerError
	case KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
