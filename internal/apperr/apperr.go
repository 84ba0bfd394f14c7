// Package apperr classifies failures into kinds that the HTTP boundary maps to status codes.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation      Kind = "validation_error"
	KindNotFound        Kind = "not_found"
	KindForbidden       Kind = "forbidden"
	KindUnauthenticated Kind = "unauthenticated"
	KindAuthentication  Kind = "authentication_error"
	KindInvalidState    Kind = "invalid_state"
	KindUpstream        Kind = "upstream_error"
	KindConflict        Kind = "conflict"
	KindInternal        Kind = "internal"
)

// Error is a classified failure. Msg is safe to show to clients; Err is the cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, cause error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func Validation(format string, args ...any) error {
	return newError(KindValidation, nil, format, args...)
}

func NotFound(format string, args ...any) error {
	return newError(KindNotFound, nil, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newError(KindForbidden, nil, format, args...)
}

func Unauthenticated(format string, args ...any) error {
	return newError(KindUnauthenticated, nil, format, args...)
}

func Authentication(cause error, format string, args ...any) error {
	return newError(KindAuthentication, cause, format, args...)
}

func InvalidState(format string, args ...any) error {
	return newError(KindInvalidState, nil, format, args...)
}

func Upstream(cause error, format string, args ...any) error {
	return newError(KindUpstream, cause, format, args...)
}

func Conflict(format string, args ...any) error {
	return newError(KindConflict, nil, format, args...)
}

func Internal(cause error, format string, args ...any) error {
	return newError(KindInternal, cause, format, args...)
}

// KindOf returns the kind of err. Unclassified deadline errors count as upstream failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindUpstream
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client-facing message for err. Internal causes are never exposed.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Msg
	}
	if KindOf(err) == KindUpstream {
		return "upstream service unavailable"
	}
	return "internal server error"
}

var kindToStatus = map[Kind]int{
	KindValidation:      http.StatusBadRequest,
	KindNotFound:        http.StatusNotFound,
	KindForbidden:       http.StatusForbidden,
	KindUnauthenticated: http.StatusUnauthorized,
	KindAuthentication:  http.StatusBadRequest,
	KindInvalidState:    http.StatusBadRequest,
	KindUpstream:        http.StatusBadGateway,
	KindConflict:        http.StatusConflict,
	KindInternal:        http.StatusInternalServerError,
}

func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if s, ok := kindToStatus[KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
