// Package apperrors defines the error taxonomy shared by every Lambda.
//
// The admin API distinguishes five failure kinds: invalid input, duplicate
// email, missing caller credential, insufficient permission, and a failed
// call to an external system (Cognito or PostgreSQL). Handlers map kinds to
// HTTP statuses; internal logs always keep the precise kind even where the
// creation gateway collapses statuses in its response envelope.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an Error for logging and HTTP status mapping.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindExternal     Kind = "external"
)

// Error is a classified failure with a short user-facing message.
// The wrapped cause, if any, stays internal and never reaches API responses.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func External(message string, err error) *Error {
	return &Error{Kind: KindExternal, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindExternal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindExternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the user-facing message for err. Unclassified errors get
// a generic message so internals never leak to API responses.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}

// StatusCode maps an error kind to an HTTP status code.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
