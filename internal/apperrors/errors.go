// Package apperrors classifies failures so the HTTP layer can map them to
// status codes without leaking internal detail.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind is the category of an application error.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	}
	return "unexpected"
}

// HTTPStatus maps a kind to its response code. Conflicts are reported as 400,
// matching what clients of the signup endpoint expect.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Error carries a client-safe Message and an optional internal cause.
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

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func Validation(msg string) *Error { return newError(KindValidation, msg, nil) }
func Authentication(msg string) *Error { return newError(KindAuthentication, msg, nil) }
func Forbidden(msg string) *Error { return newError(KindAuthorization, msg, nil) }
func NotFound(msg string) *Error { return newError(KindNotFound, msg, nil) }
func Conflict(msg string) *Error { return newError(KindConflict, msg, nil) }

// Transient wraps a store fault the caller may safely retry.
func Transient(msg string, cause error) *Error {
	return newError(KindTransient, msg, cause)
}

// Unexpected wraps any other internal failure.
func Unexpected(msg string, cause error) *Error {
	return newError(KindUnexpected, msg, cause)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnexpected when there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage returns the message that is safe to show a client.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindUnexpected {
		return appErr.Message
	}
	return "Internal server error"
}
