// Package apperr holds the error kinds shared by services and handlers.
// Every error returned across a package boundary either wraps one of the
// kinds below or is treated as an unexpected failure.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")
)

var kinds = []error{
	ErrValidation,
	ErrConflict,
	ErrNotFound,
	ErrInvalidCredentials,
	ErrMissingToken,
	ErrInvalidToken,
	ErrForbidden,
}

// Error carries a human readable message on top of a kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error { return newf(ErrValidation, format, args...) }

func Conflict(format string, args ...any) error { return newf(ErrConflict, format, args...) }

func NotFound(format string, args ...any) error { return newf(ErrNotFound, format, args...) }

func InvalidCredentials(format string, args ...any) error {
	return newf(ErrInvalidCredentials, format, args...)
}

func MissingToken(format string, args ...any) error { return newf(ErrMissingToken, format, args...) }

func InvalidToken(format string, args ...any) error { return newf(ErrInvalidToken, format, args...) }

func Forbidden(format string, args ...any) error { return newf(ErrForbidden, format, args...) }

// KindOf returns the kind err wraps, or nil for unexpected failures.
func KindOf(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// MessageOf returns the outermost human readable message attached to err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if kind := KindOf(err); kind != nil {
		return kind.Error()
	}
	return "internal server error"
}
