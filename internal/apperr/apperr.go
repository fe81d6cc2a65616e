// Package apperr defines the error classes every layer maps its failures to.
// Handlers translate them to HTTP status codes with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
)

// Error is a client-facing message tagged with one of the classes above.
type Error struct {
	class error
	msg   string
}

// New returns an error whose message is msg and which matches class
// under errors.Is.
func New(class error, msg string) error {
	return &Error{class: class, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.class }

// Status returns the HTTP status code for err's class.
// Unclassified errors are reported as 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
