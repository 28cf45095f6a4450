// Package apperr defines the errors services return for expected failures.
package apperr

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Error carries the HTTP status and the message shown to the client
type Error struct {
	Status  int
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

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

// NotFoundOr maps gorm.ErrRecordNotFound to a 404 with message and returns other errors unchanged
func NotFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Status: http.StatusNotFound, Message: message, Err: err}
	}
	return err
}

// As returns the *Error in err's chain, if any
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, 500 for unknown errors
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
