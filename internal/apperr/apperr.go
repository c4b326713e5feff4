// Package apperr defines the domain errors returned by services and rendered
// by the HTTP error handler.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var ErrInvalidID = errors.New("invalid id")

type AppError struct {
	StatusCode int
	Message    string
	stack      error
}

func New(status int, format string, args ...any) *AppError {
	msg := fmt.Sprintf(format, args...)
	return &AppError{
		StatusCode: status,
		Message:    msg,
		stack:      errors.New(msg),
	}
}

func (e *AppError) Error() string {
	return e.Message
}

// Stack renders the call stack captured when the error was created.
func (e *AppError) Stack() string {
	if e.stack == nil {
		return ""
	}
	return fmt.Sprintf("%+v", e.stack)
}

func BadRequest(format string, args ...any) *AppError {
	return New(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...any) *AppError {
	return New(http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *AppError {
	return New(http.StatusForbidden, format, args...)
}

func NotFound(format string, args ...any) *AppError {
	return New(http.StatusNotFound, format, args...)
}

func Conflict(format string, args ...any) *AppError {
	return New(http.StatusConflict, format, args...)
}

func Internal(format string, args ...any) *AppError {
	return New(http.StatusInternalServerError, format, args...)
}

// StatusOf returns the HTTP status of err when it wraps an AppError, or 0.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 0
}

// StackOf renders a stack for any error, preferring the one captured by
// pkg/errors when present.
func StackOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Stack()
	}
	return fmt.Sprintf("%+v", errors.WithStack(err))
}
