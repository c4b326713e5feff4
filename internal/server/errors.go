package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"decantifume-api/internal/apperr"
	"decantifume-api/internal/repository"
	"decantifume-api/internal/validation"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const defaultErrorMessage = "Something went wrong!"

type ErrorResponse struct {
	Success      bool                    `json:"success"`
	Message      string                  `json:"message"`
	ErrorSources []validation.FieldError `json:"errorSources"`
	Stack        string                  `json:"stack,omitempty"`
}

// newErrorHandler renders every error in the same envelope. Stacks are
// omitted in production.
func newErrorHandler(production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, resp := classify(err)
		if !production {
			resp.Stack = apperr.StackOf(err)
		}

		ctx := c.Request().Context()
		if status >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, resp)
		}
		if err != nil {
			slog.ErrorContext(ctx, "write error response", "error", err)
		}
	}
}

func classify(err error) (int, ErrorResponse) {
	var (
		appErr  *apperr.AppError
		httpErr *echo.HTTPError
	)

	if fields := validation.FieldErrors(err); fields != nil {
		return http.StatusBadRequest, errorResponse("Validation Error", fields...)
	}

	switch {
	case errors.As(err, &appErr):
		return appErr.StatusCode, errorResponse(appErr.Message)

	case errors.Is(err, apperr.ErrInvalidID):
		return http.StatusBadRequest, errorResponse("Invalid ID", validation.FieldError{Path: "id", Message: "Invalid ID"})

	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorResponse("Resource not found")

	case errors.As(err, &httpErr):
		if httpErr.Code == http.StatusNotFound {
			return http.StatusNotFound, errorResponse("API Not Found!")
		}
		return httpErr.Code, errorResponse(fmt.Sprint(httpErr.Message))
	}

	if value, ok := repository.DuplicateKey(err); ok {
		return http.StatusBadRequest, errorResponse("Duplicate Entry", validation.FieldError{
			Message: fmt.Sprintf("%s already exists", value),
		})
	}

	message := err.Error()
	if message == "" {
		message = defaultErrorMessage
	}
	return http.StatusInternalServerError, errorResponse(message)
}

// errorResponse uses message as the only source when none are given.
func errorResponse(message string, sources ...validation.FieldError) ErrorResponse {
	if len(sources) == 0 {
		sources = []validation.FieldError{{Message: message}}
	}
	return ErrorResponse{
		Success:      false,
		Message:      message,
		ErrorSources: sources,
	}
}
