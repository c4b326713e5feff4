package handler

import (
	"decantifume-api/internal/dto"
	"decantifume-api/internal/middleware"
	"decantifume-api/internal/service"

	"github.com/labstack/echo/v4"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Meta    any    `json:"meta,omitempty"`
}

func respond(c echo.Context, status int, message string, data any, meta any) error {
	return c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

func respondPage[T any](c echo.Context, status int, message string, page *dto.Page[T]) error {
	return respond(c, status, message, page.Items, page.Pagination)
}

// caller builds the service caller from the claims set by Authenticate.
func caller(c echo.Context) service.Caller {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return service.Caller{}
	}
	return service.Caller{UserID: claims.UserID, Role: claims.Role}
}
