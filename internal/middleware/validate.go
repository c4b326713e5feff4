package middleware

import (
	"decantifume-api/internal/apperr"

	"github.com/labstack/echo/v4"
)

const payloadKey = "payload"

var binder = &echo.DefaultBinder{}

// ValidateBody decodes the JSON body into T and validates it before the
// handler runs. Handlers read the result with Payload.
func ValidateBody[T any]() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var req T
			if err := binder.BindBody(c, &req); err != nil {
				return apperr.BadRequest("Invalid request body")
			}
			if err := c.Validate(&req); err != nil {
				return err
			}
			c.Set(payloadKey, &req)
			return next(c)
		}
	}
}

// ValidateQuery is ValidateBody for query string parameters.
func ValidateQuery[T any]() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var req T
			if err := binder.BindQueryParams(c, &req); err != nil {
				return apperr.BadRequest("Invalid query parameters")
			}
			if err := c.Validate(&req); err != nil {
				return err
			}
			c.Set(payloadKey, &req)
			return next(c)
		}
	}
}

func Payload[T any](c echo.Context) *T {
	req, _ := c.Get(payloadKey).(*T)
	if req == nil {
		return new(T)
	}
	return req
}
