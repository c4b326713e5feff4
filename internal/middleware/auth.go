package middleware

import (
	"context"
	"errors"
	"slices"
	"strings"

	"decantifume-api/internal/apperr"
	"decantifume-api/internal/auth"
	"decantifume-api/internal/model"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const claimsKey = "claims"

type TokenParser interface {
	ParseAccess(token string) (*auth.Claims, error)
}

type UserLookup interface {
	FindAnyByID(ctx context.Context, id string) (*model.User, error)
}

// Authenticate verifies the bearer token and that its user still exists and
// is not deleted. With roles given, the caller's role must be one of them.
func Authenticate(tokens TokenParser, users UserLookup, roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return apperr.Unauthorized("You are not authorized")
			}

			claims, err := tokens.ParseAccess(token)
			if err != nil {
				return apperr.Unauthorized("You are not authorized")
			}

			user, err := users.FindAnyByID(ctx, claims.UserID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Unauthorized("The user no longer exists")
			}
			if err != nil {
				return err
			}
			if user.IsDeleted {
				return apperr.Unauthorized("The user is deleted")
			}

			if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
				return apperr.Forbidden("You are not authorized")
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by Authenticate, or nil on public routes.
func ClaimsFrom(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}

func bearerToken(header string) string {
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}
