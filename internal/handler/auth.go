package handler

import (
	"net/http"

	"decantifume-api/internal/dto"
	"decantifume-api/internal/middleware"
	"decantifume-api/internal/service"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.RegisterRequest](c)

	user, err := h.authService.Register(ctx, req)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "User registered successfully", user, nil)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.LoginRequest](c)

	result, err := h.authService.Login(ctx, req)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User logged in successfully", result, nil)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.ChangePasswordRequest](c)

	if err := h.authService.ChangePassword(ctx, caller(c).UserID, req); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Password changed successfully", nil, nil)
}

func (h *AuthHandler) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.RefreshTokenRequest](c)

	result, err := h.authService.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Access token refreshed successfully", result, nil)
}
