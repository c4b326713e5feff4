package handler

import (
	"net/http"

	"decantifume-api/internal/dto"
	"decantifume-api/internal/middleware"
	"decantifume-api/internal/service"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.CreateUserRequest](c)

	user, err := h.userService.Create(ctx, req)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "User created successfully", user, nil)
}

func (h *UserHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	q := middleware.Payload[dto.UserQuery](c)

	page, err := h.userService.List(ctx, q)
	if err != nil {
		return err
	}

	return respondPage(c, http.StatusOK, "Users retrieved successfully", page)
}

func (h *UserHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userService.Get(ctx, c.Param("id"), caller(c))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User retrieved successfully", user, nil)
}

func (h *UserHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.UpdateUserRequest](c)

	user, err := h.userService.Update(ctx, c.Param("id"), caller(c), req)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User updated successfully", user, nil)
}

func (h *UserHandler) UpdateRole(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.UpdateRoleRequest](c)

	user, err := h.userService.UpdateRole(ctx, c.Param("id"), req.Role)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User role updated successfully", user, nil)
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.userService.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User deleted successfully", nil, nil)
}

func (h *UserHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.userService.Stats(ctx)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "User statistics retrieved successfully", stats, nil)
}
