package handler

import (
	"net/http"

	"decantifume-api/internal/dto"
	"decantifume-api/internal/middleware"
	"decantifume-api/internal/service"

	"github.com/labstack/echo/v4"
)

type WishlistHandler struct {
	wishlistService service.WishlistService
}

func NewWishlistHandler(wishlistService service.WishlistService) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
	}
}

func (h *WishlistHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.wishlistService.List(ctx, caller(c).UserID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Wishlist retrieved successfully", items, nil)
}

func (h *WishlistHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.AddWishlistRequest](c)

	item, err := h.wishlistService.Add(ctx, caller(c).UserID, req.ProductID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "Product added to wishlist", item, nil)
}

func (h *WishlistHandler) Remove(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.wishlistService.Remove(ctx, caller(c).UserID, c.Param("productId")); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Product removed from wishlist", nil, nil)
}
