package handler

import (
	"net/http"

	"decantifume-api/internal/apperr"
	"decantifume-api/internal/dto"
	"decantifume-api/internal/middleware"
	"decantifume-api/internal/service"

	"github.com/labstack/echo/v4"
)

// imagesField is the multipart field carrying product images.
const imagesField = "images"

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

func (h *ProductHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.CreateProductRequest](c)

	product, err := h.productService.Create(ctx, req, caller(c).UserID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "Product created successfully", product, nil)
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	q := middleware.Payload[dto.ProductQuery](c)

	page, err := h.productService.List(ctx, q)
	if err != nil {
		return err
	}

	return respondPage(c, http.StatusOK, "Products retrieved successfully", page)
}

func (h *ProductHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.productService.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Product retrieved successfully", product, nil)
}

func (h *ProductHandler) GetBySlug(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.productService.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Product retrieved successfully", product, nil)
}

func (h *ProductHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.UpdateProductRequest](c)

	product, err := h.productService.Update(ctx, c.Param("id"), req, caller(c).UserID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Product updated successfully", product, nil)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.productService.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Product deleted successfully", nil, nil)
}

func (h *ProductHandler) UpdateStock(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.UpdateStockRequest](c)

	product, err := h.productService.UpdateStock(ctx, c.Param("id"), req)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Product stock updated successfully", product, nil)
}

func (h *ProductHandler) Featured(c echo.Context) error {
	ctx := c.Request().Context()
	q := middleware.Payload[dto.LimitQuery](c)

	products, err := h.productService.Featured(ctx, q.Limit)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Featured products retrieved successfully", products, nil)
}

func (h *ProductHandler) ByBrand(c echo.Context) error {
	ctx := c.Request().Context()
	q := middleware.Payload[dto.LimitQuery](c)

	products, err := h.productService.ByBrand(ctx, c.Param("brand"), q.Limit)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Products by brand retrieved successfully", products, nil)
}

func (h *ProductHandler) Related(c echo.Context) error {
	ctx := c.Request().Context()
	q := middleware.Payload[dto.LimitQuery](c)

	products, err := h.productService.Related(ctx, c.Param("id"), c.QueryParam("category"), q.Limit)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Related products retrieved successfully", products, nil)
}

func (h *ProductHandler) UploadImages(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := c.MultipartForm()
	if err != nil {
		return apperr.BadRequest("No images provided")
	}

	urls, err := h.productService.UploadImages(ctx, form.File[imagesField])
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "Images uploaded successfully", dto.UploadedImages{URLs: urls}, nil)
}
