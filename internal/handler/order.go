package handler

import (
	"io"
	"net/http"

	"decantifume-api/internal/apperr"
	"decantifume-api/internal/dto"
	"decantifume-api/internal/middleware"
	"decantifume-api/internal/service"

	"github.com/labstack/echo/v4"
)

const stripeSignatureHeader = "Stripe-Signature"

type OrderHandler struct {
	orderService   service.OrderService
	paymentService service.PaymentService
}

func NewOrderHandler(orderService service.OrderService, paymentService service.PaymentService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		paymentService: paymentService,
	}
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.CreateOrderRequest](c)

	order, err := h.orderService.Create(ctx, caller(c).UserID, req)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "Order created successfully", order, nil)
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	q := middleware.Payload[dto.OrderQuery](c)

	page, err := h.orderService.ListMine(ctx, caller(c).UserID, q)
	if err != nil {
		return err
	}

	return respondPage(c, http.StatusOK, "Orders retrieved successfully", page)
}

func (h *OrderHandler) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	q := middleware.Payload[dto.OrderQuery](c)

	page, err := h.orderService.ListAll(ctx, q)
	if err != nil {
		return err
	}

	return respondPage(c, http.StatusOK, "All orders retrieved successfully", page)
}

func (h *OrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.GetByID(ctx, c.Param("id"), caller(c))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Order retrieved successfully", order, nil)
}

func (h *OrderHandler) GetByNumber(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.GetByNumber(ctx, c.Param("orderNumber"), caller(c))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Order retrieved successfully", order, nil)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.UpdateOrderStatusRequest](c)

	order, err := h.orderService.UpdateStatus(ctx, c.Param("id"), req.OrderStatus)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Order status updated successfully", order, nil)
}

func (h *OrderHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.UpdateOrderRequest](c)

	order, err := h.orderService.Update(ctx, c.Param("id"), req)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Order updated successfully", order, nil)
}

func (h *OrderHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.orderService.Stats(ctx, caller(c))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Order statistics retrieved successfully", stats, nil)
}

func (h *OrderHandler) TopProducts(c echo.Context) error {
	ctx := c.Request().Context()
	q := middleware.Payload[dto.LimitQuery](c)

	top, err := h.orderService.TopProducts(ctx, q.Limit)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Top products retrieved successfully", top, nil)
}

func (h *OrderHandler) CreatePaymentIntent(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.CreatePaymentIntentRequest](c)

	result, err := h.paymentService.CreatePaymentIntent(ctx, caller(c), req)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Payment intent created successfully", result, nil)
}

func (h *OrderHandler) ConfirmPayment(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.paymentService.ConfirmPayment(ctx, caller(c), c.Param("paymentIntentId"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Payment confirmed successfully", result, nil)
}

func (h *OrderHandler) RefundPayment(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.RefundRequest](c)

	result, err := h.paymentService.RefundPayment(ctx, c.Param("paymentIntentId"), req.Amount)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Refund processed successfully", result, nil)
}

func (h *OrderHandler) PayWithBraintree(c echo.Context) error {
	ctx := c.Request().Context()
	req := middleware.Payload[dto.BraintreeCheckoutRequest](c)

	result, err := h.paymentService.PayWithBraintree(ctx, caller(c), req)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Payment confirmed successfully", result, nil)
}

// StripeWebhook needs the untouched request body for signature verification.
func (h *OrderHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apperr.BadRequest("Invalid webhook payload")
	}

	err = h.paymentService.HandleStripeWebhook(ctx, body, c.Request().Header.Get(stripeSignatureHeader))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
