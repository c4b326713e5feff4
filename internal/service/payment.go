package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"decantifume-api/internal/apperr"
	"decantifume-api/internal/client"
	"decantifume-api/internal/dto"
	"decantifume-api/internal/event"
	"decantifume-api/internal/model"
	"decantifume-api/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"gorm.io/gorm"
)

type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, caller Caller, req *dto.CreatePaymentIntentRequest) (*dto.PaymentIntentResponse, error)
	ConfirmPayment(ctx context.Context, caller Caller, paymentIntentID string) (*dto.PaymentConfirmation, error)
	RefundPayment(ctx context.Context, paymentIntentID string, amount *decimal.Decimal) (*dto.RefundResponse, error)
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error
	PayWithBraintree(ctx context.Context, caller Caller, req *dto.BraintreeCheckoutRequest) (*dto.BraintreeCheckoutResponse, error)
}

type paymentServiceImpl struct {
	db               *gorm.DB
	gateway          client.PaymentGateway
	braintree        client.BraintreeClient
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
	publisher        event.Publisher
	currency         string
}

func NewPaymentService(
	db *gorm.DB,
	gateway client.PaymentGateway,
	braintree client.BraintreeClient,
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
	publisher event.Publisher,
	currency string,
) PaymentService {
	return &paymentServiceImpl{
		db:               db,
		gateway:          gateway,
		braintree:        braintree,
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
		publisher:        publisher,
		currency:         currency,
	}
}

func (s *paymentServiceImpl) CreatePaymentIntent(ctx context.Context, caller Caller, req *dto.CreatePaymentIntentRequest) (*dto.PaymentIntentResponse, error) {
	order, err := s.findOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(order.UserID) {
		return nil, apperr.Forbidden("Access denied")
	}
	if order.PaymentStatus == model.PaymentStatusPaid {
		return nil, apperr.Conflict("Order is already paid")
	}
	if !model.WithinTolerance(req.Amount, order.TotalAmount) {
		return nil, apperr.BadRequest("Payment amount does not match order total")
	}

	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}

	metadata := map[string]string{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata["orderId"] = order.ID
	metadata["customerEmail"] = req.CustomerEmail

	intent, err := s.gateway.CreatePaymentIntent(ctx, req.Amount, currency, metadata)
	if err != nil {
		return nil, apperr.Internal("Stripe payment intent creation failed: %v", err)
	}

	if err := s.orderRepo.UpdatePayment(ctx, nil, order.ID, order.PaymentStatus, intent.ID); err != nil {
		return nil, fmt.Errorf("store payment intent: %w", err)
	}

	return &dto.PaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

// ConfirmPayment asks Stripe for the intent and marks the order paid once it
// has succeeded. Only the order's owner or an admin may confirm.
func (s *paymentServiceImpl) ConfirmPayment(ctx context.Context, caller Caller, paymentIntentID string) (*dto.PaymentConfirmation, error) {
	intent, err := s.gateway.RetrievePaymentIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, apperr.Internal("Payment confirmation failed: %v", err)
	}

	order, err := s.resolveOrder(ctx, intent)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(order.UserID) {
		return nil, apperr.Forbidden("Access denied")
	}

	resp := &dto.PaymentConfirmation{
		PaymentIntentID: intent.ID,
		Status:          string(intent.Status),
		OrderID:         order.ID,
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return resp, nil
	}

	var changed bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		changed, err = s.markPaid(ctx, tx, order, intent.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.publishPaid(ctx, order, intent.ID)
	}

	return resp, nil
}

// RefundPayment refunds through Stripe. The order only moves to refunded on a
// full refund.
func (s *paymentServiceImpl) RefundPayment(ctx context.Context, paymentIntentID string, amount *decimal.Decimal) (*dto.RefundResponse, error) {
	refund, err := s.gateway.Refund(ctx, paymentIntentID, amount)
	if err != nil {
		return nil, apperr.Internal("Refund failed: %v", err)
	}

	resp := &dto.RefundResponse{
		RefundID:        refund.ID,
		PaymentIntentID: paymentIntentID,
		Amount:          decimal.New(refund.Amount, -2),
		Status:          string(refund.Status),
	}

	order, err := s.orderRepo.FindByPaymentIntentID(ctx, paymentIntentID)
	if isNotFound(err) {
		slog.WarnContext(ctx, "refund without matching order", "payment_intent_id", paymentIntentID)
		return resp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	full := amount == nil || amount.GreaterThanOrEqual(order.TotalAmount.Sub(model.Tolerance))
	if full && order.PaymentStatus.CanTransitionTo(model.PaymentStatusRefunded) {
		if err := s.orderRepo.UpdatePayment(ctx, nil, order.ID, model.PaymentStatusRefunded, ""); err != nil {
			return nil, fmt.Errorf("mark order refunded: %w", err)
		}
	}

	return resp, nil
}

// HandleStripeWebhook verifies the signature before touching anything, then
// applies each event at most once.
func (s *paymentServiceImpl) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		return apperr.BadRequest("Webhook signature verification failed: %v", err)
	}

	processed, err := s.webhookEventRepo.Exists(ctx, evt.ID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if processed {
		slog.InfoContext(ctx, "webhook event already processed", "event_id", evt.ID)
		return nil
	}

	switch evt.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		return s.handleIntentSucceeded(ctx, evt)
	case stripe.EventTypePaymentIntentPaymentFailed:
		return s.handleIntentFailed(ctx, evt)
	default:
		slog.InfoContext(ctx, "unhandled stripe event", "event_id", evt.ID, "type", evt.Type)
		return s.webhookEventRepo.MarkProcessed(ctx, nil, evt.ID, string(evt.Type))
	}
}

func (s *paymentServiceImpl) handleIntentSucceeded(ctx context.Context, evt stripe.Event) error {
	intent, err := decodeIntent(evt)
	if err != nil {
		return err
	}

	order, err := s.resolveOrder(ctx, intent)
	if err != nil {
		return err
	}

	var changed bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if changed, err = s.markPaid(ctx, tx, order, intent.ID); err != nil {
			return err
		}
		return s.webhookEventRepo.MarkProcessed(ctx, tx, evt.ID, string(evt.Type))
	})
	if err != nil {
		return err
	}
	if changed {
		s.publishPaid(ctx, order, intent.ID)
	}
	return nil
}

func (s *paymentServiceImpl) handleIntentFailed(ctx context.Context, evt stripe.Event) error {
	intent, err := decodeIntent(evt)
	if err != nil {
		return err
	}

	order, err := s.resolveOrder(ctx, intent)
	if err != nil {
		return err
	}

	changed := order.PaymentStatus.CanTransitionTo(model.PaymentStatusFailed)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if changed {
			if err := s.orderRepo.UpdatePayment(ctx, tx, order.ID, model.PaymentStatusFailed, intent.ID); err != nil {
				return fmt.Errorf("mark payment failed: %w", err)
			}
		}
		return s.webhookEventRepo.MarkProcessed(ctx, tx, evt.ID, string(evt.Type))
	})
	if err != nil {
		return err
	}

	if changed {
		order.PaymentStatus = model.PaymentStatusFailed
		order.PaymentIntentID = &intent.ID
		publishOrderEvent(ctx, s.publisher, event.OrderPaymentFailed, order, "")
	}
	return nil
}

// PayWithBraintree charges a PayPal nonce for the full order total.
func (s *paymentServiceImpl) PayWithBraintree(ctx context.Context, caller Caller, req *dto.BraintreeCheckoutRequest) (*dto.BraintreeCheckoutResponse, error) {
	order, err := s.findOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(order.UserID) {
		return nil, apperr.Forbidden("Access denied")
	}
	if order.PaymentMethod != model.PaymentMethodPaypal {
		return nil, apperr.BadRequest("Order is not a PayPal order")
	}
	if order.PaymentStatus == model.PaymentStatusPaid {
		return nil, apperr.Conflict("Order is already paid")
	}

	txID, err := s.braintree.ChargeOneTime(ctx, req.Nonce, order.TotalAmount, order.OrderNumber)
	if err != nil {
		return nil, apperr.BadRequest("PayPal payment failed: %v", err)
	}

	var changed bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		changed, err = s.markPaid(ctx, tx, order, txID)
		return err
	})
	if err != nil {
		// the charge went through but the order could not be updated
		if refundErr := s.braintree.Refund(ctx, txID); refundErr != nil {
			slog.ErrorContext(ctx, "refund braintree transaction", "transaction_id", txID, "error", refundErr)
		}
		return nil, err
	}
	if !changed {
		// paid through another channel while this charge was in flight
		if refundErr := s.braintree.Refund(ctx, txID); refundErr != nil {
			slog.ErrorContext(ctx, "refund duplicate braintree charge", "transaction_id", txID, "error", refundErr)
		}
		return nil, apperr.Conflict("Order is already paid")
	}
	s.publishPaid(ctx, order, txID)

	return &dto.BraintreeCheckoutResponse{
		OrderID:       order.ID,
		TransactionID: txID,
	}, nil
}

// markPaid records the payment and confirms a pending order. It reports false
// when the order was already paid, including by a concurrent caller.
func (s *paymentServiceImpl) markPaid(ctx context.Context, tx *gorm.DB, order *model.Order, reference string) (bool, error) {
	if order.PaymentStatus == model.PaymentStatusPaid {
		return false, nil
	}
	if !order.PaymentStatus.CanTransitionTo(model.PaymentStatusPaid) {
		return false, apperr.BadRequest("Cannot mark payment as paid from %s", order.PaymentStatus)
	}

	changed, err := s.orderRepo.MarkPaid(ctx, tx, order.ID, reference)
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}
	if !changed {
		return false, nil
	}

	if order.OrderStatus == model.OrderStatusPending {
		err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.OrderStatusPending, model.OrderStatusConfirmed)
		if err != nil && !isNotFound(err) {
			return false, fmt.Errorf("confirm order: %w", err)
		}
	}
	return true, nil
}

func (s *paymentServiceImpl) publishPaid(ctx context.Context, order *model.Order, reference string) {
	prev := order.OrderStatus
	order.PaymentStatus = model.PaymentStatusPaid
	order.PaymentIntentID = &reference
	if prev == model.OrderStatusPending {
		order.OrderStatus = model.OrderStatusConfirmed
	}
	publishOrderEvent(ctx, s.publisher, event.OrderPaymentConfirmed, order, prev)
}

// resolveOrder uses the orderId metadata and falls back to the stored intent id.
func (s *paymentServiceImpl) resolveOrder(ctx context.Context, intent *stripe.PaymentIntent) (*model.Order, error) {
	if orderID := intent.Metadata["orderId"]; orderID != "" {
		return s.findOrder(ctx, orderID)
	}

	order, err := s.orderRepo.FindByPaymentIntentID(ctx, intent.ID)
	if isNotFound(err) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}

func (s *paymentServiceImpl) findOrder(ctx context.Context, id string) (*model.Order, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if isNotFound(err) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}

func decodeIntent(evt stripe.Event) (*stripe.PaymentIntent, error) {
	if evt.Data == nil {
		return nil, apperr.BadRequest("Webhook event %s has no data", evt.ID)
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(evt.Data.Raw, &intent); err != nil {
		return nil, apperr.BadRequest("decode payment intent: %v", err)
	}
	return &intent, nil
}
