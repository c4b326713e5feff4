package client

import (
	"context"
	"fmt"

	"decantifume-api/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	stripeclient "github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// --- INTERFACE ---

type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*stripe.PaymentIntent, error)
	RetrievePaymentIntent(ctx context.Context, paymentIntentID string) (*stripe.PaymentIntent, error)

	// Refund refunds the intent in full when amount is nil.
	Refund(ctx context.Context, paymentIntentID string, amount *decimal.Decimal) (*stripe.Refund, error)

	// ConstructEvent verifies the Stripe-Signature header against the raw body.
	ConstructEvent(payload []byte, signatureHeader string) (stripe.Event, error)
}

// --- IMPLEMENTATION ---

type stripeClientImpl struct {
	api           *stripeclient.API
	webhookSecret string
}

func NewStripeClient(cfg *config.Stripe) PaymentGateway {
	api := &stripeclient.API{}
	api.Init(cfg.SecretKey, nil)

	return &stripeClientImpl{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
	}
}

// --- METHODS ---

func (c *stripeClientImpl) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(ToCents(amount)),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return pi, nil
}

func (c *stripeClientImpl) RetrievePaymentIntent(ctx context.Context, paymentIntentID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent: %w", err)
	}
	return pi, nil
}

func (c *stripeClientImpl) Refund(ctx context.Context, paymentIntentID string, amount *decimal.Decimal) (*stripe.Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	if amount != nil {
		params.Amount = stripe.Int64(ToCents(*amount))
	}
	params.Context = ctx

	r, err := c.api.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("create refund: %w", err)
	}
	return r, nil
}

func (c *stripeClientImpl) ConstructEvent(payload []byte, signatureHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signatureHeader, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
