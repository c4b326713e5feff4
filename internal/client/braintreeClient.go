package client

import (
	"context"
	"errors"
	"fmt"

	"decantifume-api/internal/config"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

var ErrTransactionDeclined = errors.New("transaction declined")

// --- INTERFACE ---

type BraintreeClient interface {
	// ChargeOneTime settles amount against a PayPal nonce from the Drop-in UI
	// and returns the transaction id.
	ChargeOneTime(ctx context.Context, nonce string, amount decimal.Decimal, orderID string) (string, error)

	// Refund reverses a sale in full. Sales not yet settled are voided.
	Refund(ctx context.Context, transactionID string) error
}

// --- IMPLEMENTATION ---

type braintreeClientImpl struct {
	gateway *braintree.Braintree
}

func NewBraintreeClient(cfg *config.Braintree) BraintreeClient {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway: gateway,
	}
}

// --- METHODS ---

func (c *braintreeClientImpl) ChargeOneTime(ctx context.Context, nonce string, amount decimal.Decimal, orderID string) (string, error) {
	req := &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             braintree.NewDecimal(ToCents(amount), 2),
		PaymentMethodNonce: nonce,
		OrderId:            orderID,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	}

	tx, err := c.gateway.Transaction().Create(ctx, req)
	if err != nil {
		return "", fmt.Errorf("charge order %s: %w", orderID, err)
	}

	switch tx.Status {
	case braintree.TransactionStatusProcessorDeclined, braintree.TransactionStatusGatewayRejected:
		return "", fmt.Errorf("%w: %s", ErrTransactionDeclined, tx.ProcessorResponseText)
	}

	return tx.Id, nil
}

func (c *braintreeClientImpl) Refund(ctx context.Context, transactionID string) error {
	tx, err := c.gateway.Transaction().Find(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("find transaction %s: %w", transactionID, err)
	}

	switch tx.Status {
	case braintree.TransactionStatusAuthorized, braintree.TransactionStatusSubmittedForSettlement:
		if _, err := c.gateway.Transaction().Void(ctx, transactionID); err != nil {
			return fmt.Errorf("void transaction %s: %w", transactionID, err)
		}
	default:
		if _, err := c.gateway.Transaction().Refund(ctx, transactionID); err != nil {
			return fmt.Errorf("refund transaction %s: %w", transactionID, err)
		}
	}
	return nil
}

// ToCents converts a money amount to integer minor units.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
