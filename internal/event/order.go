package event

import "github.com/shopspring/decimal"

type OrderEvent struct {
	OrderID         string          `json:"orderId"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          string          `json:"userId"`
	OrderStatus     string          `json:"orderStatus"`
	PreviousStatus  string          `json:"previousStatus,omitempty"`
	PaymentStatus   string          `json:"paymentStatus"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
}
