package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), OrderCreated, OrderEvent{OrderID: "o-1"}))
}

func TestMessageEncoding(t *testing.T) {
	msg := Message{
		Pattern: OrderStatusChanged,
		Data: OrderEvent{
			OrderID:        "o-1",
			OrderNumber:    "ORD-1718000000000-ABC123",
			UserID:         "u-1",
			OrderStatus:    "shipped",
			PreviousStatus: "processing",
			PaymentStatus:  "paid",
			TotalAmount:    decimal.RequireFromString("42.50"),
		},
		OccurredAt: time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
	}

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "order.status_changed", decoded["pattern"])

	data := decoded["data"].(map[string]any)
	assert.Equal(t, "processing", data["previousStatus"])
	assert.Equal(t, "ORD-1718000000000-ABC123", data["orderNumber"])
	assert.NotContains(t, data, "paymentIntentId")
}
