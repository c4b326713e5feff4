package client

import (
	"context"
	"strings"
	"testing"
	"time"

	"decantifume-api/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

func TestToCents(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"50", 5000},
		{"19.99", 1999},
		{"0.005", 1},
		{"12.344", 1234},
		{"0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, ToCents(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		folder  string
		want    string
		wantErr bool
	}{
		{
			name:   "with folder",
			url:    "https://res.cloudinary.com/demo/image/upload/v1712/decantifume/products/abc123.jpg",
			folder: "decantifume/products",
			want:   "decantifume/products/abc123",
		},
		{
			name:   "trailing slash on folder",
			url:    "https://res.cloudinary.com/demo/image/upload/v1712/abc123.webp",
			folder: "products/",
			want:   "products/abc123",
		},
		{
			name: "no folder",
			url:  "https://res.cloudinary.com/demo/image/upload/abc123.png",
			want: "abc123",
		},
		{
			name:    "no path",
			url:     "https://res.cloudinary.com/",
			wantErr: true,
		},
		{
			name:    "unparsable",
			url:     "://bad",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PublicIDFromURL(tt.url, tt.folder)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDisabledImageStore(t *testing.T) {
	store, err := NewCloudinaryClient(&config.Cloudinary{})
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "a.jpg", strings.NewReader("img"))
	assert.ErrorIs(t, err, ErrImageStoreDisabled)
	assert.ErrorIs(t, store.Delete(context.Background(), "https://example.com/a.jpg"), ErrImageStoreDisabled)
}

func TestStripeConstructEvent(t *testing.T) {
	const secret = "whsec_test"
	gateway := NewStripeClient(&config.Stripe{SecretKey: "sk_test", WebhookSecret: secret})

	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_1", "object": "payment_intent", "status": "succeeded"}}
	}`)

	t.Run("valid signature", func(t *testing.T) {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload: payload,
			Secret:  secret,
		})

		evt, err := gateway.ConstructEvent(payload, signed.Header)
		require.NoError(t, err)
		assert.Equal(t, "evt_1", evt.ID)
		assert.Equal(t, stripe.EventTypePaymentIntentSucceeded, evt.Type)
	})

	t.Run("wrong secret", func(t *testing.T) {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload: payload,
			Secret:  "whsec_other",
		})

		_, err := gateway.ConstructEvent(payload, signed.Header)
		assert.Error(t, err)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   payload,
			Secret:    secret,
			Timestamp: time.Now().Add(-time.Hour),
		})

		_, err := gateway.ConstructEvent(payload, signed.Header)
		assert.Error(t, err)
	})

	t.Run("tampered body", func(t *testing.T) {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload: payload,
			Secret:  secret,
		})

		_, err := gateway.ConstructEvent([]byte(`{"id":"evt_2"}`), signed.Header)
		assert.Error(t, err)
	})
}
