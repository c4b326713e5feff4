package model

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Dior-Sauvage", "dior-sauvage"},
		{"Maison Francis Kurkdjian-Baccarat Rouge 540", "maison-francis-kurkdjian-baccarat-rouge-540"},
		{"Tom Ford-Oud Wood!!", "tom-ford-oud-wood"},
		{"  Creed -  Aventus ", "creed-aventus"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestProduct_BeforeSave(t *testing.T) {
	p := &Product{
		Name:   "Aventus",
		Brand:  "Creed",
		Images: []string{"https://img.example.com/a.jpg", "https://img.example.com/b.jpg"},
		DecantSizes: []DecantSize{
			{Size: Size5ml, Price: dec("12.50"), Stock: 4},
			{Size: Size10ml, Price: dec("22.00"), Stock: 0, IsAvailable: true},
			{Size: Size30ml, Price: dec("55.00"), Stock: 7},
		},
	}

	require.NoError(t, p.BeforeSave(nil))

	assert.Equal(t, "creed-aventus", p.Slug)
	assert.Equal(t, "https://img.example.com/a.jpg", p.Thumbnail)
	assert.Equal(t, 11, p.TotalStock)
	assert.Equal(t, ProductStatusActive, p.Status)
	assert.True(t, p.DecantSizes[0].IsAvailable)
	assert.False(t, p.DecantSizes[1].IsAvailable)
}

func TestProduct_BeforeSaveKeepsStockWhenSizesNotLoaded(t *testing.T) {
	p := &Product{Name: "Oud Wood", Brand: "Tom Ford", TotalStock: 9, Thumbnail: "https://img.example.com/t.jpg"}

	require.NoError(t, p.BeforeSave(nil))

	assert.Equal(t, 9, p.TotalStock)
	assert.Equal(t, "https://img.example.com/t.jpg", p.Thumbnail)
}

func TestOrder_CheckTotals(t *testing.T) {
	items := []OrderItem{
		{Price: dec("10.00"), Quantity: 2, TotalPrice: dec("20.00")},
		{Price: dec("5.50"), Quantity: 1, TotalPrice: dec("5.50")},
	}

	tests := []struct {
		name    string
		order   Order
		wantErr error
	}{
		{
			name: "exact totals",
			order: Order{Items: items, Subtotal: dec("25.50"), ShippingCost: dec("5"), Tax: dec("2.00"),
				Discount: dec("1.50"), TotalAmount: dec("31.00")},
		},
		{
			name: "within tolerance",
			order: Order{Items: items, Subtotal: dec("25.51"), ShippingCost: dec("5"), Tax: dec("2.00"),
				Discount: dec("1.50"), TotalAmount: dec("31.00")},
		},
		{
			name: "subtotal off",
			order: Order{Items: items, Subtotal: dec("25.60"), ShippingCost: dec("5"), Tax: dec("2.00"),
				TotalAmount: dec("32.60")},
			wantErr: ErrSubtotalMismatch,
		},
		{
			name: "total off",
			order: Order{Items: items, Subtotal: dec("25.50"), ShippingCost: dec("5"), Tax: dec("2.00"),
				TotalAmount: dec("40.00")},
			wantErr: ErrTotalMismatch,
		},
		{
			name:  "items not loaded skips subtotal",
			order: Order{Subtotal: dec("99.00"), TotalAmount: dec("99.00")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.BeforeSave(nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestOrder_BeforeCreate(t *testing.T) {
	o := &Order{}
	require.NoError(t, o.BeforeCreate(nil))

	assert.NotEmpty(t, o.ID)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{13}-[A-Z0-9]{6}$`), o.OrderNumber)
	assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, OrderStatusPending, o.OrderStatus)
}

func TestNewOrderNumber(t *testing.T) {
	now := time.UnixMilli(1718000000000)
	a := NewOrderNumber(now)
	b := NewOrderNumber(now)

	assert.Contains(t, a, "ORD-1718000000000-")
	assert.NotEqual(t, a, b)
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusShipped, OrderStatusConfirmed, false},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusPaid))
	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusFailed))
	assert.True(t, PaymentStatusFailed.CanTransitionTo(PaymentStatusPaid))
	assert.True(t, PaymentStatusPaid.CanTransitionTo(PaymentStatusRefunded))
	assert.False(t, PaymentStatusPending.CanTransitionTo(PaymentStatusRefunded))
	assert.False(t, PaymentStatusRefunded.CanTransitionTo(PaymentStatusPaid))
	assert.False(t, PaymentStatusCancelled.CanTransitionTo(PaymentStatusPaid))
}

func TestUser_BeforeSave(t *testing.T) {
	u := &User{Name: " Alice ", Email: "  Alice@Example.COM "}
	require.NoError(t, u.BeforeSave(nil))

	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, UserStatusActive, u.Status)
}
