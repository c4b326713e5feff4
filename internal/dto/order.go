package dto

import (
	"decantifume-api/internal/model"

	"github.com/shopspring/decimal"
)

type OrderItemInput struct {
	Product      string          `json:"product" validate:"required,uuid"`
	ProductName  string          `json:"productName" validate:"required,min=1"`
	ProductImage string          `json:"productImage" validate:"required,url"`
	DecantSize   model.Size      `json:"decantSize" validate:"required,oneof=2ml 5ml 10ml 15ml 20ml 30ml"`
	Price        decimal.Decimal `json:"price" validate:"gt=0"`
	Quantity     int             `json:"quantity" validate:"required,min=1"`
	TotalPrice   decimal.Decimal `json:"totalPrice" validate:"gt=0"`
}

type ShippingAddressInput struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=50"`
	LastName  string `json:"lastName" validate:"required,min=1,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,min=1"`
	Street    string `json:"street" validate:"required,min=1,max=200"`
	City      string `json:"city" validate:"required,min=1,max=100"`
	ZipCode   string `json:"zipCode" validate:"required,min=1"`
	Country   string `json:"country" validate:"required,min=1"`
}

func (a ShippingAddressInput) Model() model.ShippingAddress {
	return model.ShippingAddress{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     model.NormalizeEmail(a.Email),
		Phone:     a.Phone,
		Street:    a.Street,
		City:      a.City,
		ZipCode:   a.ZipCode,
		Country:   a.Country,
	}
}

type CreateOrderRequest struct {
	Items           []OrderItemInput     `json:"items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddressInput `json:"shippingAddress" validate:"required"`
	Subtotal        decimal.Decimal      `json:"subtotal" validate:"gt=0"`
	ShippingCost    decimal.Decimal      `json:"shippingCost" validate:"gte=0"`
	Tax             decimal.Decimal      `json:"tax" validate:"gte=0"`
	Discount        decimal.Decimal      `json:"discount" validate:"gte=0"`
	TotalAmount     decimal.Decimal      `json:"totalAmount" validate:"gt=0"`
	PaymentMethod   model.PaymentMethod  `json:"paymentMethod" validate:"required,oneof=stripe paypal cash_on_delivery"`
	PromoCode       string               `json:"promoCode" validate:"omitempty,max=64"`
	Notes           string               `json:"notes" validate:"omitempty,max=500"`
}

type UpdateOrderStatusRequest struct {
	OrderStatus model.OrderStatus `json:"orderStatus" validate:"required,oneof=pending confirmed processing shipped delivered cancelled"`
}

type UpdateOrderRequest struct {
	OrderStatus       *model.OrderStatus   `json:"orderStatus" validate:"omitempty,oneof=pending confirmed processing shipped delivered cancelled"`
	PaymentStatus     *model.PaymentStatus `json:"paymentStatus" validate:"omitempty,oneof=pending paid failed refunded cancelled"`
	TrackingNumber    *string              `json:"trackingNumber" validate:"omitempty,max=128"`
	EstimatedDelivery *string              `json:"estimatedDelivery" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ActualDelivery    *string              `json:"actualDelivery" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Notes             *string              `json:"notes" validate:"omitempty,max=500"`
}

type OrderQuery struct {
	PageQuery
	User          string `query:"user" validate:"omitempty,uuid"`
	OrderStatus   string `query:"orderStatus" validate:"omitempty,oneof=pending confirmed processing shipped delivered cancelled"`
	PaymentStatus string `query:"paymentStatus" validate:"omitempty,oneof=pending paid failed refunded cancelled"`
	PaymentMethod string `query:"paymentMethod" validate:"omitempty,oneof=stripe paypal cash_on_delivery"`
	StartDate     string `query:"startDate" validate:"omitempty,max=40"`
	EndDate       string `query:"endDate" validate:"omitempty,max=40"`
	OrderNumber   string `query:"orderNumber" validate:"omitempty,max=32"`
	SortBy        string `query:"sortBy" validate:"omitempty,oneof=createdAt totalAmount orderNumber"`
}

type OrderStats struct {
	TotalOrders       int64           `json:"totalOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	PendingOrders     int64           `json:"pendingOrders"`
	ConfirmedOrders   int64           `json:"confirmedOrders"`
	ProcessingOrders  int64           `json:"processingOrders"`
	ShippedOrders     int64           `json:"shippedOrders"`
	DeliveredOrders   int64           `json:"deliveredOrders"`
	CancelledOrders   int64           `json:"cancelledOrders"`
}

type TopProduct struct {
	ProductID            string          `json:"id"`
	Name                 string          `json:"name"`
	DecantSize           string          `json:"decantSize"`
	Brand                string          `json:"brand"`
	Category             string          `json:"category"`
	Image                string          `json:"image"`
	TotalQuantity        int64           `json:"totalQuantity"`
	TotalRevenue         decimal.Decimal `json:"totalRevenue"`
	TotalOrders          int64           `json:"totalOrders"`
	AverageOrderQuantity decimal.Decimal `json:"averageOrderQuantity"`
	PricePerUnit         decimal.Decimal `json:"pricePerUnit"`
}

type CreatePaymentIntentRequest struct {
	Amount        decimal.Decimal   `json:"amount" validate:"gt=0"`
	Currency      string            `json:"currency" validate:"omitempty,len=3"`
	OrderID       string            `json:"orderId" validate:"required,uuid"`
	CustomerEmail string            `json:"customerEmail" validate:"required,email"`
	Metadata      map[string]string `json:"metadata"`
}

type PaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type PaymentConfirmation struct {
	PaymentIntentID string `json:"paymentIntentId"`
	Status          string `json:"status"`
	OrderID         string `json:"orderId,omitempty"`
}

type RefundRequest struct {
	Amount *decimal.Decimal `json:"amount" validate:"omitempty,gt=0"`
}

type RefundResponse struct {
	RefundID        string          `json:"refundId"`
	PaymentIntentID string          `json:"paymentIntentId"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
}

type BraintreeCheckoutRequest struct {
	OrderID string `json:"orderId" validate:"required,uuid"`
	Nonce   string `json:"nonce" validate:"required"`
}

type BraintreeCheckoutResponse struct {
	OrderID       string `json:"orderId"`
	TransactionID string `json:"transactionId"`
}
