package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrSubtotalMismatch = errors.New("subtotal does not match item totals")
	ErrTotalMismatch    = errors.New("total amount calculation is incorrect")
)

// Tolerance is the largest accepted difference between two money amounts.
var Tolerance = decimal.RequireFromString("0.01")

func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

type ShippingAddress struct {
	FirstName string `gorm:"size:50" json:"firstName"`
	LastName  string `gorm:"size:50" json:"lastName"`
	Email     string `gorm:"size:255" json:"email"`
	Phone     string `gorm:"size:32" json:"phone"`
	Street    string `gorm:"size:200" json:"street"`
	City      string `gorm:"size:100" json:"city"`
	ZipCode   string `gorm:"size:20" json:"zipCode"`
	Country   string `gorm:"size:100" json:"country"`
}

type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"-"`
	OrderID      string          `gorm:"size:36;index;not null" json:"-"`
	ProductID    string          `gorm:"size:36;index;not null" json:"product"`
	ProductName  string          `gorm:"size:200;not null" json:"productName"`
	ProductImage string          `gorm:"size:500;not null" json:"productImage"`
	DecantSize   Size            `gorm:"size:8;not null" json:"decantSize"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalPrice"`
}

type Order struct {
	Base
	OrderNumber       string          `gorm:"size:32;uniqueIndex;not null" json:"orderNumber"`
	UserID            string          `gorm:"size:36;index;not null" json:"user"`
	User              *User           `gorm:"foreignKey:UserID" json:"userInfo,omitempty"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress   ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	ShippingCost      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shippingCost"`
	Tax               decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax"`
	Discount          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	PaymentMethod     PaymentMethod   `gorm:"size:32;not null" json:"paymentMethod"`
	PaymentStatus     PaymentStatus   `gorm:"size:16;index:idx_order_status_payment;not null;default:pending" json:"paymentStatus"`
	PaymentIntentID   *string         `gorm:"size:255;index" json:"paymentIntentId,omitempty"`
	OrderStatus       OrderStatus     `gorm:"size:16;index:idx_order_status_payment;not null;default:pending" json:"orderStatus"`
	PromoCode         string          `gorm:"size:64" json:"promoCode,omitempty"`
	Notes             string          `gorm:"size:500" json:"notes,omitempty"`
	TrackingNumber    string          `gorm:"size:128" json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty"`
	ActualDelivery    *time.Time      `json:"actualDelivery,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if err := o.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if o.OrderNumber == "" {
		o.OrderNumber = NewOrderNumber(time.Now())
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = PaymentStatusPending
	}
	if o.OrderStatus == "" {
		o.OrderStatus = OrderStatusPending
	}
	return nil
}

func (o *Order) BeforeSave(tx *gorm.DB) error {
	return o.CheckTotals()
}

// CheckTotals verifies the subtotal against the loaded items and the total
// against its components. The item check is skipped when Items is nil.
func (o *Order) CheckTotals() error {
	if o.Items != nil {
		sum := decimal.Zero
		for _, item := range o.Items {
			sum = sum.Add(item.TotalPrice)
		}
		if !WithinTolerance(o.Subtotal, sum) {
			return ErrSubtotalMismatch
		}
	}

	expected := o.Subtotal.Add(o.ShippingCost).Add(o.Tax).Sub(o.Discount)
	if !WithinTolerance(o.TotalAmount, expected) {
		return ErrTotalMismatch
	}
	return nil
}

// NewOrderNumber formats ORD-<unix millis>-<6 upper-case alphanumerics>.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}
