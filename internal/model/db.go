package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Base carries the UUID primary key and timestamps shared by every table.
type Base struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

type WebhookEvent struct {
	EventID     string    `gorm:"primaryKey;size:128;not null"`
	EventType   string    `gorm:"size:64;index"`
	ProcessedAt time.Time `gorm:"not null"`
	CreatedAt   time.Time
}

// All lists every table owned by the service, in migration order.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&DecantSize{},
		&Order{},
		&OrderItem{},
		&WishlistItem{},
		&WebhookEvent{},
	}
}
