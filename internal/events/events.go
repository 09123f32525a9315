// Package events publishes storefront domain events.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TypeOrderPlaced identifies an OrderPlaced event.
const TypeOrderPlaced = "order.placed"

// OrderPlaced is emitted after the backend confirms a checkout.
type OrderPlaced struct {
	EventID        uuid.UUID `json:"event_id"`
	Type           string    `json:"type"`
	OrderID        int64     `json:"order_id"`
	UserID         int64     `json:"user_id"`
	PaymentMethod  string    `json:"payment_method"`
	ShippingMethod string    `json:"shipping_method"`
	ItemCount      int       `json:"item_count"`
	Subtotal       float64   `json:"subtotal"`
	Discount       float64   `json:"discount"`
	ShippingFee    float64   `json:"shipping_fee"`
	Total          float64   `json:"total"`
	PromoCode      string    `json:"promo_code,omitempty"`
	PlacedAt       time.Time `json:"placed_at"`
}

// Publisher delivers domain events.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, e OrderPlaced) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }

func (NopPublisher) Close() error { return nil }
