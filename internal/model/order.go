package model

import (
	"strings"
	"time"
)

// OrderStatus is the lifecycle state of a server-owned order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ParseOrderStatus normalises s and checks it against the known statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Order represents an order as returned by the backend. The client never
// mutates it except through admin status/verification requests.
type Order struct {
	ID               int64       `json:"order_id"`
	UserID           int64       `json:"user_id"`
	ShippingAddress  string      `json:"shipping_address"`
	PaymentMethod    string      `json:"payment_method"`
	OrderDate        time.Time   `json:"order_date"`
	TotalAmount      float64     `json:"total_amount"`
	Status           OrderStatus `json:"status"`
	TrackingNumber   string      `json:"tracking_number,omitempty"`
	PaymentVerified  bool        `json:"payment_verified"`
	PaymentReference string      `json:"payment_reference,omitempty"`
	Items            []OrderItem `json:"items,omitempty"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ProductID       int64   `json:"product_id"`
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
}

// StatusUpdateRequest represents the admin payload for changing order status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// VerifyPaymentRequest represents the admin payload for verifying payment.
type VerifyPaymentRequest struct {
	Reference string `json:"reference"`
}
