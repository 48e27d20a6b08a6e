package models

import "time"

// Event types
const (
	EventTypeOrderCreated        = "ORDER_CREATED"
	EventTypeOrderPaymentPending = "ORDER_PAYMENT_PENDING"
	EventTypeOrderConfirmed      = "ORDER_CONFIRMED"
	EventTypeOrderFailed         = "ORDER_FAILED"
	EventTypeOrderCancelled      = "ORDER_CANCELLED"
	EventTypeAdminOverride       = "ORDER_ADMIN_OVERRIDE"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when a checkout attempt creates an order
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	UserID      int64  `json:"user_id"`
	ProductType string `json:"product_type"`
	Quantity    int    `json:"quantity"`
	TotalPrice  string `json:"total_price"`
	Currency    string `json:"currency"`
}

// OrderStatusEvent published on every payment-driven status change
// (payment_pending, confirmed, failed, cancelled).
type OrderStatusEvent struct {
	BaseEvent
	OrderID       int64  `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	Reason        string `json:"reason,omitempty"`
}

// AdminOverrideEvent audits manual status changes by administrators.
type AdminOverrideEvent struct {
	BaseEvent
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	AdminID     int64  `json:"admin_id"`
	FromStatus  string `json:"from_status"`
	ToStatus    string `json:"to_status"`
}
