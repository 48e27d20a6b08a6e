package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// User represents a registered account
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Card represents a shareable digital business card profile
type Card struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Slug      string    `db:"slug" json:"slug"`
	Name      string    `db:"name" json:"name"`
	Title     string    `db:"title" json:"title,omitempty"`
	Company   string    `db:"company" json:"company,omitempty"`
	Email     string    `db:"email" json:"email,omitempty"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Website   string    `db:"website" json:"website,omitempty"`
	Address   string    `db:"address" json:"address,omitempty"`
	Bio       string    `db:"bio" json:"bio,omitempty"`
	Template  string    `db:"template" json:"template"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	IsPublic  bool      `db:"is_public" json:"is_public"`
	ViewCount int64     `db:"view_count" json:"view_count"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ShippingAddress is stored on the order as a JSONB column. Nil for digital
// products.
type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

func (a *ShippingAddress) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *ShippingAddress) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("unsupported shipping address type %T", src)
	}
}

// Order represents one purchase of a card product. Orders are never deleted;
// they form the audit trail for payments.
type Order struct {
	ID              int64            `db:"id" json:"id"`
	OrderNumber     string           `db:"order_number" json:"order_number"`
	UserID          int64            `db:"user_id" json:"user_id"`
	CardID          sql.NullInt64    `db:"card_id" json:"card_id,omitempty"`
	ProductType     string           `db:"product_type" json:"product_type"`
	Quantity        int              `db:"quantity" json:"quantity"`
	UnitPrice       decimal.Decimal  `db:"unit_price" json:"unit_price"`
	TotalPrice      decimal.Decimal  `db:"total_price" json:"total_price"`
	Currency        string           `db:"currency" json:"currency"`
	Status          string           `db:"status" json:"status"`
	PaymentStatus   string           `db:"payment_status" json:"payment_status"`
	PaymentMethod   string           `db:"payment_method" json:"payment_method"`
	PaymentID       sql.NullString   `db:"payment_id" json:"payment_id,omitempty"`
	ShippingAddress *ShippingAddress `db:"shipping_address" json:"shipping_address,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// Product types
const (
	ProductPhysicalCard = "physical_card"
	ProductDigitalCard  = "digital_card"
)

// Order statuses
const (
	OrderStatusPending        = "pending"
	OrderStatusPaymentPending = "payment_pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusShipped        = "shipped"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
	OrderStatusFailed         = "failed"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

// Currency is fixed for this deployment.
const Currency = "TRY"

// AdminStats is the aggregate dashboard view.
type AdminStats struct {
	TotalUsers       int64           `json:"total_users"`
	TotalCards       int64           `json:"total_cards"`
	TotalOrders      int64           `json:"total_orders"`
	PendingOrders    int64           `json:"pending_orders"`
	ThisMonthOrders  int64           `json:"this_month_orders"`
	ThisMonthRevenue decimal.Decimal `json:"this_month_revenue"`
}
