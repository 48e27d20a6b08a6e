package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"kartvizit-service/internal/models"
	"kartvizit-service/internal/moneytolia"
	"kartvizit-service/internal/store"
)

// OrderStore is the slice of the store the order and payment services need.
// *store.Store satisfies it; tests substitute fakes.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error)
	UpdateOrderStatusIf(ctx context.Context, orderID int64, fromStatuses []string, status, paymentStatus string) (bool, error)
	SetOrderPaymentRef(ctx context.Context, orderID int64, paymentID string) error
	OverrideOrderStatus(ctx context.Context, orderID int64, status string) error
	GetCardByID(ctx context.Context, id int64) (*models.Card, error)
}

// CardStore is the slice of the store the card service needs.
type CardStore interface {
	CreateCard(ctx context.Context, card *models.Card) error
	GetCardByID(ctx context.Context, id int64) (*models.Card, error)
	GetCardBySlug(ctx context.Context, slug string) (*models.Card, error)
	GetCardsByUserID(ctx context.Context, userID int64) ([]models.Card, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	UpdateCardFlags(ctx context.Context, cardID int64, isActive, isPublic bool) error
}

// UserStore is the slice of the store the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// AdminStore is the slice of the store the admin service needs.
type AdminStore interface {
	CountUsers(ctx context.Context) (int64, error)
	CountCards(ctx context.Context) (int64, error)
	CountOrders(ctx context.Context) (int64, error)
	CountOrdersByStatus(ctx context.Context, status string) (int64, error)
	CountOrdersSince(ctx context.Context, since time.Time) (int64, error)
	SumRevenueSince(ctx context.Context, since time.Time, statuses []string) (decimal.Decimal, error)
	ListOrders(ctx context.Context, page store.Page, status, search string) ([]store.OrderListing, int64, error)
	ListUsers(ctx context.Context, page store.Page, search string) ([]store.UserListing, int64, error)
	ListCards(ctx context.Context, page store.Page, search string, isActive *bool) ([]models.Card, int64, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	OverrideOrderStatus(ctx context.Context, orderID int64, status string) error
}

// ViewCounter buffers public card views; *redisclient.Client satisfies it.
type ViewCounter interface {
	IncrCardViews(ctx context.Context, cardID int64) (int64, error)
}

// SessionStore holds opaque session tokens; *redisclient.Client satisfies it.
type SessionStore interface {
	SetSession(ctx context.Context, token string, userID int64, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (int64, error)
	DeleteSession(ctx context.Context, token string) error
}

// StatReader reads the event-derived counters the stats worker maintains;
// *redisclient.Client satisfies it.
type StatReader interface {
	GetStat(ctx context.Context, name string) (int64, error)
}

// PaymentGateway abstracts the Moneytolia client for tests.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, params moneytolia.CreatePaymentParams) moneytolia.Result
	VerifyPayment(ctx context.Context, orderNumber string) moneytolia.StatusResult
	VerifyCallback(cb moneytolia.CallbackData) bool
}

// Publisher abstracts the Kafka event publisher for tests.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatus(ctx context.Context, event *models.OrderStatusEvent) error
	PublishAdminOverride(ctx context.Context, event *models.AdminOverrideEvent) error
}
