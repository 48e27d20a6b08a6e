package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kartvizit-service/internal/models"
	"kartvizit-service/internal/moneytolia"
	"kartvizit-service/internal/service"
)

const callbackSecret = "endpoint-secret"

// stubOrderStore backs the callback endpoint test with one in-memory order.
type stubOrderStore struct {
	order *models.Order
}

func (s *stubOrderStore) CreateOrder(ctx context.Context, order *models.Order) error { return nil }
func (s *stubOrderStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	if s.order != nil && s.order.ID == id {
		return s.order, nil
	}
	return nil, fmt.Errorf("order not found: %d", id)
}
func (s *stubOrderStore) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	if s.order != nil && s.order.OrderNumber == orderNumber {
		return s.order, nil
	}
	return nil, nil
}
func (s *stubOrderStore) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	return nil, nil
}
func (s *stubOrderStore) UpdateOrderStatusIf(ctx context.Context, orderID int64, fromStatuses []string, status, paymentStatus string) (bool, error) {
	for _, from := range fromStatuses {
		if s.order.Status == from {
			s.order.Status = status
			s.order.PaymentStatus = paymentStatus
			return true, nil
		}
	}
	return false, nil
}
func (s *stubOrderStore) SetOrderPaymentRef(ctx context.Context, orderID int64, paymentID string) error {
	return nil
}
func (s *stubOrderStore) OverrideOrderStatus(ctx context.Context, orderID int64, status string) error {
	return nil
}
func (s *stubOrderStore) GetCardByID(ctx context.Context, id int64) (*models.Card, error) {
	return nil, fmt.Errorf("card not found: %d", id)
}

type stubGateway struct{}

func (stubGateway) CreatePayment(ctx context.Context, params moneytolia.CreatePaymentParams) moneytolia.Result {
	return moneytolia.Result{}
}
func (stubGateway) VerifyPayment(ctx context.Context, orderNumber string) moneytolia.StatusResult {
	return moneytolia.StatusResult{}
}
func (stubGateway) VerifyCallback(cb moneytolia.CallbackData) bool {
	return moneytolia.VerifyCallback(cb, callbackSecret)
}

type stubPublisher struct{}

func (stubPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return nil
}
func (stubPublisher) PublishOrderStatus(ctx context.Context, event *models.OrderStatusEvent) error {
	return nil
}
func (stubPublisher) PublishAdminOverride(ctx context.Context, event *models.AdminOverrideEvent) error {
	return nil
}

func newCallbackRouter(store *stubOrderStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	paymentService := service.NewPaymentService(store, stubGateway{}, stubPublisher{})
	h := &Handler{paymentService: paymentService}

	router := gin.New()
	router.POST("/api/v1/payment/moneytolia/callback", h.paymentCallback)
	return router
}

func postCallback(t *testing.T, router *gin.Engine, cb moneytolia.CallbackData) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(cb)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/moneytolia/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func pendingOrder() *models.Order {
	return &models.Order{
		ID:            1,
		OrderNumber:   "DK1700000000001",
		UserID:        1,
		CardID:        sql.NullInt64{Int64: 1, Valid: true},
		ProductType:   models.ProductDigitalCard,
		Quantity:      1,
		UnitPrice:     decimal.RequireFromString("100.00"),
		TotalPrice:    decimal.RequireFromString("100.00"),
		Currency:      models.Currency,
		Status:        models.OrderStatusPaymentPending,
		PaymentStatus: models.PaymentStatusPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func TestPaymentCallbackEndpoint(t *testing.T) {
	store := &stubOrderStore{order: pendingOrder()}
	router := newCallbackRouter(store)

	cb := moneytolia.CallbackData{
		OrderID: "DK1700000000001",
		Status:  "paid",
		Amount:  "100.00",
	}
	cb.Hash = moneytolia.Sign([]byte(cb.OrderID+callbackSecret+cb.Status+cb.Amount), callbackSecret)

	w := postCallback(t, router, cb)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.OrderStatusConfirmed, store.order.Status)
}

func TestPaymentCallbackEndpointUniformRejection(t *testing.T) {
	// Forged signature, unknown order, and wrong amount must be
	// indistinguishable from the caller's side.
	forged := moneytolia.CallbackData{
		OrderID: "DK1700000000001",
		Status:  "paid",
		Amount:  "100.00",
		Hash:    "deadbeef",
	}

	unknown := moneytolia.CallbackData{
		OrderID: "DK9999999999999",
		Status:  "paid",
		Amount:  "100.00",
	}
	unknown.Hash = moneytolia.Sign([]byte(unknown.OrderID+callbackSecret+unknown.Status+unknown.Amount), callbackSecret)

	mismatch := moneytolia.CallbackData{
		OrderID: "DK1700000000001",
		Status:  "paid",
		Amount:  "1.00",
	}
	mismatch.Hash = moneytolia.Sign([]byte(mismatch.OrderID+callbackSecret+mismatch.Status+mismatch.Amount), callbackSecret)

	var bodies []string
	for _, cb := range []moneytolia.CallbackData{forged, unknown, mismatch} {
		store := &stubOrderStore{order: pendingOrder()}
		router := newCallbackRouter(store)

		w := postCallback(t, router, cb)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, models.OrderStatusPaymentPending, store.order.Status)
		bodies = append(bodies, w.Body.String())
	}

	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[1], bodies[2])
}

func TestPaymentCallbackEndpointBadBody(t *testing.T) {
	router := newCallbackRouter(&stubOrderStore{order: pendingOrder()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/moneytolia/callback", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
