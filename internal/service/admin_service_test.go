package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kartvizit-service/internal/models"
)

func newAdminFixture() (*AdminService, *fakeAdminStore, *fakePublisher) {
	st := &fakeAdminStore{
		fakeOrderStore: newFakeOrderStore(),
		userCount:      10,
		cardCount:      7,
		orderCount:     25,
		pending:        3,
		monthCount:     5,
		revenue:        decimal.RequireFromString("1500.00"),
	}
	pub := &fakePublisher{}
	stats := &fakeStatReader{stats: map[string]int64{
		"orders_created":   25,
		"orders_confirmed": 18,
	}}
	return NewAdminService(st, stats, pub), st, pub
}

func TestAdminStats(t *testing.T) {
	svc, _, _ := newAdminFixture()

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(10), stats.TotalUsers)
	assert.Equal(t, int64(7), stats.TotalCards)
	assert.Equal(t, int64(25), stats.TotalOrders)
	assert.Equal(t, int64(3), stats.PendingOrders)
	assert.Equal(t, int64(5), stats.ThisMonthOrders)
	assert.True(t, stats.ThisMonthRevenue.Equal(decimal.RequireFromString("1500.00")))
}

func TestAdminLiveStats(t *testing.T) {
	svc, _, _ := newAdminFixture()

	counters, err := svc.LiveStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(25), counters["orders_created"])
	assert.Equal(t, int64(18), counters["orders_confirmed"])
	// Counters that never fired report zero instead of being absent.
	assert.Contains(t, counters, "orders_failed")
	assert.Equal(t, int64(0), counters["orders_failed"])
}

func TestOverrideOrderStatus(t *testing.T) {
	svc, st, pub := newAdminFixture()

	order := &models.Order{
		OrderNumber:   "DK1700000000001",
		UserID:        1,
		Status:        models.OrderStatusConfirmed,
		PaymentStatus: models.PaymentStatusPaid,
	}
	require.NoError(t, st.CreateOrder(context.Background(), order))

	updated, err := svc.OverrideOrderStatus(context.Background(), 99, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	stored, _ := st.GetOrderByID(context.Background(), order.ID)
	assert.Equal(t, models.OrderStatusShipped, stored.Status)
	// The override never touches payment state.
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)

	require.Len(t, pub.overrides, 1)
	event := pub.overrides[0]
	assert.Equal(t, models.EventTypeAdminOverride, event.EventType)
	assert.Equal(t, int64(99), event.AdminID)
	assert.Equal(t, models.OrderStatusConfirmed, event.FromStatus)
	assert.Equal(t, models.OrderStatusShipped, event.ToStatus)
}

func TestOverrideOrderStatusInvalid(t *testing.T) {
	svc, st, pub := newAdminFixture()

	order := &models.Order{
		OrderNumber: "DK1700000000001",
		UserID:      1,
		Status:      models.OrderStatusPaymentPending,
	}
	require.NoError(t, st.CreateOrder(context.Background(), order))

	for _, status := range []string{models.OrderStatusPaymentPending, models.OrderStatusFailed, "refunded"} {
		_, err := svc.OverrideOrderStatus(context.Background(), 99, order.ID, status)

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, status)
	}

	stored, _ := st.GetOrderByID(context.Background(), order.ID)
	assert.Equal(t, models.OrderStatusPaymentPending, stored.Status)
	assert.Empty(t, pub.overrides)
}

func TestOverrideOrderStatusUnknownOrder(t *testing.T) {
	svc, _, _ := newAdminFixture()

	_, err := svc.OverrideOrderStatus(context.Background(), 99, 12345, models.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrNotFound)
}
