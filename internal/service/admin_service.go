package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kartvizit-service/internal/models"
	"kartvizit-service/internal/store"
	"kartvizit-service/internal/util"
)

// AdminService serves the dashboard: aggregate statistics, paginated
// listings, and the manual order status override.
type AdminService struct {
	store     AdminStore
	stats     StatReader
	publisher Publisher
	logger    *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(store AdminStore, stats StatReader, publisher Publisher) *AdminService {
	return &AdminService{
		store:     store,
		stats:     stats,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// revenueStatuses are the order states that count toward revenue.
var revenueStatuses = []string{
	models.OrderStatusConfirmed,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
}

// Stats computes the dashboard aggregates from the store. The database is
// the source of truth; LiveStats serves the cheap event-derived counters.
func (s *AdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	ctx, span := util.StartSpan(ctx, "AdminService.Stats")
	defer span.End()

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &models.AdminStats{}
	var err error

	if stats.TotalUsers, err = s.store.CountUsers(ctx); err != nil {
		return nil, err
	}
	if stats.TotalCards, err = s.store.CountCards(ctx); err != nil {
		return nil, err
	}
	if stats.TotalOrders, err = s.store.CountOrders(ctx); err != nil {
		return nil, err
	}
	if stats.PendingOrders, err = s.store.CountOrdersByStatus(ctx, models.OrderStatusPending); err != nil {
		return nil, err
	}
	if stats.ThisMonthOrders, err = s.store.CountOrdersSince(ctx, monthStart); err != nil {
		return nil, err
	}
	if stats.ThisMonthRevenue, err = s.store.SumRevenueSince(ctx, monthStart, revenueStatuses); err != nil {
		return nil, err
	}

	return stats, nil
}

// LiveStats reads the event-derived counters the stats worker maintains in
// Redis. Approximate by design; use Stats for the authoritative numbers.
func (s *AdminService) LiveStats(ctx context.Context) (map[string]int64, error) {
	counters := map[string]int64{}
	for _, name := range []string{"orders_created", "orders_confirmed", "orders_failed", "orders_cancelled", "admin_overrides"} {
		val, err := s.stats.GetStat(ctx, name)
		if err != nil {
			return nil, err
		}
		counters[name] = val
	}
	return counters, nil
}

// ListOrders returns a page of orders for the dashboard
func (s *AdminService) ListOrders(ctx context.Context, page store.Page, status, search string) ([]store.OrderListing, int64, error) {
	return s.store.ListOrders(ctx, page, status, search)
}

// ListUsers returns a page of users for the dashboard
func (s *AdminService) ListUsers(ctx context.Context, page store.Page, search string) ([]store.UserListing, int64, error) {
	return s.store.ListUsers(ctx, page, search)
}

// ListCards returns a page of cards for the dashboard
func (s *AdminService) ListCards(ctx context.Context, page store.Page, search string, isActive *bool) ([]models.Card, int64, error) {
	return s.store.ListCards(ctx, page, search, isActive)
}

// OverrideOrderStatus is the privileged escape hatch around the payment
// lifecycle. It accepts only the fulfillment-facing statuses, leaves the
// payment status untouched, and audits every use.
func (s *AdminService) OverrideOrderStatus(ctx context.Context, adminID, orderID int64, status string) (*models.Order, error) {
	if !models.ValidOverrideStatus(status) {
		return nil, validationf("invalid status")
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, ErrNotFound
	}

	fromStatus := order.Status
	if err := s.store.OverrideOrderStatus(ctx, orderID, status); err != nil {
		return nil, err
	}

	util.AdminOverridesTotal.WithLabelValues(status).Inc()
	s.logger.Warn("Order status overridden by admin",
		zap.Int64("order_id", orderID),
		zap.Int64("admin_id", adminID),
		zap.String("from", fromStatus),
		zap.String("to", status))

	event := &models.AdminOverrideEvent{
		BaseEvent:   newBaseEvent(models.EventTypeAdminOverride),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		AdminID:     adminID,
		FromStatus:  fromStatus,
		ToStatus:    status,
	}
	if err := s.publisher.PublishAdminOverride(ctx, event); err != nil {
		s.logger.Error("Failed to publish admin override event", zap.Error(err))
	}

	order.Status = status
	return order, nil
}
