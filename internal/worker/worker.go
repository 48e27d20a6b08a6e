package worker

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"kartvizit-service/internal/broker"
	"kartvizit-service/internal/models"
	"kartvizit-service/internal/redisclient"
	"kartvizit-service/internal/store"
	"kartvizit-service/internal/util"
)

const eventClaimTTL = 24 * time.Hour

// StatsWorker consumes order events and maintains the Redis dashboard
// counters. Events are deduplicated by ID so Kafka redeliveries do not
// inflate the counts.
type StatsWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	redis        *redisclient.Client
	logger       *zap.Logger
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(consumer *broker.Consumer, redis *redisclient.Client) *StatsWorker {
	w := &StatsWorker{
		consumer: consumer,
		redis:    redis,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	eventHandler.OnOrderStatus(w.handleOrderStatus)
	eventHandler.OnAdminOverride(w.handleAdminOverride)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *StatsWorker) Start(ctx context.Context) error {
	log.Println("Starting stats worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *StatsWorker) Stop() error {
	log.Println("Stopping stats worker...")
	return w.consumer.Close()
}

func (w *StatsWorker) claim(ctx context.Context, eventID string) bool {
	fresh, err := w.redis.ClaimEvent(ctx, eventID, eventClaimTTL)
	if err != nil {
		w.logger.Error("Failed to claim event", zap.String("event_id", eventID), zap.Error(err))
		return false
	}
	return fresh
}

func (w *StatsWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	if !w.claim(ctx, event.EventID) {
		return nil
	}
	return w.redis.IncrStat(ctx, "orders_created")
}

func (w *StatsWorker) handleOrderStatus(ctx context.Context, event *models.OrderStatusEvent) error {
	if !w.claim(ctx, event.EventID) {
		return nil
	}

	switch event.Status {
	case models.OrderStatusConfirmed:
		return w.redis.IncrStat(ctx, "orders_confirmed")
	case models.OrderStatusFailed:
		return w.redis.IncrStat(ctx, "orders_failed")
	case models.OrderStatusCancelled:
		return w.redis.IncrStat(ctx, "orders_cancelled")
	}
	return nil
}

func (w *StatsWorker) handleAdminOverride(ctx context.Context, event *models.AdminOverrideEvent) error {
	if !w.claim(ctx, event.EventID) {
		return nil
	}
	return w.redis.IncrStat(ctx, "admin_overrides")
}

// ViewFlushWorker periodically drains the buffered card view counters from
// Redis into the database.
type ViewFlushWorker struct {
	store    *store.Store
	redis    *redisclient.Client
	interval time.Duration
	logger   *zap.Logger
}

// NewViewFlushWorker creates a new view flush worker
func NewViewFlushWorker(store *store.Store, redis *redisclient.Client, interval time.Duration) *ViewFlushWorker {
	return &ViewFlushWorker{
		store:    store,
		redis:    redis,
		interval: interval,
		logger:   util.GetLogger(),
	}
}

// Start runs the flush loop until ctx is cancelled
func (w *ViewFlushWorker) Start(ctx context.Context) error {
	log.Println("Starting view flush worker...")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.flush(context.Background())
			return ctx.Err()
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *ViewFlushWorker) flush(ctx context.Context) {
	cardIDs, err := w.redis.PendingViewCards(ctx)
	if err != nil {
		w.logger.Error("Failed to list pending view counters", zap.Error(err))
		return
	}

	for _, cardID := range cardIDs {
		views, err := w.redis.DrainCardViews(ctx, cardID)
		if err != nil {
			w.logger.Error("Failed to drain view counter",
				zap.Int64("card_id", cardID),
				zap.Error(err))
			continue
		}
		if views == 0 {
			continue
		}

		if err := w.store.AddCardViews(ctx, cardID, views); err != nil {
			w.logger.Error("Failed to persist card views",
				zap.Int64("card_id", cardID),
				zap.Int64("views", views),
				zap.Error(err))
		}
	}
}
