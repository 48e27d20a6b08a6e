package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"kartvizit-service/internal/models"
	"kartvizit-service/internal/moneytolia"
	"kartvizit-service/internal/util"
)

// PaymentService is the single entry point for asynchronous gateway
// callbacks. It fails closed: any verification, lookup, or amount problem
// collapses into the same generic rejection with no mutation.
type PaymentService struct {
	store     OrderStore
	gateway   PaymentGateway
	publisher Publisher
	logger    *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(store OrderStore, gateway PaymentGateway, publisher Publisher) *PaymentService {
	return &PaymentService{
		store:     store,
		gateway:   gateway,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// HandleCallback verifies and applies one gateway notification. Redelivered
// callbacks for an already-settled order are accepted as no-ops when they
// agree with the stored terminal state; callbacks that disagree with it are
// rejected, so exactly one terminal state ever survives.
func (ps *PaymentService) HandleCallback(ctx context.Context, cb moneytolia.CallbackData) error {
	ctx, span := util.StartSpan(ctx, "PaymentService.HandleCallback")
	defer span.End()

	util.CallbacksReceivedTotal.Inc()

	if !ps.gateway.VerifyCallback(cb) {
		util.CallbacksRejectedTotal.WithLabelValues("signature").Inc()
		ps.logger.Warn("Callback signature verification failed",
			zap.String("order_number", cb.OrderID))
		return ErrCallbackRejected
	}

	order, err := ps.store.GetOrderByNumber(ctx, cb.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		util.CallbacksRejectedTotal.WithLabelValues("unknown_order").Inc()
		ps.logger.Warn("Callback references unknown order",
			zap.String("order_number", cb.OrderID))
		return ErrCallbackRejected
	}

	if cb.Amount != "" {
		amount, parseErr := decimal.NewFromString(cb.Amount)
		if parseErr != nil || !amount.Equal(order.TotalPrice) {
			util.CallbacksRejectedTotal.WithLabelValues("amount_mismatch").Inc()
			ps.logger.Warn("Callback amount mismatch, flagged for manual review",
				zap.String("order_number", cb.OrderID),
				zap.String("callback_amount", cb.Amount),
				zap.String("order_total", order.TotalPrice.String()))
			return ErrCallbackRejected
		}
	}

	t := models.TransitionForCallback(cb.Status)

	applied, err := ps.store.UpdateOrderStatusIf(ctx, order.ID,
		models.CallbackPreStates(t.Status), t.Status, t.PaymentStatus)
	if err != nil {
		return err
	}
	if !applied {
		util.CallbacksStaleTotal.Inc()
		ps.logger.Warn("Stale callback refused, order already settled",
			zap.String("order_number", cb.OrderID),
			zap.String("callback_status", cb.Status))
		return ErrCallbackRejected
	}

	ps.recordTransition(t)
	ps.logger.Info("Callback applied",
		zap.String("order_number", cb.OrderID),
		zap.String("status", t.Status),
		zap.String("payment_status", t.PaymentStatus))

	if eventType := eventTypeForStatus(t.Status); eventType != "" {
		event := &models.OrderStatusEvent{
			BaseEvent:     newBaseEvent(eventType),
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			Status:        t.Status,
			PaymentStatus: t.PaymentStatus,
			Reason:        cb.FailedReasonMsg,
		}
		if err := ps.publisher.PublishOrderStatus(ctx, event); err != nil {
			ps.logger.Error("Failed to publish order status event", zap.Error(err))
		}
	}

	return nil
}

func (ps *PaymentService) recordTransition(t models.Transition) {
	switch t.Status {
	case models.OrderStatusConfirmed:
		util.OrdersConfirmedTotal.Inc()
	case models.OrderStatusFailed:
		util.OrdersFailedTotal.WithLabelValues("payment_callback").Inc()
	case models.OrderStatusCancelled:
		util.OrdersCancelledTotal.Inc()
	}
}

func eventTypeForStatus(status string) string {
	switch status {
	case models.OrderStatusConfirmed:
		return models.EventTypeOrderConfirmed
	case models.OrderStatusFailed:
		return models.EventTypeOrderFailed
	case models.OrderStatusCancelled:
		return models.EventTypeOrderCancelled
	default:
		return ""
	}
}

// PollStatus asks the gateway for the current transaction status of an
// order. Manual tool for support and administrators; it does not mutate the
// order.
func (ps *PaymentService) PollStatus(ctx context.Context, orderID int64) (*moneytolia.StatusResult, error) {
	order, err := ps.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, ErrNotFound
	}

	result := ps.gateway.VerifyPayment(ctx, order.OrderNumber)
	return &result, nil
}
