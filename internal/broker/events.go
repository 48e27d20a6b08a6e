package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"

	"kartvizit-service/internal/models"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func orderKey(orderID int64) string {
	return fmt.Sprintf("order-%d", orderID)
}

// PublishOrderCreated publishes an OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderStatus publishes a payment-driven status change
func (ep *EventPublisher) PublishOrderStatus(ctx context.Context, event *models.OrderStatusEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishAdminOverride publishes an audit record for a manual override
func (ep *EventPublisher) PublishAdminOverride(ctx context.Context, event *models.AdminOverrideEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// EventHandler routes consumed order events to registered callbacks
type EventHandler struct {
	onOrderCreated  func(context.Context, *models.OrderCreatedEvent) error
	onOrderStatus   func(context.Context, *models.OrderStatusEvent) error
	onAdminOverride func(context.Context, *models.AdminOverrideEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOrderCreated registers a handler for OrderCreated events
func (eh *EventHandler) OnOrderCreated(handler func(context.Context, *models.OrderCreatedEvent) error) {
	eh.onOrderCreated = handler
}

// OnOrderStatus registers a handler for order status events
func (eh *EventHandler) OnOrderStatus(handler func(context.Context, *models.OrderStatusEvent) error) {
	eh.onOrderStatus = handler
}

// OnAdminOverride registers a handler for admin override events
func (eh *EventHandler) OnAdminOverride(handler func(context.Context, *models.AdminOverrideEvent) error) {
	eh.onAdminOverride = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeOrderCreated:
		if eh.onOrderCreated != nil {
			var event models.OrderCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderCreated event: %w", err)
			}
			return eh.onOrderCreated(ctx, &event)
		}

	case models.EventTypeOrderPaymentPending,
		models.EventTypeOrderConfirmed,
		models.EventTypeOrderFailed,
		models.EventTypeOrderCancelled:
		if eh.onOrderStatus != nil {
			var event models.OrderStatusEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal order status event: %w", err)
			}
			return eh.onOrderStatus(ctx, &event)
		}

	case models.EventTypeAdminOverride:
		if eh.onAdminOverride != nil {
			var event models.AdminOverrideEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal AdminOverride event: %w", err)
			}
			return eh.onAdminOverride(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
