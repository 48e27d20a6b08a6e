package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"kartvizit-service/internal/models"
	"kartvizit-service/internal/moneytolia"
	"kartvizit-service/internal/util"
)

// OrderService owns the order lifecycle from checkout to the payment
// redirect. The asynchronous half of the lifecycle lives in PaymentService.
type OrderService struct {
	store     OrderStore
	gateway   PaymentGateway
	publisher Publisher
	publicURL string
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store OrderStore, gateway PaymentGateway, publisher Publisher, publicURL string) *OrderService {
	return &OrderService{
		store:     store,
		gateway:   gateway,
		publisher: publisher,
		publicURL: publicURL,
		logger:    util.GetLogger(),
	}
}

// CustomerInfo is the billing identity supplied at checkout
type CustomerInfo struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

// CreateOrderRequest represents a checkout attempt
type CreateOrderRequest struct {
	CardID                int64                   `json:"card_id" binding:"required"`
	Quantity              int                     `json:"quantity"`
	UnitPrice             decimal.Decimal         `json:"unit_price"`
	ProductType           string                  `json:"product_type"`
	PaymentMethod         string                  `json:"payment_method"`
	ShippingAddress       *models.ShippingAddress `json:"shipping_address,omitempty"`
	CustomerInfo          CustomerInfo            `json:"customer_info"`
	AcceptedTerms         bool                    `json:"accepted_terms"`
	AcceptedPrivacyPolicy bool                    `json:"accepted_privacy_policy"`
	ClientIP              string                  `json:"-"`
}

// CreateOrderResponse is returned after a successful checkout; the caller
// redirects the customer to PaymentURL.
type CreateOrderResponse struct {
	Order      *models.Order `json:"order"`
	PaymentURL string        `json:"payment_url"`
}

func (s *OrderService) validateCreate(req *CreateOrderRequest) error {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.ProductType == "" {
		req.ProductType = models.ProductPhysicalCard
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "moneytolia"
	}

	if req.Quantity < 0 {
		return validationf("quantity must be positive")
	}
	if !req.UnitPrice.IsPositive() {
		return validationf("a valid price is required")
	}
	if !models.ValidProductType(req.ProductType) {
		return validationf("unknown product type")
	}
	if !req.AcceptedTerms {
		return validationf("the distance sales agreement must be accepted")
	}
	if !req.AcceptedPrivacyPolicy {
		return validationf("the privacy policy must be accepted")
	}
	if req.CustomerInfo.Name == "" || req.CustomerInfo.Email == "" || req.CustomerInfo.Phone == "" {
		return validationf("customer information is incomplete")
	}
	if req.ProductType == models.ProductPhysicalCard && req.ShippingAddress == nil {
		return validationf("a shipping address is required for physical cards")
	}
	return nil
}

// CreateOrder creates an order in pending/pending, initiates payment with
// the gateway, and moves the order to payment_pending on success or
// failed/failed otherwise. Exactly one gateway attempt per checkout.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	card, err := s.store.GetCardByID(ctx, req.CardID)
	if err != nil {
		return nil, ErrNotFound
	}
	if card.UserID != userID {
		return nil, ErrForbidden
	}

	totalPrice := req.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))
	orderNumber := fmt.Sprintf("DK%d", time.Now().UnixMilli())

	order := &models.Order{
		OrderNumber:     orderNumber,
		UserID:          userID,
		CardID:          sql.NullInt64{Int64: card.ID, Valid: true},
		ProductType:     req.ProductType,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		TotalPrice:      totalPrice,
		Currency:        models.Currency,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("total_price", totalPrice.String()))

	createdEvent := &models.OrderCreatedEvent{
		BaseEvent:   newBaseEvent(models.EventTypeOrderCreated),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		ProductType: order.ProductType,
		Quantity:    order.Quantity,
		TotalPrice:  order.TotalPrice.String(),
		Currency:    order.Currency,
	}
	if err := s.publisher.PublishOrderCreated(ctx, createdEvent); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	result := s.createGatewayPayment(ctx, order, card, req)
	if !result.Success {
		s.failOrder(ctx, order, result.ErrorMsg)
		return nil, &GatewayError{Msg: result.ErrorMsg}
	}

	moved, err := s.store.UpdateOrderStatusIf(ctx, order.ID,
		[]string{models.OrderStatusPending},
		models.OrderStatusPaymentPending, models.PaymentStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !moved {
		s.logger.Warn("Order left pending before payment redirect",
			zap.Int64("order_id", order.ID))
	}

	if err := s.store.SetOrderPaymentRef(ctx, order.ID, order.OrderNumber); err != nil {
		s.logger.Error("Failed to store payment reference", zap.Error(err))
	}

	util.PaymentRedirectsTotal.Inc()
	order.Status = models.OrderStatusPaymentPending
	order.PaymentID = sql.NullString{String: order.OrderNumber, Valid: true}

	statusEvent := &models.OrderStatusEvent{
		BaseEvent:     newBaseEvent(models.EventTypeOrderPaymentPending),
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
	}
	if err := s.publisher.PublishOrderStatus(ctx, statusEvent); err != nil {
		s.logger.Error("Failed to publish order status event", zap.Error(err))
	}

	return &CreateOrderResponse{Order: order, PaymentURL: result.PaymentURL}, nil
}

func (s *OrderService) createGatewayPayment(ctx context.Context, order *models.Order, card *models.Card, req *CreateOrderRequest) moneytolia.Result {
	util.PaymentAttemptsTotal.Inc()
	start := time.Now()
	defer func() {
		util.PaymentGatewayLatency.Observe(time.Since(start).Seconds())
	}()

	productLabel := "Dijital"
	if order.ProductType == models.ProductPhysicalCard {
		productLabel = "Fiziksel"
	}

	city, country, address, postalCode := "İstanbul", "Turkey", "Adres bilgisi yok", "34000"
	if req.ShippingAddress != nil {
		if req.ShippingAddress.City != "" {
			city = req.ShippingAddress.City
		}
		if req.ShippingAddress.Country != "" {
			country = req.ShippingAddress.Country
		}
		if req.ShippingAddress.Address != "" {
			address = req.ShippingAddress.Address
		}
		if req.ShippingAddress.PostalCode != "" {
			postalCode = req.ShippingAddress.PostalCode
		}
	}

	unitPrice, _ := order.UnitPrice.Float64()

	return s.gateway.CreatePayment(ctx, moneytolia.CreatePaymentParams{
		OrderNumber:  order.OrderNumber,
		Amount:       order.TotalPrice,
		CustomerName: req.CustomerInfo.Name,
		Email:        req.CustomerInfo.Email,
		Phone:        req.CustomerInfo.Phone,
		City:         city,
		Country:      country,
		Address:      address,
		PostalCode:   postalCode,
		ClientIP:     req.ClientIP,
		OKURL:        fmt.Sprintf("%s/order/success?order=%s", s.publicURL, order.OrderNumber),
		FailURL:      fmt.Sprintf("%s/order/fail?order=%s", s.publicURL, order.OrderNumber),
		BasketItems: []moneytolia.BasketItem{{
			Name:        fmt.Sprintf("%s - %s Kartvizit", card.Name, productLabel),
			Description: fmt.Sprintf("%d adet kartvizit", order.Quantity),
			Category:    "Kartvizit",
			Quantity:    order.Quantity,
			UnitPrice:   unitPrice,
		}},
	})
}

func (s *OrderService) failOrder(ctx context.Context, order *models.Order, reason string) {
	util.PaymentFailedTotal.WithLabelValues("gateway").Inc()
	util.OrdersFailedTotal.WithLabelValues("payment_creation").Inc()

	_, err := s.store.UpdateOrderStatusIf(ctx, order.ID,
		[]string{models.OrderStatusPending},
		models.OrderStatusFailed, models.PaymentStatusFailed)
	if err != nil {
		s.logger.Error("Failed to mark order failed",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}

	s.logger.Warn("Payment creation failed",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("reason", reason))

	event := &models.OrderStatusEvent{
		BaseEvent:     newBaseEvent(models.EventTypeOrderFailed),
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        models.OrderStatusFailed,
		PaymentStatus: models.PaymentStatusFailed,
		Reason:        reason,
	}
	if err := s.publisher.PublishOrderStatus(ctx, event); err != nil {
		s.logger.Error("Failed to publish order status event", zap.Error(err))
	}
}

// GetOrder retrieves an order owned by userID
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, ErrNotFound
	}
	if order.UserID != userID {
		return nil, ErrNotFound
	}
	return order, nil
}

// ListOrders retrieves all orders owned by userID, newest first
func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.store.GetOrdersByUserID(ctx, userID)
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
