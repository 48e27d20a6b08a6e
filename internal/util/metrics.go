package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_confirmed_total",
		Help: "Total number of orders confirmed after payment",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed orders",
	}, []string{"reason"})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	AdminOverridesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_order_overrides_total",
		Help: "Total number of manual order status overrides",
	}, []string{"to_status"})

	PaymentAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_attempts_total",
		Help: "Total number of payment creation attempts",
	})

	PaymentRedirectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_redirects_total",
		Help: "Total number of successful payment redirect URLs obtained",
	})

	PaymentFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_failed_total",
		Help: "Total number of failed payment creations",
	}, []string{"reason"})

	PaymentGatewayLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_gateway_latency_seconds",
		Help:    "Latency of payment gateway calls",
		Buckets: prometheus.DefBuckets,
	})

	CallbacksReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_callbacks_received_total",
		Help: "Total number of payment callbacks received",
	})

	CallbacksRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_callbacks_rejected_total",
		Help: "Total number of rejected payment callbacks",
	}, []string{"reason"})

	CallbacksStaleTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_callbacks_stale_total",
		Help: "Total number of callbacks refused because the order already settled",
	})

	CardsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cards_created_total",
		Help: "Total number of cards created",
	})

	CardViewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "card_views_total",
		Help: "Total number of public card views",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
