package models

// Transition is a coupled order/payment status move.
type Transition struct {
	Status        string
	PaymentStatus string
}

// TransitionForCallback maps a gateway callback status to the resulting
// order/payment pair. Unrecognized statuses resolve to pending/pending,
// leaving a freshly created order where it was.
func TransitionForCallback(callbackStatus string) Transition {
	switch callbackStatus {
	case "success", "paid":
		return Transition{OrderStatusConfirmed, PaymentStatusPaid}
	case "failed", "error":
		return Transition{OrderStatusFailed, PaymentStatusFailed}
	case "cancelled":
		return Transition{OrderStatusCancelled, PaymentStatusCancelled}
	default:
		return Transition{OrderStatusPending, PaymentStatusPending}
	}
}

// CallbackPreStates lists the order statuses from which a callback may move
// an order into target. Including target itself makes redelivered callbacks
// a no-op instead of a conflict; a different terminal state refuses the
// update, so a stale callback can never revert a settled order.
func CallbackPreStates(target string) []string {
	return []string{OrderStatusPending, OrderStatusPaymentPending, target}
}

// IsTerminal reports whether no further automatic transition leaves status.
// shipped and delivered are fulfillment states reachable only by admin
// override, never by the payment flow.
func IsTerminal(status string) bool {
	switch status {
	case OrderStatusConfirmed, OrderStatusFailed, OrderStatusCancelled:
		return true
	}
	return false
}

var overrideStatuses = map[string]bool{
	OrderStatusPending:   true,
	OrderStatusConfirmed: true,
	OrderStatusShipped:   true,
	OrderStatusDelivered: true,
	OrderStatusCancelled: true,
}

// ValidOverrideStatus reports whether an admin override may set status.
// payment_pending and failed are owned by the payment flow and cannot be
// forced manually.
func ValidOverrideStatus(status string) bool {
	return overrideStatuses[status]
}

func ValidProductType(productType string) bool {
	return productType == ProductPhysicalCard || productType == ProductDigitalCard
}
