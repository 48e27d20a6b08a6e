package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"kartvizit-service/internal/models"
)

// CreateOrder inserts a new order in its initial pending/pending state
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (order_number, user_id, card_id, product_type, quantity,
			unit_price, total_price, currency, status, payment_status,
			payment_method, shipping_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, order, query,
		order.OrderNumber, order.UserID, order.CardID, order.ProductType,
		order.Quantity, order.UnitPrice, order.TotalPrice, order.Currency,
		order.Status, order.PaymentStatus, order.PaymentMethod, order.ShippingAddress)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByNumber retrieves an order by its human-facing number, nil when
// absent
func (s *Store) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE order_number = $1", orderNumber)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves orders for a user, newest first
func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// UpdateOrderStatusIf moves an order to status/paymentStatus only when its
// current status is still one of fromStatuses. Returns false when the stored
// state already moved past the expected pre-state; the caller decides whether
// that is a benign redelivery or a stale callback. This is the guard that
// keeps two concurrent callbacks for one order from corrupting each other.
func (s *Store) UpdateOrderStatusIf(ctx context.Context, orderID int64, fromStatuses []string, status, paymentStatus string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, payment_status = $2, updated_at = NOW()
		WHERE id = $3 AND status = ANY($4)`,
		status, paymentStatus, orderID, pq.Array(fromStatuses))
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// SetOrderPaymentRef stores the external payment reference on an order
func (s *Store) SetOrderPaymentRef(ctx context.Context, orderID int64, paymentID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET payment_id = $1, updated_at = NOW() WHERE id = $2",
		paymentID, orderID)
	return err
}

// OverrideOrderStatus sets the order status unconditionally, leaving the
// payment status untouched. Admin-only escape hatch; callers audit it.
func (s *Store) OverrideOrderStatus(ctx context.Context, orderID int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("order not found: %d", orderID)
	}
	return nil
}

// OrderListing is an order row joined with owner and card display fields.
type OrderListing struct {
	models.Order
	UserName  string         `db:"user_name" json:"user_name"`
	UserEmail string         `db:"user_email" json:"user_email"`
	CardName  sql.NullString `db:"card_name" json:"card_name,omitempty"`
	CardSlug  sql.NullString `db:"card_slug" json:"card_slug,omitempty"`
}

// ListOrders returns a page of orders, newest first, optionally filtered by
// status and a search over order number and owner name/email.
func (s *Store) ListOrders(ctx context.Context, page Page, status, search string) ([]OrderListing, int64, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(" AND o.status = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(" AND (o.order_number ILIKE $%d OR u.name ILIKE $%d OR u.email ILIKE $%d)",
			len(args), len(args), len(args))
	}

	var total int64
	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM orders o JOIN users u ON u.id = o.user_id %s", where)
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT o.*, u.name AS user_name, u.email AS user_email,
		       c.name AS card_name, c.slug AS card_slug
		FROM orders o
		JOIN users u ON u.id = o.user_id
		LEFT JOIN cards c ON c.id = o.card_id
		%s
		ORDER BY o.created_at DESC
		LIMIT %d OFFSET %d`, where, page.Limit, page.offset())

	var orders []OrderListing
	if err := s.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// CountOrders returns the total number of orders
func (s *Store) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM orders")
	return count, err
}

// CountOrdersByStatus returns the number of orders in a given status
func (s *Store) CountOrdersByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM orders WHERE status = $1", status)
	return count, err
}

// CountOrdersSince returns the number of orders created at or after since
func (s *Store) CountOrdersSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM orders WHERE created_at >= $1", since)
	return count, err
}

// SumRevenueSince sums total_price over orders created at or after since in
// any of the given statuses.
func (s *Store) SumRevenueSince(ctx context.Context, since time.Time, statuses []string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := s.db.GetContext(ctx, &sum,
		"SELECT SUM(total_price) FROM orders WHERE created_at >= $1 AND status = ANY($2)",
		since, pq.Array(statuses))
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
