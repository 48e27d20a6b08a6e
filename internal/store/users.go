package store

import (
	"context"
	"database/sql"
	"fmt"

	"kartvizit-service/internal/models"
)

// CreateUser inserts a new user. The email column carries a unique
// constraint; a duplicate surfaces as a database error.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, user, query,
		user.Name, user.Email, user.PasswordHash, user.Role)
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, nil when absent
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserListing is a user row augmented with aggregate counts for the admin
// dashboard.
type UserListing struct {
	models.User
	CardCount  int64 `db:"card_count" json:"card_count"`
	OrderCount int64 `db:"order_count" json:"order_count"`
}

// ListUsers returns a page of users, newest first, optionally filtered by a
// case-insensitive name/email match, together with the total row count.
func (s *Store) ListUsers(ctx context.Context, page Page, search string) ([]UserListing, int64, error) {
	where := ""
	args := []interface{}{}
	if search != "" {
		where = "WHERE u.name ILIKE $1 OR u.email ILIKE $1"
		args = append(args, "%"+search+"%")
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users u %s", where)
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT u.*,
		       (SELECT COUNT(*) FROM cards c WHERE c.user_id = u.id) AS card_count,
		       (SELECT COUNT(*) FROM orders o WHERE o.user_id = u.id) AS order_count
		FROM users u %s
		ORDER BY u.created_at DESC
		LIMIT %d OFFSET %d`, where, page.Limit, page.offset())

	var users []UserListing
	if err := s.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CountUsers returns the total number of users
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM users")
	return count, err
}
