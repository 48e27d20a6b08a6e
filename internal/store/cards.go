package store

import (
	"context"
	"database/sql"
	"fmt"

	"kartvizit-service/internal/models"
)

// CreateCard inserts a new card profile
func (s *Store) CreateCard(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (user_id, slug, name, title, company, email, phone,
			website, address, bio, template, is_active, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, view_count, created_at, updated_at`

	return s.db.GetContext(ctx, card, query,
		card.UserID, card.Slug, card.Name, card.Title, card.Company, card.Email,
		card.Phone, card.Website, card.Address, card.Bio, card.Template,
		card.IsActive, card.IsPublic)
}

// GetCardByID retrieves a card by ID
func (s *Store) GetCardByID(ctx context.Context, id int64) (*models.Card, error) {
	var card models.Card
	err := s.db.GetContext(ctx, &card, "SELECT * FROM cards WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("card not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// GetCardBySlug retrieves a card by its public slug, nil when absent
func (s *Store) GetCardBySlug(ctx context.Context, slug string) (*models.Card, error) {
	var card models.Card
	err := s.db.GetContext(ctx, &card, "SELECT * FROM cards WHERE slug = $1", slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// GetCardsByUserID retrieves all cards owned by a user, newest first
func (s *Store) GetCardsByUserID(ctx context.Context, userID int64) ([]models.Card, error) {
	var cards []models.Card
	err := s.db.SelectContext(ctx, &cards,
		"SELECT * FROM cards WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return cards, err
}

// SlugExists reports whether a slug is already taken
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM cards WHERE slug = $1)", slug)
	return exists, err
}

// UpdateCardFlags updates the visibility flags of a card
func (s *Store) UpdateCardFlags(ctx context.Context, cardID int64, isActive, isPublic bool) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE cards SET is_active = $1, is_public = $2, updated_at = NOW() WHERE id = $3",
		isActive, isPublic, cardID)
	return err
}

// AddCardViews adds delta to a card's persisted view counter. The live
// counter lives in Redis; this is the periodic flush target.
func (s *Store) AddCardViews(ctx context.Context, cardID int64, delta int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE cards SET view_count = view_count + $1, updated_at = NOW() WHERE id = $2",
		delta, cardID)
	return err
}

// ListCards returns a page of cards, newest first, optionally filtered by a
// name/slug match and active flag.
func (s *Store) ListCards(ctx context.Context, page Page, search string, isActive *bool) ([]models.Card, int64, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(" AND (name ILIKE $%d OR slug ILIKE $%d)", len(args), len(args))
	}
	if isActive != nil {
		args = append(args, *isActive)
		where += fmt.Sprintf(" AND is_active = $%d", len(args))
	}

	var total int64
	if err := s.db.GetContext(ctx, &total,
		fmt.Sprintf("SELECT COUNT(*) FROM cards %s", where), args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT * FROM cards %s
		ORDER BY created_at DESC
		LIMIT %d OFFSET %d`, where, page.Limit, page.offset())

	var cards []models.Card
	if err := s.db.SelectContext(ctx, &cards, query, args...); err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// CountCards returns the total number of cards
func (s *Store) CountCards(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM cards")
	return count, err
}
