package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"kartvizit-service/internal/models"
	"kartvizit-service/internal/util"
)

// CardService handles card profile management and public card resolution.
type CardService struct {
	store  CardStore
	views  ViewCounter
	logger *zap.Logger
}

// NewCardService creates a new card service
func NewCardService(store CardStore, views ViewCounter) *CardService {
	return &CardService{
		store:  store,
		views:  views,
		logger: util.GetLogger(),
	}
}

// CreateCardRequest carries the profile fields of a new card
type CreateCardRequest struct {
	Name     string `json:"name" binding:"required"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
	Address  string `json:"address"`
	Bio      string `json:"bio"`
	Template string `json:"template"`
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// CreateCard creates a card with a unique slug derived from its name;
// collisions get a numeric suffix.
func (s *CardService) CreateCard(ctx context.Context, userID int64, req *CreateCardRequest) (*models.Card, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, validationf("a name is required")
	}
	if req.Template == "" {
		req.Template = "modern"
	}

	baseSlug := slugify(req.Name)
	if baseSlug == "" {
		baseSlug = "card"
	}

	slug := baseSlug
	for counter := 1; ; counter++ {
		taken, err := s.store.SlugExists(ctx, slug)
		if err != nil {
			return nil, err
		}
		if !taken {
			break
		}
		slug = fmt.Sprintf("%s-%d", baseSlug, counter)
	}

	card := &models.Card{
		UserID:   userID,
		Slug:     slug,
		Name:     req.Name,
		Title:    req.Title,
		Company:  req.Company,
		Email:    req.Email,
		Phone:    req.Phone,
		Website:  req.Website,
		Address:  req.Address,
		Bio:      req.Bio,
		Template: req.Template,
		IsActive: true,
		IsPublic: true,
	}

	if err := s.store.CreateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	util.CardsCreatedTotal.Inc()
	s.logger.Info("Card created",
		zap.Int64("card_id", card.ID),
		zap.String("slug", card.Slug))

	return card, nil
}

// ListCards retrieves all cards owned by userID
func (s *CardService) ListCards(ctx context.Context, userID int64) ([]models.Card, error) {
	return s.store.GetCardsByUserID(ctx, userID)
}

// GetPublicCard resolves a public card by slug and counts the view. The
// view counter is buffered in Redis and flushed to the store by the stats
// worker; a Redis failure loses the count but never the page.
func (s *CardService) GetPublicCard(ctx context.Context, slug string) (*models.Card, error) {
	card, err := s.store.GetCardBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if card == nil || !card.IsActive || !card.IsPublic {
		return nil, ErrNotFound
	}

	util.CardViewsTotal.Inc()
	if _, err := s.views.IncrCardViews(ctx, card.ID); err != nil {
		s.logger.Warn("Failed to count card view",
			zap.Int64("card_id", card.ID),
			zap.Error(err))
	}

	return card, nil
}

// UpdateFlags updates a card's visibility flags after an ownership check
func (s *CardService) UpdateFlags(ctx context.Context, userID, cardID int64, isActive, isPublic bool) error {
	card, err := s.store.GetCardByID(ctx, cardID)
	if err != nil {
		return ErrNotFound
	}
	if card.UserID != userID {
		return ErrForbidden
	}
	return s.store.UpdateCardFlags(ctx, cardID, isActive, isPublic)
}
