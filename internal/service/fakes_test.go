package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"kartvizit-service/internal/models"
	"kartvizit-service/internal/moneytolia"
	"kartvizit-service/internal/store"
)

// fakeOrderStore is an in-memory OrderStore with the same conditional-update
// semantics as the SQL store.
type fakeOrderStore struct {
	mu       sync.Mutex
	nextID   int64
	orders   map[int64]*models.Order
	byNumber map[string]int64
	cards    map[int64]*models.Card
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders:   map[int64]*models.Order{},
		byNumber: map[string]int64{},
		cards:    map[int64]*models.Card{},
	}
}

func (f *fakeOrderStore) addCard(card *models.Card) {
	f.cards[card.ID] = card
}

func (f *fakeOrderStore) CreateOrder(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	order.ID = f.nextID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt

	copied := *order
	f.orders[order.ID] = &copied
	f.byNumber[order.OrderNumber] = order.ID
	return nil
}

func (f *fakeOrderStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order not found: %d", id)
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.byNumber[orderNumber]
	if !ok {
		return nil, nil
	}
	copied := *f.orders[id]
	return &copied, nil
}

func (f *fakeOrderStore) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var orders []models.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (f *fakeOrderStore) UpdateOrderStatusIf(ctx context.Context, orderID int64, fromStatuses []string, status, paymentStatus string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return false, nil
	}

	for _, from := range fromStatuses {
		if order.Status == from {
			order.Status = status
			order.PaymentStatus = paymentStatus
			order.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOrderStore) SetOrderPaymentRef(ctx context.Context, orderID int64, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if order, ok := f.orders[orderID]; ok {
		order.PaymentID.String = paymentID
		order.PaymentID.Valid = true
	}
	return nil
}

func (f *fakeOrderStore) OverrideOrderStatus(ctx context.Context, orderID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("order not found: %d", orderID)
	}
	order.Status = status
	return nil
}

func (f *fakeOrderStore) GetCardByID(ctx context.Context, id int64) (*models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	card, ok := f.cards[id]
	if !ok {
		return nil, fmt.Errorf("card not found: %d", id)
	}
	return card, nil
}

// fakeGateway implements PaymentGateway with canned results and real
// callback signature verification.
type fakeGateway struct {
	secret     string
	result     moneytolia.Result
	status     moneytolia.StatusResult
	lastParams moneytolia.CreatePaymentParams
	calls      int
}

func (g *fakeGateway) CreatePayment(ctx context.Context, params moneytolia.CreatePaymentParams) moneytolia.Result {
	g.calls++
	g.lastParams = params
	return g.result
}

func (g *fakeGateway) VerifyPayment(ctx context.Context, orderNumber string) moneytolia.StatusResult {
	return g.status
}

func (g *fakeGateway) VerifyCallback(cb moneytolia.CallbackData) bool {
	return moneytolia.VerifyCallback(cb, g.secret)
}

// fakePublisher records published events.
type fakePublisher struct {
	mu        sync.Mutex
	created   []*models.OrderCreatedEvent
	statuses  []*models.OrderStatusEvent
	overrides []*models.AdminOverrideEvent
}

func (p *fakePublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, event)
	return nil
}

func (p *fakePublisher) PublishOrderStatus(ctx context.Context, event *models.OrderStatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, event)
	return nil
}

func (p *fakePublisher) PublishAdminOverride(ctx context.Context, event *models.AdminOverrideEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.overrides = append(p.overrides, event)
	return nil
}

// fakeCardStore is an in-memory CardStore.
type fakeCardStore struct {
	nextID int64
	cards  map[int64]*models.Card
	slugs  map[string]int64
}

func newFakeCardStore() *fakeCardStore {
	return &fakeCardStore{
		cards: map[int64]*models.Card{},
		slugs: map[string]int64{},
	}
}

func (f *fakeCardStore) CreateCard(ctx context.Context, card *models.Card) error {
	f.nextID++
	card.ID = f.nextID
	card.CreatedAt = time.Now()
	card.UpdatedAt = card.CreatedAt

	copied := *card
	f.cards[card.ID] = &copied
	f.slugs[card.Slug] = card.ID
	return nil
}

func (f *fakeCardStore) GetCardByID(ctx context.Context, id int64) (*models.Card, error) {
	card, ok := f.cards[id]
	if !ok {
		return nil, fmt.Errorf("card not found: %d", id)
	}
	return card, nil
}

func (f *fakeCardStore) GetCardBySlug(ctx context.Context, slug string) (*models.Card, error) {
	id, ok := f.slugs[slug]
	if !ok {
		return nil, nil
	}
	return f.cards[id], nil
}

func (f *fakeCardStore) GetCardsByUserID(ctx context.Context, userID int64) ([]models.Card, error) {
	var cards []models.Card
	for _, card := range f.cards {
		if card.UserID == userID {
			cards = append(cards, *card)
		}
	}
	return cards, nil
}

func (f *fakeCardStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, ok := f.slugs[slug]
	return ok, nil
}

func (f *fakeCardStore) UpdateCardFlags(ctx context.Context, cardID int64, isActive, isPublic bool) error {
	card, ok := f.cards[cardID]
	if !ok {
		return fmt.Errorf("card not found: %d", cardID)
	}
	card.IsActive = isActive
	card.IsPublic = isPublic
	return nil
}

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	nextID  int64
	users   map[int64]*models.User
	byEmail map[string]int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:   map[int64]*models.User{},
		byEmail: map[string]int64{},
	}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *models.User) error {
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	copied := *user
	f.users[user.ID] = &copied
	f.byEmail[user.Email] = user.ID
	return nil
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found: %d", id)
	}
	return user, nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	return f.users[id], nil
}

// fakeAdminStore wraps fakeOrderStore with canned aggregates.
type fakeAdminStore struct {
	*fakeOrderStore
	userCount  int64
	cardCount  int64
	orderCount int64
	pending    int64
	monthCount int64
	revenue    decimal.Decimal
}

func (f *fakeAdminStore) CountUsers(ctx context.Context) (int64, error)  { return f.userCount, nil }
func (f *fakeAdminStore) CountCards(ctx context.Context) (int64, error) { return f.cardCount, nil }
func (f *fakeAdminStore) CountOrders(ctx context.Context) (int64, error) {
	return f.orderCount, nil
}
func (f *fakeAdminStore) CountOrdersByStatus(ctx context.Context, status string) (int64, error) {
	return f.pending, nil
}
func (f *fakeAdminStore) CountOrdersSince(ctx context.Context, since time.Time) (int64, error) {
	return f.monthCount, nil
}
func (f *fakeAdminStore) SumRevenueSince(ctx context.Context, since time.Time, statuses []string) (decimal.Decimal, error) {
	return f.revenue, nil
}
func (f *fakeAdminStore) ListOrders(ctx context.Context, page store.Page, status, search string) ([]store.OrderListing, int64, error) {
	return nil, 0, nil
}
func (f *fakeAdminStore) ListUsers(ctx context.Context, page store.Page, search string) ([]store.UserListing, int64, error) {
	return nil, 0, nil
}
func (f *fakeAdminStore) ListCards(ctx context.Context, page store.Page, search string, isActive *bool) ([]models.Card, int64, error) {
	return nil, 0, nil
}

// fakeViewCounter records buffered card views.
type fakeViewCounter struct {
	mu     sync.Mutex
	views  map[int64]int64
	broken bool
}

func newFakeViewCounter() *fakeViewCounter {
	return &fakeViewCounter{views: map[int64]int64{}}
}

func (f *fakeViewCounter) IncrCardViews(ctx context.Context, cardID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken {
		return 0, fmt.Errorf("redis unavailable")
	}
	f.views[cardID]++
	return f.views[cardID], nil
}

// fakeSessionStore is an in-memory SessionStore.
type fakeSessionStore struct {
	sessions map[string]int64
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]int64{}}
}

func (f *fakeSessionStore) SetSession(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	f.sessions[token] = userID
	return nil
}

func (f *fakeSessionStore) GetSession(ctx context.Context, token string) (int64, error) {
	return f.sessions[token], nil
}

func (f *fakeSessionStore) DeleteSession(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

// fakeStatReader serves canned live counters.
type fakeStatReader struct {
	stats map[string]int64
}

func (f *fakeStatReader) GetStat(ctx context.Context, name string) (int64, error) {
	return f.stats[name], nil
}
