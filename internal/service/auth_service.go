package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"kartvizit-service/internal/models"
	"kartvizit-service/internal/util"
)

const bcryptCost = 12

// AuthService handles registration, login, and session resolution. Sessions
// are opaque tokens stored in Redis with a TTL.
type AuthService struct {
	store      UserStore
	sessions   SessionStore
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(store UserStore, sessions SessionStore, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		store:      store,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     util.GetLogger(),
	}
}

// RegisterRequest carries the fields of a new account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new user account with a bcrypt password hash
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if len(req.Password) < 6 {
		return nil, validationf("password must be at least 6 characters")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := uuid.New().String()
	if err := s.sessions.SetSession(ctx, token, user.ID, s.sessionTTL); err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Logout invalidates a session token
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// ResolveSession maps a session token to its user. Returns ErrNotFound for
// unknown or expired tokens.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if userID == 0 {
		return nil, ErrNotFound
	}
	return s.store.GetUserByID(ctx, userID)
}
