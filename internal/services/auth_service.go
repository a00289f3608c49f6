package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"averix/internal/metrics"
	"averix/internal/models"
	"averix/internal/repository"

	"github.com/google/uuid"
)

// WelcomeBonus is the TFT balance every new account starts with.
const WelcomeBonus = 1000.0

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is returned by Register and Login. User never carries the password hash.
type AuthResult struct {
	Token string
	User  models.User
}

type AuthService struct {
	users  UserRepository
	hasher PasswordHasher
	tokens *TokenIssuer
	logger *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewAuthService(users UserRepository, hasher PasswordHasher, tokens *TokenIssuer, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := NormalizeEmail(in.Email)

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("look up email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.NewUser(s.newID(), email, hash, in.FirstName, in.LastName, WelcomeBonus, s.now())
	if err := s.users.Create(ctx, user); err != nil {
		// Another request registered the same address after our lookup.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	metrics.RecordRegistration()
	s.logger.Info("user registered", slog.String("user_id", user.ID))

	return &AuthResult{Token: token, User: user.Public()}, nil
}

// Login fails with ErrInvalidCredentials for both an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up email: %w", err)
	}

	if !s.hasher.Verify(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user.Public()}, nil
}

// Authenticate resolves a bearer token to the stored user. Token and lookup
// failures are wrapped in ErrUnauthorized; storage faults are returned as is.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, errors.Join(ErrUnauthorized, err)
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errors.Join(ErrUnauthorized, ErrUserNotFound)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	return user, nil
}
