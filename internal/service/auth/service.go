package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/splax/quill/internal/domain"
	"github.com/splax/quill/internal/repository"
	"github.com/splax/quill/pkg/config"
	"github.com/splax/quill/pkg/crypto"
	jwtpkg "github.com/splax/quill/pkg/jwt"
)

// BearerPrefix precedes the token inside the session credential.
const BearerPrefix = "Bearer "

// Service handles registration, login and per-request identity resolution.
type Service struct {
	users  repository.UserRepository
	tokens *jwtpkg.Manager
	logger *slog.Logger
	cfg    config.APIConfig
	now    func() time.Time
}

// New constructs a Service.
func New(users repository.UserRepository, tokens *jwtpkg.Manager, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{users: users, tokens: tokens, logger: logger, cfg: cfg, now: time.Now}
}

// WithClock returns a copy of the service reading time from now.
func (s Service) WithClock(now func() time.Time) Service {
	s.now = now
	return s
}

// SignupInput carries the registration form.
type SignupInput struct {
	Email         string
	UserName      string
	Password      string
	PasswordCheck string
}

// Session is the outcome of a successful login.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresIn time.Duration
}

// Credential renders the cookie value carrying the token.
func (s Session) Credential() string {
	return BearerPrefix + s.Token
}

// Signup registers a new user. It never issues a token.
func (s Service) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	if in.Password != in.PasswordCheck {
		return nil, fmt.Errorf("%w: passwords do not match", domain.ErrInvalidInput)
	}
	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		return nil, fmt.Errorf("%w: user name is required", domain.ErrInvalidInput)
	}
	email := normalizeEmail(in.Email)
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, crypto.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password too long", domain.ErrInvalidInput)
		}
		return nil, err
	}
	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		UserName:     userName,
		PasswordHash: hash,
		Timestamps:   domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials, stamps the login time and issues a token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !crypto.ComparePassword(user.PasswordHash, password) {
		s.logger.Warn("login rejected", "user_id", user.ID)
		return nil, domain.ErrUnauthenticated
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("stamp last login: %w", err)
	}
	user.LastLoginAt = &now
	user.UpdatedAt = now

	token, err := s.tokens.GenerateToken(user.ID, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return &Session{User: user, Token: token, ExpiresIn: s.TokenTTL()}, nil
}

// Resolve maps a session credential of the form "Bearer <token>" to the user
// it names. It performs exactly one user lookup and has no side effects.
func (s Service) Resolve(ctx context.Context, credential string) (*domain.User, error) {
	token, ok := strings.CutPrefix(strings.TrimSpace(credential), BearerPrefix)
	if !ok || strings.TrimSpace(token) == "" {
		return nil, domain.ErrUnauthenticated
	}
	claims, err := s.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return user, nil
}

// TokenTTL is the lifetime of issued tokens and of the session cookie.
func (s Service) TokenTTL() time.Duration {
	if s.cfg.AccessTokenTTL <= 0 {
		return jwtpkg.DefaultTTL
	}
	return s.cfg.AccessTokenTTL
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
