package service

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/storefront/internal/auth"
	"github.com/storefront/storefront/internal/metrics"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/storage"
)

// AuthService handles registration, login and token verification.
type AuthService struct {
	users   *storage.Collection[model.User]
	tokens  *auth.TokenIssuer
	ids     *model.IDGenerator
	cost    int
	metrics metrics.Recorder

	// dummyHash is compared against on unknown emails.
	dummyHash string
}

// NewAuthService creates a new AuthService. It fails if a hash cannot be
// produced at the given cost.
func NewAuthService(
	users *storage.Collection[model.User],
	tokens *auth.TokenIssuer,
	ids *model.IDGenerator,
	cost int,
	recorder metrics.Recorder,
) (*AuthService, error) {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if cost <= 0 {
		cost = auth.DefaultCost
	}

	dummyHash, err := auth.HashPasswordWithCost("storefront-dummy-password", cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &AuthService{
		users:     users,
		tokens:    tokens,
		ids:       ids,
		cost:      cost,
		metrics:   recorder,
		dummyHash: dummyHash,
	}, nil
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// Register creates a new user with a hashed password.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidRequest)
	}

	// Fail fast before paying for the hash; the check is repeated under the lock.
	existing, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	if model.FindUserByEmail(existing, email) >= 0 {
		return nil, ErrDuplicateEmail
	}

	start := time.Now()
	hash, err := auth.HashPasswordWithCost(password, s.cost)
	if err != nil {
		return nil, err
	}
	s.metrics.ObservePasswordHash(time.Since(start))

	var created model.User
	err = s.users.Update(ctx, func(users []model.User) ([]model.User, error) {
		if model.FindUserByEmail(users, email) >= 0 {
			return nil, ErrDuplicateEmail
		}
		created = model.User{
			ID:       s.ids.Next(),
			Email:    email,
			Password: hash,
		}
		return append(users, created), nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncUserRegistered()
	return &created, nil
}

// Login checks credentials and issues a bearer token.
// Unknown email and wrong password yield the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidRequest)
	}

	users, err := s.users.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := model.FindUserByEmail(users, email)
	if idx < 0 {
		// Spend the same time as a real comparison.
		_, _ = auth.VerifyPassword(password, s.dummyHash)
		s.metrics.IncLogin(metrics.LoginFailed)
		return nil, ErrInvalidCredentials
	}
	user := users[idx]

	ok, err := auth.VerifyPassword(password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password for user %d: %w", user.ID, err)
	}
	if !ok {
		s.metrics.IncLogin(metrics.LoginFailed)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(&user)
	if err != nil {
		return nil, err
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: &user}, nil
}

// Verify validates a bearer token and returns its claims.
func (s *AuthService) Verify(token string) (*auth.Claims, error) {
	return s.tokens.Verify(token)
}
