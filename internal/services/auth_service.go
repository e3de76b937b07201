package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"conti/internal/auth"
	"conti/internal/core"
	"conti/internal/ledger"
)

// ErrBadCredentials covers both unknown usernames and wrong passwords.
// Login deliberately never says which one it was.
var ErrBadCredentials = errors.New("bad credentials")

// AuthService handles registration, login, and profile lookup. Tokens
// are stateless JWTs; logout is a client-side token discard.
type AuthService struct {
	users  ledger.UserStore
	tokens *auth.TokenService
}

func NewAuthService(users ledger.UserStore, tokens *auth.TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// RegisterInput carries a new registration. The password arrives in
// clear and is hashed before anything is stored.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Currency core.Currency
}

// Register creates a new active user. A taken username or email
// surfaces core.ErrDuplicate.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (core.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return core.User{}, core.NewValidationError("password", err.Error())
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	if !currency.Valid() {
		return core.User{}, core.NewValidationError("currency", "unsupported currency")
	}

	user := core.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Currency:     currency,
		Active:       true,
	}
	if err := user.Validate(); err != nil {
		return core.User{}, core.NewValidationError("username", err.Error())
	}

	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			return core.User{}, fmt.Errorf("register %q: %w", user.Username, core.ErrDuplicate)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User registered",
		"user_id", created.ID,
		"username", created.Username)
	return created, nil
}

// Login verifies credentials and issues a bearer token. Inactive users
// cannot log in.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, core.User, error) {
	user, err := s.users.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", core.User{}, ErrBadCredentials
		}
		return "", core.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !user.Active {
		return "", core.User{}, ErrBadCredentials
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return "", core.User{}, ErrBadCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return "", core.User{}, fmt.Errorf("issue token: %w", err)
	}

	slog.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return token, user, nil
}

// Profile returns the stored user behind a session.
func (s *AuthService) Profile(ctx context.Context, userID int64) (core.User, error) {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return core.User{}, fmt.Errorf("load profile: %w", err)
	}
	return user, nil
}
