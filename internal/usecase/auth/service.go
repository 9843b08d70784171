// Package auth implements account registration, login, and premium
// upgrades backed by bcrypt password hashes and HS256 access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nomadmatch/nomadmatch/internal/domain"
	"github.com/nomadmatch/nomadmatch/internal/domain/user"
)

const minPasswordLen = 6

// Session is the result of a successful register, login, or upgrade.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Premium     bool   `json:"is_premium"`
}

// Service implements the account operations.
type Service struct {
	users  Users
	tokens *TokenIssuer
}

// New creates the auth service.
func New(users Users, tokens *TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register creates a new free-tier account and returns a session for it.
func (s *Service) Register(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	u := user.User{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return Session{}, err
	}
	return s.session(u)
}

// Login verifies credentials and returns a session. A missing account
// and a wrong password both report ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.Get(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return Session{}, domain.ErrInvalidCredentials
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Session{}, domain.ErrInvalidCredentials
	}
	return s.session(u)
}

// Me returns the account behind an email.
func (s *Service) Me(ctx context.Context, email string) (user.User, error) {
	return s.users.Get(ctx, normalizeEmail(email))
}

// Upgrade flips the account to premium and issues a fresh session so
// the new tier takes effect immediately.
func (s *Service) Upgrade(ctx context.Context, email string) (Session, error) {
	u, err := s.users.Get(ctx, normalizeEmail(email))
	if err != nil {
		return Session{}, err
	}
	if !u.Premium {
		u.Premium = true
		if err := s.users.Update(ctx, u); err != nil {
			return Session{}, err
		}
	}
	return s.session(u)
}

// UpdatePreferences replaces the stored preference set for the account.
func (s *Service) UpdatePreferences(ctx context.Context, email string, prefs map[string]any) error {
	u, err := s.users.Get(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	u.Preferences = prefs
	return s.users.Update(ctx, u)
}

// VerifyToken resolves an access token to its claims.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	return s.tokens.Verify(token)
}

func (s *Service) session(u user.User) (Session, error) {
	token, err := s.tokens.Issue(u.Email, u.Premium)
	if err != nil {
		return Session{}, err
	}
	return Session{AccessToken: token, TokenType: "bearer", Premium: u.Premium}, nil
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return domain.ErrInvalidCredentials
	}
	if len(password) < minPasswordLen {
		return domain.ErrInvalidCredentials
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
