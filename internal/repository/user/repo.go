// Package user persists accounts as JSON blobs keyed by email.
package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nomadmatch/nomadmatch/internal/db"
	"github.com/nomadmatch/nomadmatch/internal/domain"
	domuser "github.com/nomadmatch/nomadmatch/internal/domain/user"
)

// store is the consumer interface for accounts (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo implements usecase/auth.Repository.
type Repo struct {
	store store
}

// New creates a user repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get returns the account registered under the given email.
func (r *Repo) Get(ctx context.Context, email string) (domuser.User, error) {
	raw, err := r.store.Get(ctx, userKey(email))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domuser.User{}, domain.ErrUserNotFound
		}
		return domuser.User{}, fmt.Errorf("get user %s: %w", email, err)
	}

	var u domuser.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return domuser.User{}, fmt.Errorf("unmarshal user %s: %w", email, err)
	}
	return u, nil
}

// Create stores a new account, failing when the email is taken.
func (r *Repo) Create(ctx context.Context, u domuser.User) error {
	if _, err := r.Get(ctx, u.Email); err == nil {
		return domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	return r.put(ctx, u)
}

// Update overwrites an existing account.
func (r *Repo) Update(ctx context.Context, u domuser.User) error {
	if _, err := r.Get(ctx, u.Email); err != nil {
		return err
	}
	return r.put(ctx, u)
}

func (r *Repo) put(ctx context.Context, u domuser.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user %s: %w", u.Email, err)
	}
	if err := r.store.Set(ctx, userKey(u.Email), data); err != nil {
		return fmt.Errorf("set user %s: %w", u.Email, err)
	}
	return nil
}

func userKey(email string) string {
	return domain.KeyPrefix + "user:" + strings.ToLower(strings.TrimSpace(email))
}
