package auth

import (
	"context"

	"github.com/nomadmatch/nomadmatch/internal/domain/user"
)

// Users is the account persistence contract.
type Users interface {
	Get(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) error
	Update(ctx context.Context, u user.User) error
}
