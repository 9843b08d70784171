package user

import (
	"time"

	"github.com/nomadmatch/nomadmatch/internal/domain/tier"
)

// User is a registered account. Passwords are stored only as bcrypt hashes.
type User struct {
	Email        string         `json:"email"`
	PasswordHash string         `json:"password_hash"`
	Premium      bool           `json:"premium"`
	Preferences  map[string]any `json:"preferences,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Tier maps the premium flag to a request tier.
func (u User) Tier() tier.Tier {
	if u.Premium {
		return tier.Premium
	}
	return tier.Free
}
