package user

import "time"

// User is an account owning products.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PasswordResetToken is a pending reset request. Only a digest of the
// token handed to the user is kept.
type PasswordResetToken struct {
	Email     string
	TokenHash string
	CreatedAt time.Time
}

// IsExpired reports whether the token is older than ttl at now.
func (t *PasswordResetToken) IsExpired(now time.Time, ttl time.Duration) bool {
	return !t.CreatedAt.After(now.Add(-ttl))
}
