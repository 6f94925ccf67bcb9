package user

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

import (
	"context"
	"time"
)

// Repository defines the interface for user repository operations
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// ResetTokenRepository stores password reset tokens keyed by email
type ResetTokenRepository interface {
	// Replace removes every token of the email and stores the given one.
	Replace(ctx context.Context, token *PasswordResetToken) error
	Find(ctx context.Context, email, tokenHash string) (*PasswordResetToken, error)
	DeleteByEmail(ctx context.Context, email string) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
