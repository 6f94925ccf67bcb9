package memory

import (
	"context"
	"sync"
	"time"

	domainUser "product-catalog/internal/domain/user"
)

// ResetTokenRepository implements domainUser.ResetTokenRepository in memory
type ResetTokenRepository struct {
	mu     sync.Mutex
	tokens []domainUser.PasswordResetToken
}

func NewResetTokenRepository() *ResetTokenRepository {
	return &ResetTokenRepository{}
}

func (r *ResetTokenRepository) Replace(_ context.Context, token *domainUser.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeWhere(func(t domainUser.PasswordResetToken) bool { return t.Email == token.Email })
	r.tokens = append(r.tokens, *token)
	return nil
}

func (r *ResetTokenRepository) Find(_ context.Context, email, tokenHash string) (*domainUser.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tokens {
		if t.Email == email && t.TokenHash == tokenHash {
			found := t
			return &found, nil
		}
	}
	return nil, domainUser.ErrResetTokenNotFound
}

func (r *ResetTokenRepository) DeleteByEmail(_ context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeWhere(func(t domainUser.PasswordResetToken) bool { return t.Email == email }), nil
}

func (r *ResetTokenRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeWhere(func(t domainUser.PasswordResetToken) bool { return !t.CreatedAt.After(cutoff) }), nil
}

// Len reports how many tokens are stored.
func (r *ResetTokenRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

func (r *ResetTokenRepository) removeWhere(match func(domainUser.PasswordResetToken) bool) int64 {
	kept := r.tokens[:0]
	var removed int64
	for _, t := range r.tokens {
		if match(t) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	r.tokens = kept
	return removed
}
