package credential

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	domainUser "product-catalog/internal/domain/user"
	"product-catalog/internal/logger"
	appErrors "product-catalog/pkg/errors"
	"product-catalog/pkg/utils"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	ResetTokenLength = 80
	ResetTokenTTL    = time.Hour
)

// ResetTokens issues, checks and consumes password reset tokens.
// At most one token per email is active; issuing supersedes the previous one.
type ResetTokens struct {
	repo  domainUser.ResetTokenRepository
	clock clockwork.Clock
	ttl   time.Duration
}

func NewResetTokens(repo domainUser.ResetTokenRepository, clock clockwork.Clock) *ResetTokens {
	return &ResetTokens{repo: repo, clock: clock, ttl: ResetTokenTTL}
}

// Issue replaces any token of email with a fresh one and returns it in clear.
func (r *ResetTokens) Issue(ctx context.Context, email string) (string, error) {
	token, err := utils.RandomString(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	record := &domainUser.PasswordResetToken{
		Email:     email,
		TokenHash: Digest(token),
		CreatedAt: r.clock.Now(),
	}
	if err := r.repo.Replace(ctx, record); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	return token, nil
}

// Validate succeeds only for a stored token of email younger than the TTL.
func (r *ResetTokens) Validate(ctx context.Context, token, email string) error {
	record, err := r.repo.Find(ctx, email, Digest(token))
	if errors.Is(err, domainUser.ErrResetTokenNotFound) {
		return appErrors.ErrResetTokenInvalid
	}
	if err != nil {
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	if record.IsExpired(r.clock.Now(), r.ttl) {
		return appErrors.ErrResetTokenInvalid
	}
	return nil
}

// Consume deletes every token of email. Consuming twice is not an error.
func (r *ResetTokens) Consume(ctx context.Context, email string) error {
	if _, err := r.repo.DeleteByEmail(ctx, email); err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	return nil
}

// Purge deletes tokens that can no longer validate.
func (r *ResetTokens) Purge(ctx context.Context) (int64, error) {
	removed, err := r.repo.DeleteOlderThan(ctx, r.clock.Now().Add(-r.ttl))
	if err != nil {
		return 0, fmt.Errorf("failed to purge reset tokens: %w", err)
	}
	return removed, nil
}

// StartPurgeJob purges expired tokens every interval until ctx is done.
func (r *ResetTokens) StartPurgeJob(ctx context.Context, interval time.Duration) {
	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Reset token purge job started",
		zap.Duration("interval", interval),
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reset token purge job stopped")
			return
		case <-ticker.Chan():
			removed, err := r.Purge(ctx)
			if err != nil {
				logger.Error("Failed to purge reset tokens", zap.Error(err))
				continue
			}
			logger.Debug("Expired reset tokens purged",
				zap.Int64("removed", removed),
			)
		}
	}
}

// Digest is the stored form of a reset token.
func Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
