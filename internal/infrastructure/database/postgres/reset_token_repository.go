package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domainUser "product-catalog/internal/domain/user"

	"github.com/jmoiron/sqlx"
)

type resetRow struct {
	Email     string    `db:"email"`
	Token     string    `db:"token"`
	CreatedAt time.Time `db:"created_at"`
}

// ResetTokenRepository implements domainUser.ResetTokenRepository with
// plain SQL on the password_resets table.
type ResetTokenRepository struct {
	db *sqlx.DB
}

func NewResetTokenRepository(db *sqlx.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Replace(ctx context.Context, token *domainUser.PasswordResetToken) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM password_resets WHERE email = $1`, token.Email); err != nil {
		return fmt.Errorf("failed to clear reset tokens: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO password_resets (email, token, created_at) VALUES ($1, $2, $3)`,
		token.Email, token.TokenHash, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	return tx.Commit()
}

func (r *ResetTokenRepository) Find(ctx context.Context, email, tokenHash string) (*domainUser.PasswordResetToken, error) {
	var row resetRow
	err := r.db.GetContext(ctx, &row,
		`SELECT email, token, created_at FROM password_resets WHERE email = $1 AND token = $2 LIMIT 1`,
		email, tokenHash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainUser.ErrResetTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}

	return &domainUser.PasswordResetToken{Email: row.Email, TokenHash: row.Token, CreatedAt: row.CreatedAt}, nil
}

func (r *ResetTokenRepository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM password_resets WHERE email = $1`, email)
	if err != nil {
		return 0, fmt.Errorf("failed to delete reset tokens: %w", err)
	}
	return res.RowsAffected()
}

func (r *ResetTokenRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM password_resets WHERE created_at <= $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge reset tokens: %w", err)
	}
	return res.RowsAffected()
}
