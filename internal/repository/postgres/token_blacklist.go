package postgres

import (
	"context"
	"database/sql"
	"time"

	"ecoloop-backend/internal/domain"
	"ecoloop-backend/internal/repository"
)

type tokenBlacklistRepository struct {
	db *sql.DB
}

func NewTokenBlacklistRepository(db *sql.DB) repository.TokenBlacklistRepository {
	return &tokenBlacklistRepository{db: db}
}

func (r *tokenBlacklistRepository) Revoke(ctx context.Context, token *domain.RevokedToken) error {
	token.RevokedAt = time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO revoked_tokens (jti, user_id, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (jti) DO NOTHING`,
		token.JTI, token.UserID, token.ExpiresAt, token.RevokedAt)
	return err
}

func (r *tokenBlacklistRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`, jti).Scan(&revoked)
	if err != nil {
		return false, err
	}
	return revoked, nil
}

func (r *tokenBlacklistRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
