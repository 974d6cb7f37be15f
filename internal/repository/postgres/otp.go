package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ecoloop-backend/internal/domain"
	"ecoloop-backend/internal/repository"

	"github.com/google/uuid"
)

type otpRepository struct {
	db *sql.DB
}

func NewOTPRepository(db *sql.DB) repository.OTPRepository {
	return &otpRepository{db: db}
}

// Replace keeps at most one active OTP per (email, purpose): prior unused
// rows are consumed in the same transaction that inserts the new one.
func (r *otpRepository) Replace(ctx context.Context, o *domain.OTPVerification) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE otp_verifications SET is_used = TRUE
		WHERE LOWER(email) = LOWER($1) AND purpose = $2 AND is_used = FALSE`,
		o.Email, o.Purpose); err != nil {
		return fmt.Errorf("invalidate otps: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO otp_verifications (id, email, purpose, otp_hash, attempts, is_used, expires_at)
		VALUES ($1, $2, $3, $4, 0, FALSE, $5)
		RETURNING created_at`,
		o.ID, o.Email, o.Purpose, o.OTPHash, o.ExpiresAt,
	).Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert otp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *otpRepository) GetLatestActive(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPVerification, error) {
	o := &domain.OTPVerification{}
	query := `SELECT id, email, purpose, otp_hash, attempts, is_used, expires_at, created_at
	          FROM otp_verifications
	          WHERE LOWER(email) = LOWER($1) AND purpose = $2 AND is_used = FALSE
	          ORDER BY created_at DESC
	          LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, email, purpose).Scan(
		&o.ID, &o.Email, &o.Purpose, &o.OTPHash, &o.Attempts, &o.IsUsed, &o.ExpiresAt, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *otpRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE otp_verifications SET is_used = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *otpRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) (int32, error) {
	var attempts int32
	err := r.db.QueryRowContext(ctx, `
		UPDATE otp_verifications SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts`, id).Scan(&attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, repository.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return attempts, nil
}

func (r *otpRepository) DeleteDead(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM otp_verifications
		WHERE created_at < $1 AND (is_used = TRUE OR expires_at < now())`, olderThan)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
