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

type pendingRegistrationRepository struct {
	db *sql.DB
}

func NewPendingRegistrationRepository(db *sql.DB) repository.PendingRegistrationRepository {
	return &pendingRegistrationRepository{db: db}
}

// Stage invalidates prior active pending registrations and REGISTER OTPs for
// the email, then inserts the replacements. One transaction, so a new
// registration request can never leave two live codes or two live staged
// accounts for the same email.
func (r *pendingRegistrationRepository) Stage(ctx context.Context, pending *domain.PendingRegistration, o *domain.OTPVerification) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE pending_registrations SET is_used = TRUE
		WHERE LOWER(email) = LOWER($1) AND is_used = FALSE`, pending.Email); err != nil {
		return fmt.Errorf("invalidate pending registrations: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO pending_registrations (id, email, full_name, phone_number, password_hash, is_used, expires_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
		RETURNING created_at`,
		pending.ID, pending.Email, pending.FullName, pending.PhoneNumber, pending.PasswordHash, pending.ExpiresAt,
	).Scan(&pending.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert pending registration: %w", err)
	}

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

func (r *pendingRegistrationRepository) GetActive(ctx context.Context, id uuid.UUID, email string) (*domain.PendingRegistration, error) {
	p := &domain.PendingRegistration{}
	query := `SELECT id, email, full_name, phone_number, password_hash, is_used, expires_at, created_at
	          FROM pending_registrations
	          WHERE id = $1 AND LOWER(email) = LOWER($2) AND is_used = FALSE`
	err := r.db.QueryRowContext(ctx, query, id, email).Scan(
		&p.ID, &p.Email, &p.FullName, &p.PhoneNumber, &p.PasswordHash, &p.IsUsed, &p.ExpiresAt, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pendingRegistrationRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pending_registrations SET is_used = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteDead removes consumed or expired rows created before olderThan.
// Live rows are untouched; expiry is still enforced at use time.
func (r *pendingRegistrationRepository) DeleteDead(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM pending_registrations
		WHERE created_at < $1 AND (is_used = TRUE OR expires_at < now())`, olderThan)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
