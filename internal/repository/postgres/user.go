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

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, full_name, phone_number, password_hash, is_active, is_email_verified, is_phone_verified, date_joined`

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if u.Roles, err = r.GetRoles(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, err
	}
	if u.Roles, err = r.GetRoles(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) scanUser(row *sql.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PhoneNumber, &u.PasswordHash,
		&u.IsActive, &u.IsEmailVerified, &u.IsPhoneVerified, &u.DateJoined)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, userID int32, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) SetActive(ctx context.Context, userID int32, active bool) error {
	query := `UPDATE users SET is_active = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, active, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CreateFromPending materializes the account inside one transaction: user
// row, default USER role grant, empty profile row, and consumption of the
// pending registration.
func (r *userRepository) CreateFromPending(ctx context.Context, u *domain.User, pendingID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	u.DateJoined = time.Now()
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, full_name, phone_number, password_hash, is_active, is_email_verified, is_phone_verified, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		u.Email, u.FullName, u.PhoneNumber, u.PasswordHash, u.IsActive, u.IsEmailVerified, u.IsPhoneVerified, u.DateJoined,
	).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	var roleID int32
	err = tx.QueryRowContext(ctx, `
		INSERT INTO roles (name, single_assignment) VALUES ($1, FALSE)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, domain.RoleUser,
	).Scan(&roleID)
	if err != nil {
		return fmt.Errorf("upsert default role: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users_roles (user_id, role_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, u.ID, roleID); err != nil {
		return fmt.Errorf("grant default role: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, created_at, updated_at) VALUES ($1, now(), now())`, u.ID); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE pending_registrations SET is_used = TRUE WHERE id = $1 AND is_used = FALSE`, pendingID)
	if err != nil {
		return fmt.Errorf("consume pending registration: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	u.Roles = []domain.Role{{ID: roleID, Name: domain.RoleUser}}
	return nil
}

func (r *userRepository) GetRoles(ctx context.Context, userID int32) ([]domain.Role, error) {
	query := `SELECT r.id, r.name, COALESCE(r.description, ''), r.single_assignment
	          FROM roles r
	          JOIN users_roles ur ON r.id = ur.role_id
	          WHERE ur.user_id = $1
	          ORDER BY r.name`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.SingleAssignment); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *userRepository) HasRole(ctx context.Context, userID int32, roleName string) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM users_roles ur
	            JOIN roles r ON r.id = ur.role_id
	            WHERE ur.user_id = $1 AND r.name = $2)`
	var has bool
	if err := r.db.QueryRowContext(ctx, query, userID, roleName).Scan(&has); err != nil {
		return false, err
	}
	return has, nil
}
