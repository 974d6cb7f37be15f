package repository

import (
	"context"
	"errors"
	"time"

	"ecoloop-backend/internal/domain"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNotPending is returned by Approve/Reject when the application has
	// already reached a terminal status.
	ErrNotPending = errors.New("application is not pending")
	// ErrRoleTaken is returned when a single-assignment role is already held
	// by another account.
	ErrRoleTaken = errors.New("role is already assigned to another user")
)

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, userID int32, passwordHash string) error
	SetActive(ctx context.Context, userID int32, active bool) error

	// CreateFromPending materializes an account from a staged registration in
	// one transaction: insert the user row, grant the default USER role,
	// create the empty profile record, and mark the pending row used.
	CreateFromPending(ctx context.Context, user *domain.User, pendingID uuid.UUID) error

	// Roles
	GetRoles(ctx context.Context, userID int32) ([]domain.Role, error)
	HasRole(ctx context.Context, userID int32, roleName string) (bool, error)
}

type PendingRegistrationRepository interface {
	// Stage atomically invalidates prior active pending registrations and
	// REGISTER OTPs for the email, then inserts the new pending row and its
	// OTP row. All four writes share one transaction.
	Stage(ctx context.Context, pending *domain.PendingRegistration, otp *domain.OTPVerification) error

	// GetActive returns the pending registration with the given id and email
	// that has not been consumed yet.
	GetActive(ctx context.Context, id uuid.UUID, email string) (*domain.PendingRegistration, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	DeleteDead(ctx context.Context, olderThan time.Time) (int64, error)
}

type OTPRepository interface {
	// Replace atomically invalidates prior unused OTPs for (email, purpose)
	// and inserts the new row.
	Replace(ctx context.Context, o *domain.OTPVerification) error

	// GetLatestActive returns the newest unused OTP for (email, purpose),
	// regardless of expiry or attempt count; the caller applies those checks.
	GetLatestActive(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPVerification, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	IncrementAttempts(ctx context.Context, id uuid.UUID) (int32, error)
	DeleteDead(ctx context.Context, olderThan time.Time) (int64, error)
}

type RoleApplicationRepository interface {
	// Create inserts the application and its initial documents in one
	// transaction.
	Create(ctx context.Context, app *domain.RoleApplication, docs []domain.RoleApplicationDocument) error
	GetByID(ctx context.Context, id int32) (*domain.RoleApplication, error)
	HasPending(ctx context.Context, applicantID int32, roleName string) (bool, error)
	ListByApplicant(ctx context.Context, applicantID int32) ([]domain.RoleApplication, error)
	ListByStatus(ctx context.Context, status domain.ApplicationStatus, page, pageSize int32) ([]domain.RoleApplication, int32, error)

	// Approve transitions the application to approved, grants the requested
	// role (creating the role definition on first use), and appends the audit
	// entry, all in one transaction. The status update is conditional on the
	// row still being pending; a lost race yields ErrNotPending. Granting a
	// single-assignment role held by someone else yields ErrRoleTaken.
	Approve(ctx context.Context, app *domain.RoleApplication, role *domain.Role, entry *domain.AdminActivityLog) error

	// Reject transitions the application to rejected and appends the audit
	// entry in one transaction, with the same conditional-update guarantee.
	Reject(ctx context.Context, app *domain.RoleApplication, entry *domain.AdminActivityLog) error

	// Documents (append-only)
	AddDocument(ctx context.Context, doc *domain.RoleApplicationDocument) error
	ListDocuments(ctx context.Context, applicationID int32) ([]domain.RoleApplicationDocument, error)
}

type AuditLogRepository interface {
	Append(ctx context.Context, entry *domain.AdminActivityLog) error
	List(ctx context.Context, page, pageSize int32) ([]domain.AdminActivityLog, int32, error)
}

type TokenBlacklistRepository interface {
	Revoke(ctx context.Context, token *domain.RevokedToken) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
