package postgres

import (
	"database/sql"

	"ecoloop-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.PendingRegistrationRepository
	repository.OTPRepository
	repository.RoleApplicationRepository
	repository.AuditLogRepository
	repository.TokenBlacklistRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                            db,
		UserRepository:                NewUserRepository(db),
		PendingRegistrationRepository: NewPendingRegistrationRepository(db),
		OTPRepository:                 NewOTPRepository(db),
		RoleApplicationRepository:     NewRoleApplicationRepository(db),
		AuditLogRepository:            NewAuditLogRepository(db),
		TokenBlacklistRepository:      NewTokenBlacklistRepository(db),
	}
}
