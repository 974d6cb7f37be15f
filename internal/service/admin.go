package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ecoloop-backend/internal/domain"
	"ecoloop-backend/internal/logger"
	"ecoloop-backend/internal/repository"
)

type adminService struct {
	userRepo  repository.UserRepository
	auditRepo repository.AuditLogRepository
	emailSvc  EmailService
}

func NewAdminService(
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	emailSvc EmailService,
) AdminService {
	return &adminService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
		emailSvc:  emailSvc,
	}
}

// SetUserBlocked soft-disables (or re-enables) an account and records the
// action. Accounts are never physically deleted through this flow.
func (s *adminService) SetUserBlocked(ctx context.Context, adminID, userID int32, blocked bool, reason string) error {
	if blocked && reason == "" {
		return newValidationError("reason", "A reason is required when blocking a user.")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	if err := s.userRepo.SetActive(ctx, userID, !blocked); err != nil {
		return fmt.Errorf("update account status: %w", err)
	}

	action := domain.AdminActionUserUnblocked
	status := "ACTIVE"
	if blocked {
		action = domain.AdminActionUserBlocked
		status = "BLOCKED"
	}

	entry := &domain.AdminActivityLog{
		AdminID:    adminID,
		Action:     action,
		TargetType: "User",
		TargetID:   strconv.Itoa(int(user.ID)),
		TargetName: fmt.Sprintf("%s (%s)", user.FullName, user.Email),
		Result:     "success",
		Reason:     reason,
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		return fmt.Errorf("record admin action: %w", err)
	}

	if err := s.emailSvc.SendAccountStatusNotice(ctx, user.Email, user.FullName, status, reason); err != nil {
		logger.Error("Failed to send account status notice", "userID", user.ID, "error", err)
	}

	return nil
}

func (s *adminService) ListActivityLog(ctx context.Context, page, pageSize int32) ([]domain.AdminActivityLog, int32, error) {
	return s.auditRepo.List(ctx, page, pageSize)
}
