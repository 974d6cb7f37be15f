package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ecoloop-backend/internal/domain"
	"ecoloop-backend/internal/logger"
	"ecoloop-backend/internal/repository"
)

type applicationService struct {
	appRepo   repository.RoleApplicationRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditLogRepository
	emailSvc  EmailService
}

func NewApplicationService(
	appRepo repository.RoleApplicationRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	emailSvc EmailService,
) ApplicationService {
	return &applicationService{
		appRepo:   appRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		emailSvc:  emailSvc,
	}
}

func (s *applicationService) Submit(ctx context.Context, req SubmitApplicationRequest) (*domain.RoleApplication, error) {
	if req.RoleName == "" {
		return nil, newValidationError("role_name", "This field is required.")
	}
	if req.Justification == "" {
		return nil, newValidationError("justification", "This field is required.")
	}

	held, err := s.userRepo.HasRole(ctx, req.ApplicantID, req.RoleName)
	if err != nil {
		return nil, fmt.Errorf("check held roles: %w", err)
	}
	if held {
		return nil, ErrRoleAlreadyHeld
	}

	pending, err := s.appRepo.HasPending(ctx, req.ApplicantID, req.RoleName)
	if err != nil {
		return nil, fmt.Errorf("check pending applications: %w", err)
	}
	if pending {
		return nil, ErrDuplicateApplication
	}

	app := &domain.RoleApplication{
		ApplicantID:      req.ApplicantID,
		RoleName:         req.RoleName,
		OrganizationName: req.OrganizationName,
		RegistrationNo:   req.RegistrationNo,
		Justification:    req.Justification,
		Status:           domain.ApplicationStatusPending,
	}
	if err := s.appRepo.Create(ctx, app, req.Documents); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	logger.Info("Role application submitted", "applicationID", app.ID, "applicantID", app.ApplicantID, "role", app.RoleName)
	return app, nil
}

func (s *applicationService) Review(ctx context.Context, applicationID, reviewerID int32, action ReviewAction, adminNotes string) (*domain.RoleApplication, error) {
	if action != ReviewActionApprove && action != ReviewActionReject {
		return nil, newValidationError("action", "Action must be approve or reject.")
	}
	if action == ReviewActionReject && adminNotes == "" {
		return nil, newValidationError("admin_notes", "Notes are required when rejecting an application.")
	}

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup application: %w", err)
	}
	if app.Status != domain.ApplicationStatusPending {
		return nil, ErrAlreadyReviewed
	}

	applicant, err := s.userRepo.GetByID(ctx, app.ApplicantID)
	if err != nil {
		return nil, fmt.Errorf("lookup applicant: %w", err)
	}

	now := time.Now()
	app.ReviewedBy = &reviewerID
	app.ReviewedAt = &now
	app.AdminNotes = adminNotes

	entry := &domain.AdminActivityLog{
		AdminID:    reviewerID,
		TargetType: "RoleApplication",
		TargetID:   strconv.Itoa(int(app.ID)),
		TargetName: fmt.Sprintf("%s (%s)", applicant.FullName, app.RoleName),
		Result:     "success",
		Reason:     adminNotes,
	}

	if action == ReviewActionApprove {
		app.Status = domain.ApplicationStatusApproved
		entry.Action = domain.AdminActionApplicationApproved

		role := &domain.Role{
			Name: app.RoleName,
			// NGO accounts are exclusive: only one organization may hold the role.
			SingleAssignment: app.RoleName == domain.RoleNGO,
		}
		err = s.appRepo.Approve(ctx, app, role, entry)
	} else {
		app.Status = domain.ApplicationStatusRejected
		entry.Action = domain.AdminActionApplicationRejected
		err = s.appRepo.Reject(ctx, app, entry)
	}

	switch {
	case errors.Is(err, repository.ErrNotPending):
		// Someone else won the review race; nothing was written.
		return nil, ErrAlreadyReviewed
	case errors.Is(err, repository.ErrRoleTaken):
		return nil, ErrRoleTaken
	case err != nil:
		return nil, fmt.Errorf("review application: %w", err)
	}

	// Decision is committed; the notice is best-effort.
	approved := app.Status == domain.ApplicationStatusApproved
	if err := s.emailSvc.SendApplicationDecision(ctx, applicant.Email, applicant.FullName, app.RoleName, approved, adminNotes); err != nil {
		logger.Error("Failed to send application decision notice", "applicationID", app.ID, "error", err)
	}

	logger.Info("Role application reviewed", "applicationID", app.ID, "action", action, "reviewerID", reviewerID)
	return app, nil
}

func (s *applicationService) AddDocument(ctx context.Context, applicantID int32, doc *domain.RoleApplicationDocument) error {
	app, err := s.appRepo.GetByID(ctx, doc.ApplicationID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup application: %w", err)
	}
	if app.ApplicantID != applicantID {
		return repository.ErrNotFound
	}
	return s.appRepo.AddDocument(ctx, doc)
}

func (s *applicationService) ListMine(ctx context.Context, applicantID int32) ([]domain.RoleApplication, error) {
	return s.appRepo.ListByApplicant(ctx, applicantID)
}

func (s *applicationService) ListByStatus(ctx context.Context, status domain.ApplicationStatus, page, pageSize int32) ([]domain.RoleApplication, int32, error) {
	return s.appRepo.ListByStatus(ctx, status, page, pageSize)
}

func (s *applicationService) GetWithDocuments(ctx context.Context, id int32) (*domain.RoleApplication, []domain.RoleApplicationDocument, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	docs, err := s.appRepo.ListDocuments(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return app, docs, nil
}
