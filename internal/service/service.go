package service

import (
	"context"

	"ecoloop-backend/internal/domain"
	"ecoloop-backend/internal/security"

	"github.com/google/uuid"
)

type LoginMethod string

const (
	LoginMethodPassword LoginMethod = "PASSWORD"
	LoginMethodOTP      LoginMethod = "OTP"
)

type RegistrationRequest struct {
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// RegistrationReceipt acknowledges a staged registration. The account does
// not exist until the REGISTER OTP is verified.
type RegistrationReceipt struct {
	RegistrationID uuid.UUID `json:"registration_id"`
	Email          string    `json:"email"`
}

type LoginResult struct {
	User    *domain.User        `json:"user,omitempty"`
	Tokens  *security.TokenPair `json:"tokens,omitempty"`
	OTPSent bool                `json:"otp_sent"`
}

type VerifyOTPRequest struct {
	Email              string            `json:"email"`
	Purpose            domain.OTPPurpose `json:"purpose"`
	Code               string            `json:"otp"`
	RegistrationID     string            `json:"registration_id,omitempty"`
	NewPassword        string            `json:"new_password,omitempty"`
	ConfirmNewPassword string            `json:"confirm_new_password,omitempty"`
}

type VerifyOTPResult struct {
	Message string              `json:"message"`
	User    *domain.User        `json:"user,omitempty"`
	Tokens  *security.TokenPair `json:"tokens,omitempty"`
}

type IdentityService interface {
	RequestRegistration(ctx context.Context, req RegistrationRequest) (*RegistrationReceipt, error)
	Login(ctx context.Context, email string, method LoginMethod, password string) (*LoginResult, error)
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	RefreshToken(ctx context.Context, refresh string) (*security.TokenPair, error)
	Logout(ctx context.Context, refresh string) error
}

type SubmitApplicationRequest struct {
	ApplicantID      int32                            `json:"-"`
	RoleName         string                           `json:"role_name"`
	OrganizationName string                           `json:"organization_name"`
	RegistrationNo   string                           `json:"registration_no"`
	Justification    string                           `json:"justification"`
	Documents        []domain.RoleApplicationDocument `json:"documents"`
}

type ReviewAction string

const (
	ReviewActionApprove ReviewAction = "approve"
	ReviewActionReject  ReviewAction = "reject"
)

type ApplicationService interface {
	Submit(ctx context.Context, req SubmitApplicationRequest) (*domain.RoleApplication, error)
	Review(ctx context.Context, applicationID, reviewerID int32, action ReviewAction, adminNotes string) (*domain.RoleApplication, error)
	AddDocument(ctx context.Context, applicantID int32, doc *domain.RoleApplicationDocument) error
	ListMine(ctx context.Context, applicantID int32) ([]domain.RoleApplication, error)
	ListByStatus(ctx context.Context, status domain.ApplicationStatus, page, pageSize int32) ([]domain.RoleApplication, int32, error)
	GetWithDocuments(ctx context.Context, id int32) (*domain.RoleApplication, []domain.RoleApplicationDocument, error)
}

type AdminService interface {
	SetUserBlocked(ctx context.Context, adminID, userID int32, blocked bool, reason string) error
	ListActivityLog(ctx context.Context, page, pageSize int32) ([]domain.AdminActivityLog, int32, error)
}

type EmailService interface {
	SendRegistrationOTP(ctx context.Context, email, code string) error
	SendLoginOTP(ctx context.Context, email, code string) error
	SendPasswordResetOTP(ctx context.Context, email, code string) error
	SendApplicationDecision(ctx context.Context, email, name, roleName string, approved bool, notes string) error
	SendAccountStatusNotice(ctx context.Context, email, name, status, reason string) error
}
