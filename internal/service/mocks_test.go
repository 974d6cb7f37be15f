package service_test

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"ecoloop-backend/internal/domain"
	"ecoloop-backend/internal/security"
)

func jwtDate(t time.Time) *jwt.NumericDate {
	return jwt.NewNumericDate(t)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) UpdatePasswordHash(ctx context.Context, userID int32, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}
func (m *MockUserRepo) SetActive(ctx context.Context, userID int32, active bool) error {
	args := m.Called(ctx, userID, active)
	return args.Error(0)
}
func (m *MockUserRepo) CreateFromPending(ctx context.Context, user *domain.User, pendingID uuid.UUID) error {
	args := m.Called(ctx, user, pendingID)
	return args.Error(0)
}
func (m *MockUserRepo) GetRoles(ctx context.Context, userID int32) ([]domain.Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Role), args.Error(1)
}
func (m *MockUserRepo) HasRole(ctx context.Context, userID int32, roleName string) (bool, error) {
	args := m.Called(ctx, userID, roleName)
	return args.Bool(0), args.Error(1)
}

// MockPendingRepo
type MockPendingRepo struct {
	mock.Mock
}

func (m *MockPendingRepo) Stage(ctx context.Context, pending *domain.PendingRegistration, otp *domain.OTPVerification) error {
	args := m.Called(ctx, pending, otp)
	return args.Error(0)
}
func (m *MockPendingRepo) GetActive(ctx context.Context, id uuid.UUID, email string) (*domain.PendingRegistration, error) {
	args := m.Called(ctx, id, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PendingRegistration), args.Error(1)
}
func (m *MockPendingRepo) MarkUsed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockPendingRepo) DeleteDead(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockOTPRepo
type MockOTPRepo struct {
	mock.Mock
}

func (m *MockOTPRepo) Replace(ctx context.Context, o *domain.OTPVerification) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockOTPRepo) GetLatestActive(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPVerification, error) {
	args := m.Called(ctx, email, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OTPVerification), args.Error(1)
}
func (m *MockOTPRepo) MarkUsed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockOTPRepo) IncrementAttempts(ctx context.Context, id uuid.UUID) (int32, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockOTPRepo) DeleteDead(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockApplicationRepo
type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.RoleApplication, docs []domain.RoleApplicationDocument) error {
	args := m.Called(ctx, app, docs)
	return args.Error(0)
}
func (m *MockApplicationRepo) GetByID(ctx context.Context, id int32) (*domain.RoleApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoleApplication), args.Error(1)
}
func (m *MockApplicationRepo) HasPending(ctx context.Context, applicantID int32, roleName string) (bool, error) {
	args := m.Called(ctx, applicantID, roleName)
	return args.Bool(0), args.Error(1)
}
func (m *MockApplicationRepo) ListByApplicant(ctx context.Context, applicantID int32) ([]domain.RoleApplication, error) {
	args := m.Called(ctx, applicantID)
	return args.Get(0).([]domain.RoleApplication), args.Error(1)
}
func (m *MockApplicationRepo) ListByStatus(ctx context.Context, status domain.ApplicationStatus, page, pageSize int32) ([]domain.RoleApplication, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]domain.RoleApplication), args.Get(1).(int32), args.Error(2)
}
func (m *MockApplicationRepo) Approve(ctx context.Context, app *domain.RoleApplication, role *domain.Role, entry *domain.AdminActivityLog) error {
	args := m.Called(ctx, app, role, entry)
	return args.Error(0)
}
func (m *MockApplicationRepo) Reject(ctx context.Context, app *domain.RoleApplication, entry *domain.AdminActivityLog) error {
	args := m.Called(ctx, app, entry)
	return args.Error(0)
}
func (m *MockApplicationRepo) AddDocument(ctx context.Context, doc *domain.RoleApplicationDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}
func (m *MockApplicationRepo) ListDocuments(ctx context.Context, applicationID int32) ([]domain.RoleApplicationDocument, error) {
	args := m.Called(ctx, applicationID)
	return args.Get(0).([]domain.RoleApplicationDocument), args.Error(1)
}

// MockAuditRepo
type MockAuditRepo struct {
	mock.Mock
}

func (m *MockAuditRepo) Append(ctx context.Context, entry *domain.AdminActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockAuditRepo) List(ctx context.Context, page, pageSize int32) ([]domain.AdminActivityLog, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.AdminActivityLog), args.Get(1).(int32), args.Error(2)
}

// MockBlacklistRepo
type MockBlacklistRepo struct {
	mock.Mock
}

func (m *MockBlacklistRepo) Revoke(ctx context.Context, token *domain.RevokedToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
func (m *MockBlacklistRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}
func (m *MockBlacklistRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendRegistrationOTP(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}
func (m *MockEmailService) SendLoginOTP(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}
func (m *MockEmailService) SendPasswordResetOTP(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}
func (m *MockEmailService) SendApplicationDecision(ctx context.Context, email, name, roleName string, approved bool, notes string) error {
	args := m.Called(ctx, email, name, roleName, approved, notes)
	return args.Error(0)
}
func (m *MockEmailService) SendAccountStatusNotice(ctx context.Context, email, name, status, reason string) error {
	args := m.Called(ctx, email, name, status, reason)
	return args.Error(0)
}

// MockTokenManager
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GeneratePair(userID int32, email string, roles []string) (*security.TokenPair, error) {
	args := m.Called(userID, email, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.TokenPair), args.Error(1)
}
func (m *MockTokenManager) ValidateToken(tokenString string) (*security.UserClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.UserClaims), args.Error(1)
}
func (m *MockTokenManager) ValidateTyped(tokenString string, want security.TokenType) (*security.UserClaims, error) {
	args := m.Called(tokenString, want)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.UserClaims), args.Error(1)
}
