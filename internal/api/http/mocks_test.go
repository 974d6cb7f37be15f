package http_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"ecoloop-backend/internal/domain"
	"ecoloop-backend/internal/security"
	"ecoloop-backend/internal/service"
)

type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) RequestRegistration(ctx context.Context, req service.RegistrationRequest) (*service.RegistrationReceipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegistrationReceipt), args.Error(1)
}

func (m *MockIdentityService) Login(ctx context.Context, email string, method service.LoginMethod, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, email, method, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockIdentityService) VerifyOTP(ctx context.Context, req service.VerifyOTPRequest) (*service.VerifyOTPResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VerifyOTPResult), args.Error(1)
}

func (m *MockIdentityService) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockIdentityService) RefreshToken(ctx context.Context, refresh string) (*security.TokenPair, error) {
	args := m.Called(ctx, refresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.TokenPair), args.Error(1)
}

func (m *MockIdentityService) Logout(ctx context.Context, refresh string) error {
	args := m.Called(ctx, refresh)
	return args.Error(0)
}

type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) Submit(ctx context.Context, req service.SubmitApplicationRequest) (*domain.RoleApplication, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoleApplication), args.Error(1)
}

func (m *MockApplicationService) Review(ctx context.Context, applicationID, reviewerID int32, action service.ReviewAction, adminNotes string) (*domain.RoleApplication, error) {
	args := m.Called(ctx, applicationID, reviewerID, action, adminNotes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoleApplication), args.Error(1)
}

func (m *MockApplicationService) AddDocument(ctx context.Context, applicantID int32, doc *domain.RoleApplicationDocument) error {
	args := m.Called(ctx, applicantID, doc)
	return args.Error(0)
}

func (m *MockApplicationService) ListMine(ctx context.Context, applicantID int32) ([]domain.RoleApplication, error) {
	args := m.Called(ctx, applicantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoleApplication), args.Error(1)
}

func (m *MockApplicationService) ListByStatus(ctx context.Context, status domain.ApplicationStatus, page, pageSize int32) ([]domain.RoleApplication, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.RoleApplication), args.Get(1).(int32), args.Error(2)
}

func (m *MockApplicationService) GetWithDocuments(ctx context.Context, id int32) (*domain.RoleApplication, []domain.RoleApplicationDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.RoleApplication), args.Get(1).([]domain.RoleApplicationDocument), args.Error(2)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) SetUserBlocked(ctx context.Context, adminID, userID int32, blocked bool, reason string) error {
	args := m.Called(ctx, adminID, userID, blocked, reason)
	return args.Error(0)
}

func (m *MockAdminService) ListActivityLog(ctx context.Context, page, pageSize int32) ([]domain.AdminActivityLog, int32, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.AdminActivityLog), args.Get(1).(int32), args.Error(2)
}

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) GenerateUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentStore) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentStore) FileExists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentStore) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockDocumentStore) SaveFile(key string, reader io.Reader) error {
	args := m.Called(key, reader)
	return args.Error(0)
}

func (m *MockDocumentStore) ReadFile(key string) (io.ReadCloser, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
