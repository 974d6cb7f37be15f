package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode"

	"ecoloop-backend/internal/domain"
	"ecoloop-backend/internal/logger"
	"ecoloop-backend/internal/otp"
	"ecoloop-backend/internal/repository"
	"ecoloop-backend/internal/security"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxOTPAttempts     = 5
	otpLength          = otp.DefaultLength
	otpExpiry          = 5 * time.Minute
	registrationExpiry = 10 * time.Minute
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type identityService struct {
	userRepo      repository.UserRepository
	pendingRepo   repository.PendingRegistrationRepository
	otpRepo       repository.OTPRepository
	blacklistRepo repository.TokenBlacklistRepository
	tokens        security.TokenManager
	emailSvc      EmailService
}

func NewIdentityService(
	userRepo repository.UserRepository,
	pendingRepo repository.PendingRegistrationRepository,
	otpRepo repository.OTPRepository,
	blacklistRepo repository.TokenBlacklistRepository,
	tokens security.TokenManager,
	emailSvc EmailService,
) IdentityService {
	return &identityService{
		userRepo:      userRepo,
		pendingRepo:   pendingRepo,
		otpRepo:       otpRepo,
		blacklistRepo: blacklistRepo,
		tokens:        tokens,
		emailSvc:      emailSvc,
	}
}

func (s *identityService) RequestRegistration(ctx context.Context, req RegistrationRequest) (*RegistrationReceipt, error) {
	if !emailPattern.MatchString(req.Email) {
		return nil, newValidationError("email", "Enter a valid email address.")
	}
	if req.FullName == "" {
		return nil, newValidationError("full_name", "This field is required.")
	}
	if err := validatePhoneNumber(req.PhoneNumber); err != nil {
		return nil, err
	}
	if err := validatePasswordStrength(req.Password); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, newValidationError("password", "Passwords do not match.")
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, newValidationError("email", "User with this email already exists.")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup existing user: %w", err)
	}

	code, err := otp.Generate(otpLength)
	if err != nil {
		return nil, err
	}
	codeHash, err := otp.Hash(code)
	if err != nil {
		return nil, err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	pending := &domain.PendingRegistration{
		ID:           uuid.New(),
		Email:        req.Email,
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: string(passwordHash),
		ExpiresAt:    now.Add(registrationExpiry),
	}
	verification := &domain.OTPVerification{
		ID:        uuid.New(),
		Email:     req.Email,
		Purpose:   domain.OTPPurposeRegister,
		OTPHash:   codeHash,
		ExpiresAt: now.Add(otpExpiry),
	}

	// All four writes (invalidate + create, twice) share one transaction.
	if err := s.pendingRepo.Stage(ctx, pending, verification); err != nil {
		return nil, fmt.Errorf("stage registration: %w", err)
	}

	// The committed OTP row is the source of truth; delivery is best-effort.
	if err := s.emailSvc.SendRegistrationOTP(ctx, req.Email, code); err != nil {
		logger.Error("Failed to send registration OTP", "email", req.Email, "error", err)
	}

	return &RegistrationReceipt{RegistrationID: pending.ID, Email: pending.Email}, nil
}

func (s *identityService) Login(ctx context.Context, email string, method LoginMethod, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	switch method {
	case LoginMethodPassword:
		if password == "" {
			return nil, newValidationError("password", "This field is required for login.")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		pair, err := s.tokens.GeneratePair(user.ID, user.Email, user.RoleNames())
		if err != nil {
			return nil, fmt.Errorf("issue tokens: %w", err)
		}
		return &LoginResult{User: user, Tokens: pair}, nil

	case LoginMethodOTP:
		if err := s.issueOTP(ctx, user.Email, domain.OTPPurposeLogin); err != nil {
			return nil, err
		}
		return &LoginResult{OTPSent: true}, nil

	default:
		return nil, newValidationError("method", "Method must be PASSWORD or OTP.")
	}
}

// issueOTP generates, stores (hashed, superseding prior unused codes) and
// best-effort delivers a code for the given purpose.
func (s *identityService) issueOTP(ctx context.Context, email string, purpose domain.OTPPurpose) error {
	code, err := otp.Generate(otpLength)
	if err != nil {
		return err
	}
	codeHash, err := otp.Hash(code)
	if err != nil {
		return err
	}

	verification := &domain.OTPVerification{
		ID:        uuid.New(),
		Email:     email,
		Purpose:   purpose,
		OTPHash:   codeHash,
		ExpiresAt: time.Now().Add(otpExpiry),
	}
	if err := s.otpRepo.Replace(ctx, verification); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	var sendErr error
	switch purpose {
	case domain.OTPPurposeLogin:
		sendErr = s.emailSvc.SendLoginOTP(ctx, email, code)
	case domain.OTPPurposeResetPassword:
		sendErr = s.emailSvc.SendPasswordResetOTP(ctx, email, code)
	default:
		sendErr = s.emailSvc.SendRegistrationOTP(ctx, email, code)
	}
	if sendErr != nil {
		logger.Error("Failed to send OTP", "email", email, "purpose", purpose, "error", sendErr)
	}
	return nil
}

func (s *identityService) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*VerifyOTPResult, error) {
	if !req.Purpose.Valid() {
		return nil, newValidationError("purpose", "Purpose must be REGISTER, LOGIN or RESET_PASSWORD.")
	}

	// Validation phase. Nothing purpose-specific runs until the submitted
	// code has consumed the active OTP row.
	var registrationID uuid.UUID
	switch req.Purpose {
	case domain.OTPPurposeResetPassword:
		if req.NewPassword == "" || req.ConfirmNewPassword == "" {
			return nil, newValidationError("new_password", "new_password and confirm_new_password are required for RESET_PASSWORD.")
		}
		if req.NewPassword != req.ConfirmNewPassword {
			return nil, newValidationError("new_password", "Passwords do not match.")
		}
		if err := validatePasswordStrength(req.NewPassword); err != nil {
			return nil, err
		}
	case domain.OTPPurposeRegister:
		if req.RegistrationID == "" {
			return nil, newValidationError("registration_id", "registration_id is required for REGISTER verification.")
		}
		var err error
		if registrationID, err = uuid.Parse(req.RegistrationID); err != nil {
			return nil, newValidationError("registration_id", "Invalid registration_id format.")
		}
	}

	if err := s.consumeOTP(ctx, req.Email, req.Purpose, req.Code); err != nil {
		return nil, err
	}

	// Processing phase.
	switch req.Purpose {
	case domain.OTPPurposeRegister:
		return s.completeRegistration(ctx, req.Email, registrationID)
	case domain.OTPPurposeLogin:
		user, err := s.userRepo.GetByEmail(ctx, req.Email)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		if err != nil {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		pair, err := s.tokens.GeneratePair(user.ID, user.Email, user.RoleNames())
		if err != nil {
			return nil, fmt.Errorf("issue tokens: %w", err)
		}
		return &VerifyOTPResult{Message: "Login successful.", User: user, Tokens: pair}, nil
	default: // RESET_PASSWORD
		user, err := s.userRepo.GetByEmail(ctx, req.Email)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("email", "User not found.")
		}
		if err != nil {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
			return nil, fmt.Errorf("update password: %w", err)
		}
		return &VerifyOTPResult{Message: "Password reset successfully."}, nil
	}
}

// consumeOTP applies the verification ladder to the latest unused OTP for
// (email, purpose). Expiry and attempt exhaustion consume the row; a wrong
// guess only increments attempts, leaving the code retryable up to the cap.
func (s *identityService) consumeOTP(ctx context.Context, email string, purpose domain.OTPPurpose, code string) error {
	row, err := s.otpRepo.GetLatestActive(ctx, email, purpose)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNoActiveOTP
	}
	if err != nil {
		return fmt.Errorf("lookup otp: %w", err)
	}

	if row.IsExpired(time.Now()) {
		if err := s.otpRepo.MarkUsed(ctx, row.ID); err != nil {
			return fmt.Errorf("consume expired otp: %w", err)
		}
		return ErrOTPExpired
	}

	if row.Attempts >= maxOTPAttempts {
		if err := s.otpRepo.MarkUsed(ctx, row.ID); err != nil {
			return fmt.Errorf("consume exhausted otp: %w", err)
		}
		return ErrTooManyAttempts
	}

	if !otp.Verify(code, row.OTPHash) {
		if _, err := s.otpRepo.IncrementAttempts(ctx, row.ID); err != nil {
			return fmt.Errorf("record failed attempt: %w", err)
		}
		return ErrInvalidOTP
	}

	if err := s.otpRepo.MarkUsed(ctx, row.ID); err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	return nil
}

func (s *identityService) completeRegistration(ctx context.Context, email string, registrationID uuid.UUID) (*VerifyOTPResult, error) {
	pending, err := s.pendingRepo.GetActive(ctx, registrationID, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidRegistration
	}
	if err != nil {
		return nil, fmt.Errorf("lookup pending registration: %w", err)
	}

	if pending.IsExpired(time.Now()) {
		if err := s.pendingRepo.MarkUsed(ctx, pending.ID); err != nil {
			return nil, fmt.Errorf("consume expired registration: %w", err)
		}
		return nil, ErrRegistrationExpired
	}

	// The password hash moves verbatim from the staged row onto the account.
	user := &domain.User{
		Email:           pending.Email,
		FullName:        pending.FullName,
		PhoneNumber:     pending.PhoneNumber,
		PasswordHash:    pending.PasswordHash,
		IsActive:        true,
		IsEmailVerified: true,
	}
	if err := s.userRepo.CreateFromPending(ctx, user, pending.ID); err != nil {
		return nil, fmt.Errorf("materialize account: %w", err)
	}

	logger.Info("Account created via verified registration", "userID", user.ID, "email", user.Email)
	return &VerifyOTPResult{Message: "Registration completed successfully.", User: user}, nil
}

func (s *identityService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		// Same acknowledgment as the success path; no account enumeration.
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil
	}
	return s.issueOTP(ctx, user.Email, domain.OTPPurposeResetPassword)
}

func (s *identityService) RefreshToken(ctx context.Context, refresh string) (*security.TokenPair, error) {
	claims, err := s.tokens.ValidateTyped(refresh, security.TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	revoked, err := s.blacklistRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}

	pair, err := s.tokens.GeneratePair(user.ID, user.Email, user.RoleNames())
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return pair, nil
}

func (s *identityService) Logout(ctx context.Context, refresh string) error {
	claims, err := s.tokens.ValidateTyped(refresh, security.TokenTypeRefresh)
	if err != nil {
		return ErrInvalidToken
	}

	revoked, err := s.blacklistRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return ErrInvalidToken
	}

	return s.blacklistRepo.Revoke(ctx, &domain.RevokedToken{
		JTI:       claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

func validatePhoneNumber(phone string) error {
	if len(phone) != 10 {
		return newValidationError("phone_number", "Phone number must be 10 digits long.")
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return newValidationError("phone_number", "Phone number must contain only digits.")
		}
	}
	return nil
}

func validatePasswordStrength(password string) error {
	if len(password) < 8 {
		return newValidationError("password", "Password must be at least 8 characters long.")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return newValidationError("password", "Password must contain at least one letter and one digit.")
	}
	return nil
}
