package service

import (
	"errors"
	"fmt"
)

// Business-rule failures surfaced to the caller. All are recoverable; the
// HTTP layer maps them to 4xx responses without leaking internals.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoActiveOTP        = errors.New("no active OTP found")
	ErrOTPExpired         = errors.New("OTP expired")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrInvalidOTP         = errors.New("invalid OTP")
	ErrInvalidRegistration = errors.New("invalid or already used registration request")
	ErrRegistrationExpired = errors.New("registration request expired")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrAlreadyReviewed     = errors.New("application has already been reviewed")
	ErrDuplicateApplication = errors.New("a pending application for this role already exists")
	ErrRoleAlreadyHeld      = errors.New("applicant already holds this role")
	ErrRoleTaken            = errors.New("role is already assigned to another account")
)

// ValidationError is a field-keyed input failure. No state is mutated when
// one is returned.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
