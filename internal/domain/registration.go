package domain

import (
	"time"

	"github.com/google/uuid"
)

// OTPPurpose scopes a one-time password to the flow it was issued for.
type OTPPurpose string

const (
	OTPPurposeRegister      OTPPurpose = "REGISTER"
	OTPPurposeLogin         OTPPurpose = "LOGIN"
	OTPPurposeResetPassword OTPPurpose = "RESET_PASSWORD"
)

// Valid reports whether p is one of the known purposes.
func (p OTPPurpose) Valid() bool {
	switch p {
	case OTPPurposeRegister, OTPPurposeLogin, OTPPurposeResetPassword:
		return true
	}
	return false
}

// PendingRegistration stages an account until its REGISTER OTP is confirmed.
// The password is stored hashed; the hash is copied verbatim onto the user
// row when the account is materialized.
type PendingRegistration struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PhoneNumber  string    `json:"phone_number"`
	PasswordHash string    `json:"-"`
	IsUsed       bool      `json:"is_used"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (p *PendingRegistration) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// OTPVerification is a single-use code bound to an email and a purpose.
// Only the bcrypt hash of the code is ever stored.
type OTPVerification struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Purpose   OTPPurpose `json:"purpose"`
	OTPHash   string     `json:"-"`
	Attempts  int32      `json:"attempts"`
	IsUsed    bool       `json:"is_used"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (o *OTPVerification) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// RevokedToken blacklists a refresh token by its JTI until the token would
// have expired anyway.
type RevokedToken struct {
	JTI       string    `json:"jti"`
	UserID    int32     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	RevokedAt time.Time `json:"revoked_at"`
}
