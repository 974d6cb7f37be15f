// Package otp generates and checks short-lived numeric one-time passwords.
// Codes are produced from a cryptographically secure source and only their
// bcrypt hashes are ever persisted.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultLength is the number of decimal digits in a generated code.
const DefaultLength = 6

var ten = big.NewInt(10)

// Generate returns a numeric code of the given length. Each digit is drawn
// independently so codes are uniform over [0, 10^length).
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		b.WriteString(n.String())
	}
	return b.String(), nil
}

// Hash returns an irreversible digest of the code.
func Hash(code string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash otp: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether code matches the stored digest.
func Verify(code, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(code)) == nil
}
