package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// PasswordChecker verifies the admin password against a bcrypt hash, or
// against a plain value when no hash is configured (local development).
type PasswordChecker struct {
	hash  []byte
	plain []byte
}

// NewPasswordChecker creates a PasswordChecker. hash takes precedence over plain.
func NewPasswordChecker(hash, plain string) *PasswordChecker {
	return &PasswordChecker{hash: []byte(hash), plain: []byte(plain)}
}

// Check reports whether password matches.
func (c *PasswordChecker) Check(password string) bool {
	if password == "" {
		return false
	}
	if len(c.hash) > 0 {
		return bcrypt.CompareHashAndPassword(c.hash, []byte(password)) == nil
	}
	if len(c.plain) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(c.plain, []byte(password)) == 1
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
