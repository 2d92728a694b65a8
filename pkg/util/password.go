package util

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashPassword hashes a plain text secret (admin password, admin key)
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword checks if a plain text secret matches a bcrypt hash
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// IsBcryptHash reports whether s looks like a bcrypt hash ($2a$, $2b$, $2y$)
func IsBcryptHash(s string) bool {
	if len(s) != 60 {
		return false
	}
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// CheckSecret compares candidate with a configured secret that may be stored
// either as a bcrypt hash or as plain text.
func CheckSecret(configured, candidate string) bool {
	if configured == "" || candidate == "" {
		return false
	}
	if IsBcryptHash(configured) {
		return VerifyPassword(configured, candidate)
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(candidate)) == 1
}
