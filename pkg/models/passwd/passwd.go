package passwd

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Constants for cost and max password length (bcrypt truncates after 72 bytes)
const (
	DefaultCost    = 12 // matches the cost the legacy journal app used
	MinPasswordLen = 8  // accounts need at least this many bytes
	MaxPasswordLen = 72 // bcrypt input limit
)

// HashPassword hashes a password using bcrypt with the DefaultCost
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", errors.New("password must be at least 8 characters")
	}

	// Reject overly long passwords rather than silently truncating
	if len(password) > MaxPasswordLen {
		return "", errors.New("password exceeds 72 bytes and will be truncated by bcrypt")
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plaintext password with a bcrypt hashed password.
// Returns true if they match, false otherwise.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
