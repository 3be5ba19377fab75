package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the cost used for stored credentials.
	DefaultCost = 12
	// MinLength is the shortest password accepted at registration.
	MinLength = 8
	// MaxLength is bcrypt's input limit.
	MaxLength = 72

	errPasswordEmpty    = "password cannot be empty"
	errPasswordTooShort = "password must be at least %d characters"
	errPasswordTooLong  = "password must be at most %d characters"
	errHashPasswordFmt  = "failed to hash password: %w"
)

// Pre-computed bcrypt hash (cost 12) of a random string nobody knows. Comparing
// against it makes "no such account" cost the same as "wrong password".
const dummyHash = "$2a$12$dWR5CQpS4zNHLavLSIr4o.P6QDQEUJKv7mJ7WekUHHqyRSRMJzH0S"

// Hash generates a bcrypt hash of the password
func Hash(password string) (string, error) {
	return HashWithCost(password, DefaultCost)
}

// HashWithCost is Hash with an explicit cost; tests use bcrypt.MinCost.
func HashWithCost(password string, cost int) (string, error) {
	if len(password) == 0 {
		return "", fmt.Errorf(errPasswordEmpty)
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf(errHashPasswordFmt, err)
	}

	return string(bytes), nil
}

// Verify checks if the password matches the hash
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnVerify runs a comparison whose result is discarded.
func BurnVerify(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}

// Validate checks registration-time password rules.
func Validate(password string) error {
	switch {
	case password == "":
		return fmt.Errorf(errPasswordEmpty)
	case len(password) < MinLength:
		return fmt.Errorf(errPasswordTooShort, MinLength)
	case len(password) > MaxLength:
		return fmt.Errorf(errPasswordTooLong, MaxLength)
	}
	return nil
}
