// Package password wraps bcrypt hashing for account credentials. Plaintext
// never leaves this package and is never logged.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "alumnet/pkg/domain-errors"
)

const minLength = 6

// Hash creates a bcrypt hash of the provided password.
func Hash(plain string) (string, error) {
	if len(plain) < minLength {
		return "", dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plain matches the stored hash. An empty hash means
// the account has no usable password (social-only) and never matches.
func Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// DummyCompare burns one bcrypt comparison against a fixed hash. Login calls
// it when the email is unknown so the response time does not reveal whether
// an account exists.
func DummyCompare(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}

// bcrypt hash of an unguessable throwaway value, cost 10.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
