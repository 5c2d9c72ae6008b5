package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/mentor-marketplace/internal/apperr"
)

// HashPassword hashes plain with bcrypt.  A cost outside bcrypt's range is
// replaced by bcrypt.DefaultCost, and passwords beyond bcrypt's 72 byte
// input limit are rejected instead of being silently truncated.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.Validationf("password must be at most 72 bytes")
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
