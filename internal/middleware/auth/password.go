package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength is the bcrypt input limit; longer passwords are rejected rather than truncated.
const MaxPasswordLength = 72

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// HashPassword creates a bcrypt hash from the given plaintext password.
func HashPassword(password string) (string, error) {
	// default cost is 10
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyPassword checks if the provided plaintext password matches the stored bcrypt hash.
func VerifyPassword(hashedPassword, providedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(providedPassword))
}

// CompareDummy burns the same bcrypt work as a real comparison.
// Used when the account does not exist so login timing does not reveal it.
func CompareDummy(providedPassword string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("bookhub-dummy-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(providedPassword))
}
