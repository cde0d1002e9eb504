package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/job-search-service/internal/config"
)

// PasswordHasher turns a plaintext password into its stored form and checks it.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(stored, plain string) bool
}

// NewPasswordHasher picks the hasher for the configured password mode.
func NewPasswordHasher(cfg config.AuthConfig) PasswordHasher {
	if cfg.PasswordMode == config.PasswordModeBcrypt {
		return BcryptHasher{Cost: cfg.BcryptCost}
	}
	return PlainHasher{}
}

// PlainHasher stores passwords as given and compares them for equality.
// Existing data written by the mobile client uses this form.
type PlainHasher struct{}

func (PlainHasher) Hash(plain string) (string, error) { return plain, nil }

func (PlainHasher) Compare(stored, plain string) bool { return stored == plain }

// BcryptHasher stores bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

// Hash hashes a plaintext password with configured cost.
func (b BcryptHasher) Hash(plain string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare verifies a password against its hashed value.
func (BcryptHasher) Compare(stored, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}
