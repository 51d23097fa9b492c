package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ChaliniM/Healthcare/pkg/interfaces"
)

// NewPasswordManager returns the credential manager for the configured
// mode. Plaintext is the demo-compatible default; bcrypt is the hardened
// mode.
func NewPasswordManager(hashPasswords bool) interfaces.PasswordManager {
	if hashPasswords {
		return &BcryptPasswordManager{cost: bcrypt.DefaultCost}
	}
	return &PlaintextPasswordManager{}
}

// BcryptPasswordManager stores bcrypt digests
type BcryptPasswordManager struct {
	cost int
}

// HashPassword hashes a password using bcrypt
func (pm *BcryptPasswordManager) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), pm.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// VerifyPassword verifies a password against its bcrypt digest. Plaintext
// rows seeded before hashing was enabled still verify, so flipping the mode
// on does not lock existing users out.
func (pm *BcryptPasswordManager) VerifyPassword(stored, password string) bool {
	if !strings.HasPrefix(stored, "$2") {
		return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// PlaintextPasswordManager stores passwords as-is, matching the original
// demo deployment
type PlaintextPasswordManager struct{}

// HashPassword returns the password unchanged
func (pm *PlaintextPasswordManager) HashPassword(password string) (string, error) {
	return password, nil
}

// VerifyPassword compares in constant time
func (pm *PlaintextPasswordManager) VerifyPassword(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}
