package passcode

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12
)

// Verifier checks a presented kiosk passcode against the stored secret.
// Implementations must not leak timing information about the stored value.
type Verifier interface {
	Verify(presented, stored string) bool
}

// BcryptVerifier verifies bcrypt-hashed passcodes. Stored values that are
// not bcrypt hashes fall back to a constant-time comparison so rosters
// fetched from the legacy upstream (plaintext secrets) keep working.
type BcryptVerifier struct{}

// NewVerifier returns the default verifier
func NewVerifier() Verifier {
	return BcryptVerifier{}
}

// Verify compares a presented passcode with the stored secret
func (BcryptVerifier) Verify(presented, stored string) bool {
	if stored == "" {
		return false
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1
}

// Hash hashes a passcode using bcrypt
func Hash(code string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// HashToken hashes a token using SHA256 (for refresh tokens)
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
