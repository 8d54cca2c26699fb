package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

// NewRefreshSecret returns a fresh opaque refresh secret: 256 bits from the
// OS CSPRNG, base64url-encoded. Never derived from user or account data.
func NewRefreshSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashRefreshSecret returns a SHA-256 hash of the refresh secret, hex-encoded.
// Sessions store and look up this hash so a store-read leak never exposes a
// usable secret.
func HashRefreshSecret(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(h[:])
}

// RefreshSecretHashEqual performs constant-time comparison of the provided
// secret's hash with the stored hash. Returns true only if they match.
func RefreshSecretHashEqual(providedSecret, storedHash string) bool {
	providedHash := HashRefreshSecret(providedSecret)
	return subtle.ConstantTimeCompare([]byte(providedHash), []byte(storedHash)) == 1
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
