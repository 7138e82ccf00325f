package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"
)

// DefaultLength is the number of hex characters kept from the digest. 64 bits
// of token keeps the QR payload compact while staying far outside brute-force
// reach for validity windows measured in minutes.
const DefaultLength = 16

// Signer derives session tokens from a shared secret. Signing is deterministic:
// the same (sessionID, expiresAt) always produces the same token.
type Signer struct {
	secret []byte
	length int
}

// NewSigner creates a signer truncating tokens to length hex characters.
// Lengths outside (0, 64] fall back to DefaultLength.
func NewSigner(secret []byte, length int) *Signer {
	if length <= 0 || length > hex.EncodedLen(sha256.Size) {
		length = DefaultLength
	}
	return &Signer{secret: secret, length: length}
}

// Sign hashes sessionID, the expiry in epoch milliseconds, and the shared
// secret, and returns the hex digest truncated to the configured length.
func (s *Signer) Sign(sessionID string, expiresAt time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s.%d.%s", sessionID, expiresAt.UnixMilli(), s.secret)))
	return hex.EncodeToString(sum[:])[:s.length]
}

// Equal compares two tokens in constant time with respect to their content.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
