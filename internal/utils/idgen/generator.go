package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const charset = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateSecureID generates a cryptographically secure ID with the given prefix and length.
// Uses only alphanumeric characters (0-9, a-z) so the ID is safe inside callback URLs.
func GenerateSecureID(prefix string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid id length %d", length)
	}

	max := big.NewInt(int64(len(charset)))
	encoded := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		encoded[i] = charset[n.Int64()]
	}

	return fmt.Sprintf("%s_%s", prefix, string(encoded)), nil
}

// IsSecureID reports whether value looks like an ID produced by GenerateSecureID.
func IsSecureID(value, prefix string, length int) bool {
	rest, ok := strings.CutPrefix(value, prefix+"_")
	if !ok || len(rest) != length {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if !strings.ContainsRune(charset, rune(rest[i])) {
			return false
		}
	}
	return true
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewEventID returns a lowercase, time-ordered ULID with the given prefix.
func NewEventID(prefix string) string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	entropyMu.Unlock()
	return prefix + "_" + strings.ToLower(id.String())
}
