// Package password implements the credential codec: an irreversible,
// salted, iterated representation of a plaintext password and its
// verification. The stored form is four $-delimited fields:
//
//	pbkdf2_sha256$<iterations>$<base64 salt>$<base64 derived key>
package password

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	algorithmTag = "pbkdf2_sha256"

	// DefaultIterations is deliberately slow; it is the tunable
	// security/performance knob of the codec.
	DefaultIterations = 120_000

	saltSize = 16
	keySize  = sha256.Size
)

type Hasher struct {
	iterations int
}

func NewHasher(iterations int) *Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Hasher{iterations: iterations}
}

// Hash derives a key from password under a fresh random salt. Two hashes of
// the same password are never equal.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, h.iterations, keySize, sha256.New)

	return strings.Join([]string{
		algorithmTag,
		strconv.Itoa(h.iterations),
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	}, "$"), nil
}

// Verify reports whether password matches the stored hash. It fails closed:
// any malformed stored value is a verification failure, never an error, so a
// caller cannot distinguish a bad password from a corrupt record.
func (h *Hasher) Verify(password string, stored string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 4 {
		return false
	}
	if parts[0] != algorithmTag {
		return false
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(expected) == 0 {
		return false
	}

	computed := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return hmac.Equal(computed, expected)
}
