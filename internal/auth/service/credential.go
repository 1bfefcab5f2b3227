package service

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/gradesystem/backend/internal/models"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the PBKDF2 iteration count used by existing credentials
	DefaultIterations = 1000
	// DefaultSaltBytes is the salt length in bytes (32 hex characters)
	DefaultSaltBytes = 16
	// KeyBytes is the derived key length in bytes (128 hex characters)
	KeyBytes = 64
)

// CredentialCodec derives and verifies stored password credentials.
//
// A stored credential is hex(salt) followed by hex(PBKDF2-SHA512(password, hex(salt))).
// The hex salt string, not the raw salt bytes, is the PBKDF2 salt input, so that
// ExtractSalt output can be fed straight back into DeriveHash.
// CredentialCodec holds only immutable settings and is safe for concurrent use.
type CredentialCodec struct {
	iterations int
	saltBytes  int
}

// NewCredentialCodec creates a codec with the given iteration count and salt length in bytes
func NewCredentialCodec(iterations, saltBytes int) (*CredentialCodec, error) {
	if iterations < DefaultIterations {
		return nil, fmt.Errorf("iterations must be at least %d, got %d", DefaultIterations, iterations)
	}
	if saltBytes < DefaultSaltBytes {
		return nil, fmt.Errorf("salt length must be at least %d bytes, got %d", DefaultSaltBytes, saltBytes)
	}
	return &CredentialCodec{
		iterations: iterations,
		saltBytes:  saltBytes,
	}, nil
}

// SaltLength returns the length of an encoded salt in characters
func (c *CredentialCodec) SaltLength() int {
	return c.saltBytes * 2
}

// GenerateSalt returns a new random salt encoded as lowercase hex
func (c *CredentialCodec) GenerateSalt() (string, error) {
	buf := make([]byte, c.saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// DeriveHash returns hex(PBKDF2-SHA512(password, salt)). It is deterministic.
func (c *CredentialCodec) DeriveHash(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), c.iterations, KeyBytes, sha512.New)
	return hex.EncodeToString(key)
}

// Compose returns the credential to persist: salt followed by the derived hash
func (c *CredentialCodec) Compose(password, salt string) string {
	return salt + c.DeriveHash(password, salt)
}

// NewCredential generates a fresh salt and composes a credential for password
func (c *CredentialCodec) NewCredential(password string) (string, error) {
	salt, err := c.GenerateSalt()
	if err != nil {
		return "", err
	}
	return c.Compose(password, salt), nil
}

// ExtractSalt returns the salt prefix of a stored credential.
// Values that are too short or whose prefix is not hex are rejected with models.ErrMalformedCredential.
func (c *CredentialCodec) ExtractSalt(stored string) (string, error) {
	n := c.SaltLength()
	if len(stored) < n {
		return "", fmt.Errorf("%w: expected at least %d characters, got %d", models.ErrMalformedCredential, n, len(stored))
	}
	salt := stored[:n]
	if _, err := hex.DecodeString(salt); err != nil {
		return "", fmt.Errorf("%w: salt is not hex", models.ErrMalformedCredential)
	}
	return salt, nil
}

// Verify reports whether password re-derives to exactly the stored credential.
// The comparison runs in constant time; a malformed stored value never verifies.
func (c *CredentialCodec) Verify(password, stored string) bool {
	salt, err := c.ExtractSalt(stored)
	if err != nil {
		return false
	}
	candidate := c.Compose(password, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1
}
