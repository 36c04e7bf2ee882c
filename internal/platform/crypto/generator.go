// File: internal/platform/crypto/generator.go
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// TokenBytes is the entropy behind workspace ids and OAuth states.
const TokenBytes = 32

// GenerateSecureRandomString returns n random bytes, base64url encoded.
func GenerateSecureRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// NewToken returns a fresh TokenBytes-long random string.
func NewToken() (string, error) {
	return GenerateSecureRandomString(TokenBytes)
}

// IsToken reports whether s decodes to exactly TokenBytes bytes.
func IsToken(s string) bool {
	b, err := base64.URLEncoding.DecodeString(s)
	return err == nil && len(b) == TokenBytes
}
