// Package service implements license key generation.
package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// KeyByteLength is the number of random bytes per key; the encoded key is
// twice this length in hex characters.
const KeyByteLength = 16

// GenerateKey produces an unguessable activation code from a
// cryptographically secure random source: 16 random bytes encoded as
// uppercase hexadecimal for human transcription. Stateless; uniqueness per
// (order, sku) pair is the caller's dedup guarantee, not this function's.
func GenerateKey() (string, error) {
	buf := make([]byte, KeyByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
