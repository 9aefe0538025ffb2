package service

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature_RoundTrip(t *testing.T) {
	secrets := [][]byte{
		[]byte("shpss_secret"),
		[]byte(""),
		[]byte("another-secret-with-more-entropy-0123456789"),
	}
	bodies := [][]byte{
		[]byte(`{"id":1}`),
		[]byte(""),
		[]byte(`{"id":820982911946154508,"email":"jon@example.com","line_items":[]}`),
	}

	for _, secret := range secrets {
		for _, body := range bodies {
			assert.True(t, VerifySignature(body, Sign(body, secret), secret))
		}
	}
}

func TestVerifySignature_SingleBitMutation(t *testing.T) {
	secret := []byte("shpss_secret")
	body := make([]byte, 64)
	_, err := rand.Read(body)
	require.NoError(t, err)

	signature := Sign(body, secret)

	for i := range body {
		for bit := uint(0); bit < 8; bit++ {
			mutated := make([]byte, len(body))
			copy(mutated, body)
			mutated[i] ^= 1 << bit

			assert.False(t, VerifySignature(mutated, signature, secret),
				"mutation at byte %d bit %d must invalidate the signature", i, bit)
		}
	}
}

func TestVerifySignature_HeaderNegatives(t *testing.T) {
	secret := []byte("shpss_secret")
	body := []byte(`{"id":1}`)
	valid := Sign(body, secret)

	tests := []struct {
		name   string
		header string
	}{
		{"absent header", ""},
		{"not base64", "!!!not-base64!!!"},
		{"truncated digest", valid[:len(valid)-8]},
		{"wrong secret", Sign(body, []byte("other-secret"))},
		{"signature for different body", Sign([]byte(`{"id":2}`), secret)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, VerifySignature(body, tt.header, secret))
		})
	}
}

// The comparison must not depend on where the first differing byte occurs.
// hmac.Equal guarantees that; this pins down that mismatches at every digest
// position produce the same negative result.
func TestVerifySignature_MismatchPositionIndependence(t *testing.T) {
	secret := []byte("shpss_secret")
	body := []byte(`{"id":1}`)

	digest, err := base64.StdEncoding.DecodeString(Sign(body, secret))
	require.NoError(t, err)

	for i := range digest {
		tampered := make([]byte, len(digest))
		copy(tampered, digest)
		tampered[i] ^= 0xff

		header := base64.StdEncoding.EncodeToString(tampered)
		assert.False(t, VerifySignature(body, header, secret))
	}
}
