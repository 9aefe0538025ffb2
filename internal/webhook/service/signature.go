// Package service implements the webhook trust boundary: signature
// verification and topic classification.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Sign computes the platform's keyed digest for a raw body: HMAC-SHA256 over
// the exact bytes, base64 standard encoding. Used by tests and by outbound
// tooling that needs to produce platform-compatible signatures.
func Sign(rawBody, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(rawBody)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether the signature header matches the keyed
// digest of the raw body. The comparison runs in constant time via hmac.Equal;
// an absent, empty, or wrong-length header is a legitimate negative, never an
// error. Pure function of its inputs.
func VerifySignature(rawBody []byte, signatureHeader string, secret []byte) bool {
	if signatureHeader == "" {
		return false
	}

	candidate, err := base64.StdEncoding.DecodeString(signatureHeader)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	// hmac.Equal is constant time for equal-length inputs and rejects
	// length mismatches without leaking digest bytes.
	return hmac.Equal(expected, candidate)
}
