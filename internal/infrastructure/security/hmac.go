package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACVerifier signs and verifies hex HMAC-SHA256 signatures, the scheme
// used by the payment provider for checkout callbacks and webhooks.
type HMACVerifier struct{}

func NewHMACVerifier() HMACVerifier { return HMACVerifier{} }

func (HMACVerifier) Sign(secret string, payload []byte) string {
	m := hmac.New(sha256.New, []byte(secret))
	m.Write(payload)
	return hex.EncodeToString(m.Sum(nil))
}

// Verify compares in constant time against the exact lowercase hex digest.
func (v HMACVerifier) Verify(secret string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	want := v.Sign(secret, payload)
	return hmac.Equal([]byte(want), []byte(signature))
}
