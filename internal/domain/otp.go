package domain

import (
	"crypto/subtle"
	"time"
)

// OtpChallenge is a pending password reset code for one email.
type OtpChallenge struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Matches compares the code in constant time. Exact string equality.
func (c OtpChallenge) Matches(code string) bool {
	return subtle.ConstantTimeCompare([]byte(c.Code), []byte(code)) == 1
}

// Expired reports now > ExpiresAt. A code is still valid at exactly ExpiresAt.
func (c OtpChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
