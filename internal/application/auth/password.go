package auth

import (
	"context"
	"strings"

	"github.com/baechuer/expense-tracker/internal/domain"
)

// retentionFactor keeps challenges in the backing store past their expiry
// so a late attempt is reported as expired rather than not found.
const retentionFactor = 2

// RequestReset issues a 6-digit code for email and delivers it synchronously.
// Unknown emails fail with NotFound.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.codes.NewCode()
	if err != nil {
		return domain.ErrRandomFailed(err)
	}

	c := domain.OtpChallenge{
		Email:     u.Email,
		Code:      code,
		ExpiresAt: s.now().Add(s.otpTTL),
	}
	if err := s.challenges.Put(ctx, u.Email, c, retentionFactor*s.otpTTL); err != nil {
		return err
	}

	if err := s.notifier.SendResetCode(ctx, ResetCodeMessage{
		Email:     u.Email,
		FullName:  u.FullName,
		Code:      code,
		ExpiresIn: s.otpTTL,
	}); err != nil {
		derr := err
		if !domain.Is(err, "delivery_failed") {
			derr = domain.ErrDeliveryFailed(err)
		}
		s.audit(ctx, "password_reset_delivery_failed", map[string]string{"email": u.Email, "code": domainCode(derr)})
		return derr
	}

	s.audit(ctx, "password_reset_requested", map[string]string{"user_id": u.ID, "email": u.Email})
	return nil
}

// VerifyAndReset checks the pending code for email and replaces the password.
//
// Order: missing challenge, code mismatch, expiry (deletes), unknown user,
// same password. The challenge is deleted only on success or expiry.
func (s *Service) VerifyAndReset(ctx context.Context, email, code, newPassword string) error {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return domain.ErrMissingField("email")
	case code == "":
		return domain.ErrMissingField("otp")
	case newPassword == "":
		return domain.ErrMissingField("newPassword")
	}

	c, err := s.challenges.Get(ctx, email)
	if err != nil {
		return err
	}

	if !c.Matches(code) {
		return domain.ErrInvalidResetCode()
	}

	if c.Expired(s.now()) {
		if err := s.challenges.Delete(ctx, email); err != nil {
			return err
		}
		return domain.ErrResetCodeExpired()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(u.PasswordHash, newPassword); err == nil {
		return domain.ErrSamePassword()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.ErrHashFailed(err)
	}

	if err := s.users.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return err
	}

	if err := s.challenges.Delete(ctx, email); err != nil {
		return err
	}

	s.audit(ctx, "password_reset", map[string]string{"user_id": u.ID})
	return nil
}
