package auth

import (
	"context"
	"strings"

	"github.com/baechuer/expense-tracker/internal/domain"
)

// Login authenticates a user and issues a token.
// IMPORTANT: must not leak whether the email exists (avoid user enumeration).
func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(email)

	if email == "" {
		return AuthResult{}, domain.ErrMissingField("email")
	}
	if password == "" {
		return AuthResult{}, domain.ErrMissingField("password")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if de, ok := domain.As(err); ok && de.Kind != domain.KindNotFound {
			return AuthResult{}, err
		}
		// Hide not-found behind invalid credentials
		s.audit(ctx, "login_failed", map[string]string{"email": email, "reason": "unknown_email"})
		return AuthResult{}, domain.ErrInvalidCredentials()
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		s.audit(ctx, "login_failed", map[string]string{"email": email, "reason": "bad_password"})
		return AuthResult{}, domain.ErrInvalidCredentials()
	}

	tok, err := s.issueToken(u)
	if err != nil {
		return AuthResult{}, err
	}

	s.audit(ctx, "login_success", map[string]string{"user_id": u.ID, "email": u.Email})
	return AuthResult{User: u, Token: tok}, nil
}
