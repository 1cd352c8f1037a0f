package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/baechuer/expense-tracker/internal/domain"
)

type RegisterInput struct {
	FullName        string
	Email           string
	Password        string
	ProfileImageURL string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)

	switch {
	case in.FullName == "":
		return AuthResult{}, domain.ErrMissingField("fullName")
	case in.Email == "":
		return AuthResult{}, domain.ErrMissingField("email")
	case in.Password == "":
		return AuthResult{}, domain.ErrMissingField("password")
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return AuthResult{}, domain.ErrEmailAlreadyExists()
	} else if !domain.Is(err, "user_not_found") {
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return AuthResult{}, domain.ErrHashFailed(err)
	}

	now := s.now().UTC()
	u := domain.User{
		ID:              uuid.NewString(),
		FullName:        in.FullName,
		Email:           in.Email,
		PasswordHash:    hash,
		ProfileImageURL: strings.TrimSpace(in.ProfileImageURL),
		Role:            string(domain.RoleUser),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return AuthResult{}, err
	}

	tok, err := s.issueToken(created)
	if err != nil {
		return AuthResult{}, err
	}

	s.audit(ctx, "user_registered", map[string]string{"user_id": created.ID, "email": created.Email})
	return AuthResult{User: created, Token: tok}, nil
}
