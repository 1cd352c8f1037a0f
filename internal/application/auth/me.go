package auth

import (
	"context"

	"github.com/baechuer/expense-tracker/internal/domain"
)

func (s *Service) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, domain.ErrTokenMissing()
	}
	return s.users.GetByID(ctx, userID)
}
