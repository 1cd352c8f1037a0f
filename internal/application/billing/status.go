package billing

import (
	"context"
	"time"

	"github.com/baechuer/expense-tracker/internal/domain"
)

type Status struct {
	IsPremium      bool
	ExpiresAt      *time.Time
	Active         bool
	SubscriptionID string
}

func (s *Service) Status(ctx context.Context, userID string) (Status, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	return Status{
		IsPremium:      u.IsPremium,
		ExpiresAt:      u.PremiumExpiresAt,
		Active:         domain.IsActive(u, s.now()),
		SubscriptionID: u.SubscriptionID,
	}, nil
}
