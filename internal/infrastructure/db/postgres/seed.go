package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/baechuer/expense-tracker/internal/domain"
)

type SeederHasher interface {
	Hash(password string) (string, error)
}

type SeederRepo interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
	SaveEntitlement(ctx context.Context, u domain.User) error
}

// SeedUsers inserts the local demo accounts. Existing emails are skipped.
func SeedUsers(ctx context.Context, repo SeederRepo, hasher SeederHasher, lg zerolog.Logger) int {
	type seedUser struct {
		Name    string
		Email   string
		Role    string
		Pass    string
		Premium bool
	}

	seeds := []seedUser{
		{Name: "Admin", Email: "admin@example.com", Role: "admin", Pass: "AdminPassword123!"},
		{Name: "Free User", Email: "user@example.com", Role: "user", Pass: "UserPassword123!"},
		{Name: "Premium User", Email: "premium@example.com", Role: "user", Pass: "PremiumPassword123!", Premium: true},
	}

	created := 0
	for _, s := range seeds {
		hash, err := hasher.Hash(s.Pass)
		if err != nil {
			lg.Warn().Err(err).Str("email", s.Email).Msg("seed: hash failed")
			continue
		}

		now := time.Now().UTC()
		u, err := repo.Create(ctx, domain.User{
			ID:           uuid.NewString(),
			FullName:     s.Name,
			Email:        s.Email,
			PasswordHash: hash,
			Role:         s.Role,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			// duplicates are fine on re-run
			continue
		}
		if s.Premium {
			domain.Activate(&u, nil)
			if err := repo.SaveEntitlement(ctx, u); err != nil {
				lg.Warn().Err(err).Str("email", s.Email).Msg("seed: entitlement failed")
			}
		}
		created++
	}

	lg.Info().Int("created", created).Msg("seed: users seeded")
	return created
}
