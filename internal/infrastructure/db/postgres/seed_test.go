package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/baechuer/expense-tracker/internal/domain"
)

type seedRepo struct {
	created map[string]domain.User
	saved   []domain.User
}

func (r *seedRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	if _, ok := r.created[u.Email]; ok {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	r.created[u.Email] = u
	return u, nil
}

func (r *seedRepo) SaveEntitlement(ctx context.Context, u domain.User) error {
	r.saved = append(r.saved, u)
	return nil
}

type seedHasher struct{ fail bool }

func (h seedHasher) Hash(pw string) (string, error) {
	if h.fail {
		return "", errors.New("boom")
	}
	return "h:" + pw, nil
}

func TestSeedUsers_IdempotentAndPremium(t *testing.T) {
	repo := &seedRepo{created: map[string]domain.User{}}

	if n := SeedUsers(context.Background(), repo, seedHasher{}, zerolog.Nop()); n != 3 {
		t.Fatalf("created=%d", n)
	}
	if n := SeedUsers(context.Background(), repo, seedHasher{}, zerolog.Nop()); n != 0 {
		t.Fatalf("second run created=%d", n)
	}
	if len(repo.saved) != 1 || !repo.saved[0].IsPremium || repo.saved[0].Email != "premium@example.com" {
		t.Fatalf("unexpected entitlement saves: %+v", repo.saved)
	}
}

func TestSeedUsers_HashFailureSkips(t *testing.T) {
	repo := &seedRepo{created: map[string]domain.User{}}

	if n := SeedUsers(context.Background(), repo, seedHasher{fail: true}, zerolog.Nop()); n != 0 {
		t.Fatalf("created=%d", n)
	}
}
