package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/expense-tracker/internal/domain"
)

// UserRepo is an in-process user store for dev and tests.
// It satisfies both the auth and billing persistence ports.
type UserRepo struct {
	mu         sync.RWMutex
	byID       map[string]domain.User
	byEmail    map[string]string // email -> userID
	byCustomer map[string]string // customerID -> userID
	now        func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:       make(map[string]domain.User),
		byEmail:    make(map[string]string),
		byCustomer: make(map[string]string),
		now:        time.Now,
	}
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.byID[id], nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) GetByCustomerID(ctx context.Context, customerID string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCustomer[customerID]
	if !ok || customerID == "" {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.byID[id], nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	if u.ID == "" {
		return domain.User{}, domain.ErrInternal(nil)
	}

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	if u.CustomerID != "" {
		r.byCustomer[u.CustomerID] = u.ID
	}
	return u, nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return r.mutate(userID, func(u *domain.User) {
		u.PasswordHash = newHash
	})
}

func (r *UserRepo) SetCustomerID(ctx context.Context, userID, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	if u.CustomerID != "" {
		delete(r.byCustomer, u.CustomerID)
	}
	u.CustomerID = customerID
	u.UpdatedAt = r.now().UTC()
	r.byID[userID] = u
	if customerID != "" {
		r.byCustomer[customerID] = userID
	}
	return nil
}

func (r *UserRepo) SaveEntitlement(ctx context.Context, in domain.User) error {
	return r.mutate(in.ID, func(u *domain.User) {
		u.IsPremium = in.IsPremium
		u.PremiumExpiresAt = in.PremiumExpiresAt
		u.SubscriptionID = in.SubscriptionID
	})
}

func (r *UserRepo) mutate(userID string, fn func(u *domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	fn(&u)
	u.UpdatedAt = r.now().UTC()
	r.byID[userID] = u
	return nil
}
