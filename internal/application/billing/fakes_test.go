package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/baechuer/expense-tracker/internal/domain"
)

type fakeUsers struct {
	mu   sync.Mutex
	byID map[string]domain.User

	getErr  error
	saveErr error
	saves   int
}

func newFakeUsers(us ...domain.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]domain.User{}}
	for _, u := range us {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) get(id string) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.User{}, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUsers) GetByCustomerID(ctx context.Context, customerID string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.User{}, f.getErr
	}
	for _, u := range f.byID {
		if u.CustomerID == customerID {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound()
}

func (f *fakeUsers) SetCustomerID(ctx context.Context, userID, customerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.CustomerID = customerID
	f.byID[userID] = u
	return nil
}

func (f *fakeUsers) SaveEntitlement(ctx context.Context, u domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	cur, ok := f.byID[u.ID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	cur.IsPremium = u.IsPremium
	cur.PremiumExpiresAt = u.PremiumExpiresAt
	cur.SubscriptionID = u.SubscriptionID
	f.byID[u.ID] = cur
	f.saves++
	return nil
}

type fakeProvider struct {
	mu sync.Mutex

	customerErr error
	subErr      error

	customersCreated []string
	subsCreated      []string
	n                int
}

func (p *fakeProvider) CreateCustomer(ctx context.Context, name, email string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.customerErr != nil {
		return "", p.customerErr
	}
	id := "cust_" + email
	p.customersCreated = append(p.customersCreated, id)
	return id, nil
}

func (p *fakeProvider) CreateSubscription(ctx context.Context, planID, customerID string) (Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.subErr != nil {
		return Subscription{}, p.subErr
	}
	p.n++
	id := "sub_" + string(rune('0'+p.n))
	p.subsCreated = append(p.subsCreated, planID+":"+customerID)
	return Subscription{ID: id, Status: "created"}, nil
}

type hmacVerifier struct{}

func (hmacVerifier) Verify(secret string, payload []byte, signature string) bool {
	return hmac.Equal([]byte(sign(secret, payload)), []byte(signature))
}

func sign(secret string, payload []byte) string {
	m := hmac.New(sha256.New, []byte(secret))
	m.Write(payload)
	return hex.EncodeToString(m.Sum(nil))
}

var errBoom = errors.New("boom")

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		KeyID:                   "rzp_test_key",
		KeySecret:               "key-secret",
		PlanID:                  "plan_123",
		WebhookSecret:           "hook-secret",
		RequireWebhookSignature: true,
	}
}

func newTestService(users *fakeUsers, prov *fakeProvider, cfg Config) (*Service, *[]string) {
	var actions []string
	var mu sync.Mutex
	svc := NewService(users, prov, hmacVerifier{}, cfg).
		WithClock(func() time.Time { return fixedNow }).
		WithAudit(func(ctx context.Context, action string, fields map[string]string) {
			mu.Lock()
			defer mu.Unlock()
			actions = append(actions, action)
		})
	return svc, &actions
}
