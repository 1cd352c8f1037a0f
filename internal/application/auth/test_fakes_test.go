package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/expense-tracker/internal/domain"
)

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID    map[string]domain.User
	byEmail map[string]domain.User

	// injected errors (if set, method returns error)
	getByIDErr    error
	getByEmailErr error
	createErr     error
	updatePwdErr  error

	updatedPwd []struct{ id, hash string }
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]domain.User{},
		byEmail: map[string]domain.User{},
	}
}

func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updatePwdErr != nil {
		return f.updatePwdErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordHash = newHash
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	f.updatedPwd = append(f.updatedPwd, struct{ id, hash string }{userID, newHash})
	return nil
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if h.compareFn != nil {
		return h.compareFn(hash, password)
	}
	if hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

type fakeSigner struct {
	signFn  func(userID, role string, ttl time.Duration) (string, error)
	lastTTL time.Duration
}

func (s *fakeSigner) SignAccessToken(userID string, role string, ttl time.Duration) (string, error) {
	s.lastTTL = ttl
	if s.signFn != nil {
		return s.signFn(userID, role, ttl)
	}
	return fmt.Sprintf("jwt(%s,%s)", userID, role), nil
}

func (s *fakeSigner) VerifyAccessToken(token string) (TokenClaims, error) {
	return TokenClaims{}, nil
}

type fakeChallenges struct {
	mu sync.Mutex

	byEmail map[string]domain.OtpChallenge

	putErr    error
	getErr    error
	deleteErr error

	lastTTL time.Duration
	deleted []string
}

func newFakeChallenges() *fakeChallenges {
	return &fakeChallenges{byEmail: map[string]domain.OtpChallenge{}}
}

func (f *fakeChallenges) Put(ctx context.Context, email string, c domain.OtpChallenge, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.putErr != nil {
		return f.putErr
	}
	f.byEmail[email] = c
	f.lastTTL = ttl
	return nil
}

func (f *fakeChallenges) Get(ctx context.Context, email string) (domain.OtpChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return domain.OtpChallenge{}, f.getErr
	}
	c, ok := f.byEmail[email]
	if !ok {
		return domain.OtpChallenge{}, domain.ErrResetCodeNotFound()
	}
	return c, nil
}

func (f *fakeChallenges) Delete(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.byEmail, email)
	f.deleted = append(f.deleted, email)
	return nil
}

func (f *fakeChallenges) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byEmail)
}

type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []ResetCodeMessage
}

func (n *fakeNotifier) SendResetCode(ctx context.Context, msg ResetCodeMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

// fakeCodes returns codes in sequence, repeating the last one.
type fakeCodes struct {
	codes []string
	err   error
	i     int
}

func (c *fakeCodes) NewCode() (string, error) {
	if c.err != nil {
		return "", c.err
	}
	if len(c.codes) == 0 {
		return "123456", nil
	}
	code := c.codes[c.i]
	if c.i < len(c.codes)-1 {
		c.i++
	}
	return code, nil
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testDeps struct {
	users      *fakeUserRepo
	hasher     *fakeHasher
	signer     *fakeSigner
	challenges *fakeChallenges
	notifier   *fakeNotifier
	codes      *fakeCodes
	clock      *testClock

	mu      sync.Mutex
	audited []auditEntry
}

func (d *testDeps) actions() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.audited))
	for _, a := range d.audited {
		out = append(out, a.action)
	}
	return out
}

func newSvcForTest(t *testing.T) (*Service, *testDeps) {
	t.Helper()

	d := &testDeps{
		users:      newFakeUserRepo(),
		hasher:     &fakeHasher{},
		signer:     &fakeSigner{},
		challenges: newFakeChallenges(),
		notifier:   &fakeNotifier{},
		codes:      &fakeCodes{},
		clock:      &testClock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)},
	}

	svc := NewService(d.users, d.hasher, d.signer, d.challenges, d.notifier, d.codes, Config{
		AccessTTL: time.Hour,
		OTPTTL:    10 * time.Minute,
	}).WithClock(d.clock.Now).WithAudit(func(ctx context.Context, action string, fields map[string]string) {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.audited = append(d.audited, auditEntry{action: action, fields: fields})
	})

	return svc, d
}
