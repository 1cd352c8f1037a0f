package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baechuer/expense-tracker/internal/domain"
)

type challengeEntry struct {
	c       domain.OtpChallenge
	evictAt time.Time
}

// ChallengeStore keeps reset codes in process memory.
// Entries are dropped lazily once their retention ttl passes; nothing
// survives a restart.
type ChallengeStore struct {
	mu  sync.Mutex
	m   map[string]challengeEntry
	now func() time.Time
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		m:   make(map[string]challengeEntry),
		now: time.Now,
	}
}

func (s *ChallengeStore) Put(ctx context.Context, email string, c domain.OtpChallenge, ttl time.Duration) error {
	if email == "" {
		return domain.ErrMissingField("email")
	}
	if ttl <= 0 {
		return domain.ErrMissingField("ttl")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[email] = challengeEntry{c: c, evictAt: s.now().Add(ttl)}
	return nil
}

func (s *ChallengeStore) Get(ctx context.Context, email string) (domain.OtpChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[email]
	if !ok {
		return domain.OtpChallenge{}, domain.ErrResetCodeNotFound()
	}
	if s.now().After(e.evictAt) {
		delete(s.m, email)
		return domain.OtpChallenge{}, domain.ErrResetCodeNotFound()
	}
	return e.c, nil
}

func (s *ChallengeStore) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m, email)
	return nil
}
