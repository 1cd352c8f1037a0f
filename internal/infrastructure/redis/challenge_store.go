package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/expense-tracker/internal/domain"
)

// ChallengeStore keeps password reset codes in redis, one key per email.
type ChallengeStore struct {
	rdb    *goredis.Client
	prefix string
}

func NewChallengeStore(c *Client) *ChallengeStore {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &ChallengeStore{
		rdb:    rdb,
		prefix: "otp:reset:",
	}
}

func (s *ChallengeStore) Put(ctx context.Context, email string, c domain.OtpChallenge, ttl time.Duration) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}
	if ttl <= 0 {
		return domain.ErrMissingField("ttl")
	}
	if s.rdb == nil {
		return errors.New("redis challenge store not configured")
	}

	b, err := json.Marshal(c)
	if err != nil {
		return domain.ErrInternal(err)
	}
	// overwrite: latest request wins
	if err := s.rdb.Set(ctx, s.key(email), b, ttl).Err(); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}

func (s *ChallengeStore) Get(ctx context.Context, email string) (domain.OtpChallenge, error) {
	if s.rdb == nil {
		return domain.OtpChallenge{}, errors.New("redis challenge store not configured")
	}

	raw, err := s.rdb.Get(ctx, s.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.OtpChallenge{}, domain.ErrResetCodeNotFound()
		}
		return domain.OtpChallenge{}, domain.ErrRedisUnavailable(err)
	}

	var c domain.OtpChallenge
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.OtpChallenge{}, domain.ErrInternal(fmt.Errorf("challenge decode: %w", err))
	}
	return c, nil
}

func (s *ChallengeStore) Delete(ctx context.Context, email string) error {
	if s.rdb == nil {
		return errors.New("redis challenge store not configured")
	}
	if err := s.rdb.Del(ctx, s.key(email)).Err(); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}

func (s *ChallengeStore) key(email string) string {
	return s.prefix + strings.TrimSpace(email)
}
