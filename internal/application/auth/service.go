package auth

import (
	"context"
	"time"

	"github.com/baechuer/expense-tracker/internal/domain"
)

const (
	defaultAccessTTL = time.Hour
	defaultOTPTTL    = 10 * time.Minute
)

type Service struct {
	users      UserRepo
	hasher     PasswordHasher
	signer     TokenSigner
	challenges ChallengeStore
	notifier   Notifier
	codes      CodeGenerator

	accessTTL time.Duration
	otpTTL    time.Duration
	now       func() time.Time
	audit     func(ctx context.Context, action string, fields map[string]string)
}

type Config struct {
	AccessTTL time.Duration
	OTPTTL    time.Duration
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	signer TokenSigner,
	challenges ChallengeStore,
	notifier Notifier,
	codes CodeGenerator,
	cfg Config,
) *Service {
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	otpTTL := cfg.OTPTTL
	if otpTTL <= 0 {
		otpTTL = defaultOTPTTL
	}
	return &Service{
		users:      users,
		hasher:     hasher,
		signer:     signer,
		challenges: challenges,
		notifier:   notifier,
		codes:      codes,
		accessTTL:  accessTTL,
		otpTTL:     otpTTL,
		now:        time.Now,
		audit:      func(context.Context, string, map[string]string) {},
	}
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  domain.User
	Token string
}

func (s *Service) WithAudit(fn func(ctx context.Context, action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// AccessTTL exposes the configured token lifetime for response DTOs.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

func (s *Service) issueToken(u domain.User) (string, error) {
	tok, err := s.signer.SignAccessToken(u.ID, u.Role, s.accessTTL)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return tok, nil
}
