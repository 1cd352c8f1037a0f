package billing

import (
	"context"
	"time"
)

type Config struct {
	KeyID         string
	KeySecret     string
	PlanID        string
	WebhookSecret string
	// RequireWebhookSignature rejects webhooks when WebhookSecret is empty.
	RequireWebhookSignature bool
}

type Service struct {
	users    UserRepo
	provider PaymentProvider
	verifier SignatureVerifier
	cfg      Config

	now   func() time.Time
	audit func(ctx context.Context, action string, fields map[string]string)
}

func NewService(users UserRepo, provider PaymentProvider, verifier SignatureVerifier, cfg Config) *Service {
	return &Service{
		users:    users,
		provider: provider,
		verifier: verifier,
		cfg:      cfg,
		now:      time.Now,
		audit:    func(context.Context, string, map[string]string) {},
	}
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
