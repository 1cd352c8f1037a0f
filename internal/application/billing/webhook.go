package billing

import (
	"context"

	"github.com/baechuer/expense-tracker/internal/domain"
)

// HandleWebhook authenticates and applies one provider notification.
// raw must be the exact request bytes. It returns the parsed event for
// logging and metrics.
func (s *Service) HandleWebhook(ctx context.Context, raw []byte, signature string) (Event, error) {
	if s.cfg.WebhookSecret != "" {
		if !s.verifier.Verify(s.cfg.WebhookSecret, raw, signature) {
			s.audit(ctx, "webhook_signature_rejected", nil)
			return nil, domain.ErrInvalidSignature()
		}
	} else if s.cfg.RequireWebhookSignature {
		return nil, domain.ErrNotConfigured("RAZORPAY_WEBHOOK_SECRET")
	} else {
		s.audit(ctx, "webhook_unsigned", nil)
	}

	ev, err := ParseEvent(raw)
	if err != nil {
		return nil, err
	}
	if err := ev.apply(ctx, s); err != nil {
		return ev, err
	}
	return ev, nil
}
