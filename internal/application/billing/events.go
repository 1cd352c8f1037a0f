package billing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/baechuer/expense-tracker/internal/domain"
)

// Event is one inbound provider notification. The set of variants is closed:
// ChargedEvent, CancelledEvent, PaymentFailedEvent and IgnoredEvent.
type Event interface {
	Kind() string
	apply(ctx context.Context, s *Service) error
}

type ChargedEvent struct {
	SubscriptionID string
	CustomerID     string
	PeriodEnd      *time.Time
}

type CancelledEvent struct {
	SubscriptionID string
	CustomerID     string
}

type PaymentFailedEvent struct {
	SubscriptionID string
	CustomerID     string
}

// IgnoredEvent is any provider event this service does not act on.
type IgnoredEvent struct {
	Name string
}

func (ChargedEvent) Kind() string       { return "charged" }
func (CancelledEvent) Kind() string     { return "cancelled" }
func (PaymentFailedEvent) Kind() string { return "payment_failed" }
func (IgnoredEvent) Kind() string       { return "ignored" }

// Provider envelope: {"event": "...", "payload": {"subscription": {"entity": {...}}}}
type webhookEnvelope struct {
	Event   string `json:"event"`
	Type    string `json:"type"`
	Payload struct {
		Subscription struct {
			Entity subscriptionEntity `json:"entity"`
		} `json:"subscription"`
	} `json:"payload"`
}

type subscriptionEntity struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	CurrentEnd *int64 `json:"current_end"`
}

// ParseEvent decodes a raw webhook body into an Event.
func ParseEvent(raw []byte) (Event, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, domain.ErrInvalidJSON(err)
	}
	name := env.Event
	if name == "" {
		name = env.Type
	}
	ent := env.Payload.Subscription.Entity

	switch name {
	case "subscription.charged", "charged":
		ev := ChargedEvent{SubscriptionID: ent.ID, CustomerID: ent.CustomerID}
		if ent.CurrentEnd != nil && *ent.CurrentEnd > 0 {
			t := time.Unix(*ent.CurrentEnd, 0).UTC()
			ev.PeriodEnd = &t
		}
		return ev, nil
	case "subscription.cancelled", "cancelled":
		return CancelledEvent{SubscriptionID: ent.ID, CustomerID: ent.CustomerID}, nil
	case "payment.failed", "payment-failed":
		return PaymentFailedEvent{SubscriptionID: ent.ID, CustomerID: ent.CustomerID}, nil
	default:
		return IgnoredEvent{Name: name}, nil
	}
}

func (e ChargedEvent) apply(ctx context.Context, s *Service) error {
	u, ok, err := s.userForCustomer(ctx, e.CustomerID)
	if err != nil || !ok {
		return err
	}
	domain.Activate(&u, e.PeriodEnd)
	if err := s.users.SaveEntitlement(ctx, u); err != nil {
		return err
	}
	fields := map[string]string{"user_id": u.ID, "source": "webhook", "subscription_id": e.SubscriptionID}
	if e.PeriodEnd != nil {
		fields["expires_at"] = e.PeriodEnd.Format(time.RFC3339)
	}
	s.audit(ctx, "entitlement_activated", fields)
	return nil
}

func (e CancelledEvent) apply(ctx context.Context, s *Service) error {
	u, ok, err := s.userForCustomer(ctx, e.CustomerID)
	if err != nil || !ok {
		return err
	}
	domain.Deactivate(&u)
	if err := s.users.SaveEntitlement(ctx, u); err != nil {
		return err
	}
	s.audit(ctx, "entitlement_deactivated", map[string]string{"user_id": u.ID, "source": "webhook", "subscription_id": e.SubscriptionID})
	return nil
}

// No dunning: a failed payment is recorded and otherwise ignored.
func (e PaymentFailedEvent) apply(ctx context.Context, s *Service) error {
	s.audit(ctx, "webhook_payment_failed", map[string]string{"customer_id": e.CustomerID, "subscription_id": e.SubscriptionID})
	return nil
}

func (e IgnoredEvent) apply(ctx context.Context, s *Service) error {
	s.audit(ctx, "webhook_ignored", map[string]string{"event": e.Name})
	return nil
}

// userForCustomer resolves the owner of a provider customer id.
// ok=false means no user matched and the event should be dropped.
func (s *Service) userForCustomer(ctx context.Context, customerID string) (domain.User, bool, error) {
	if customerID == "" {
		return domain.User{}, false, nil
	}
	u, err := s.users.GetByCustomerID(ctx, customerID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			s.audit(ctx, "webhook_unmatched_customer", map[string]string{"customer_id": customerID})
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return u, true, nil
}
