package billing

import (
	"context"
	"strings"

	"github.com/baechuer/expense-tracker/internal/domain"
)

// CheckoutHandle is what the client needs to open the provider checkout.
type CheckoutHandle struct {
	SubscriptionID string
	KeyID          string
	Status         string
}

// CreateCheckout creates a provider subscription for the user and grants
// premium immediately. A later cancelled webhook revokes it if payment
// never completes.
func (s *Service) CreateCheckout(ctx context.Context, userID string) (CheckoutHandle, error) {
	if s.cfg.PlanID == "" {
		return CheckoutHandle{}, domain.ErrNotConfigured("RAZORPAY_PLAN_ID")
	}
	if userID == "" {
		return CheckoutHandle{}, domain.ErrTokenMissing()
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return CheckoutHandle{}, err
	}

	if u.CustomerID == "" {
		cid, err := s.provider.CreateCustomer(ctx, u.FullName, u.Email)
		if err != nil {
			return CheckoutHandle{}, providerErr(err)
		}
		if err := s.users.SetCustomerID(ctx, u.ID, cid); err != nil {
			return CheckoutHandle{}, err
		}
		u.CustomerID = cid
	}

	sub, err := s.provider.CreateSubscription(ctx, s.cfg.PlanID, u.CustomerID)
	if err != nil {
		return CheckoutHandle{}, providerErr(err)
	}

	u.SubscriptionID = sub.ID
	domain.Activate(&u, nil)
	if err := s.users.SaveEntitlement(ctx, u); err != nil {
		return CheckoutHandle{}, err
	}

	s.audit(ctx, "entitlement_activated", map[string]string{
		"user_id": u.ID, "source": "checkout", "subscription_id": sub.ID,
	})
	return CheckoutHandle{SubscriptionID: sub.ID, KeyID: s.cfg.KeyID, Status: sub.Status}, nil
}

// VerifyCheckout authenticates the client-side payment callback and
// activates premium for the calling user.
func (s *Service) VerifyCheckout(ctx context.Context, userID, paymentID, subscriptionID, signature string) error {
	paymentID = strings.TrimSpace(paymentID)
	subscriptionID = strings.TrimSpace(subscriptionID)
	switch {
	case paymentID == "":
		return domain.ErrMissingField("paymentId")
	case subscriptionID == "":
		return domain.ErrMissingField("subscriptionId")
	case signature == "":
		return domain.ErrMissingField("signature")
	}
	if s.cfg.KeySecret == "" {
		return domain.ErrNotConfigured("RAZORPAY_KEY_SECRET")
	}

	if !s.verifier.Verify(s.cfg.KeySecret, []byte(paymentID+"|"+subscriptionID), signature) {
		s.audit(ctx, "checkout_signature_rejected", map[string]string{"user_id": userID, "subscription_id": subscriptionID})
		return domain.ErrInvalidSignature()
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.SubscriptionID = subscriptionID
	domain.Activate(&u, nil)
	if err := s.users.SaveEntitlement(ctx, u); err != nil {
		return err
	}

	s.audit(ctx, "entitlement_activated", map[string]string{
		"user_id": u.ID, "source": "verify", "subscription_id": subscriptionID, "payment_id": paymentID,
	})
	return nil
}

func providerErr(err error) error {
	if _, ok := domain.As(err); ok {
		return err
	}
	return domain.ErrPaymentProvider(err)
}
