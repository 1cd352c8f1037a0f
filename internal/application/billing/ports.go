package billing

import (
	"context"

	"github.com/baechuer/expense-tracker/internal/domain"
)

/*
UserRepo
--------
Persistence port for the entitlement side of users.
SaveEntitlement writes premium flag, expiry and subscription id in a
single statement so an event never leaves a half-applied state.
*/
type UserRepo interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
	// GetByCustomerID returns domain.ErrUserNotFound when no user owns the id.
	GetByCustomerID(ctx context.Context, customerID string) (domain.User, error)
	SetCustomerID(ctx context.Context, userID, customerID string) error
	SaveEntitlement(ctx context.Context, u domain.User) error
}

/*
PaymentProvider
---------------
The subset of the payment provider API used for checkout.
*/
type PaymentProvider interface {
	CreateCustomer(ctx context.Context, name, email string) (customerID string, err error)
	CreateSubscription(ctx context.Context, planID, customerID string) (Subscription, error)
}

type Subscription struct {
	ID     string
	Status string
}

// SignatureVerifier checks hex HMAC signatures in constant time.
type SignatureVerifier interface {
	Verify(secret string, payload []byte, signature string) bool
}
