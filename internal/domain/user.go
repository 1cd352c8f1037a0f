package domain

import "time"

// User is the identity and entitlement record.
// PasswordHash never leaves the service layer; see UserView in the transport dto.
type User struct {
	ID              string
	FullName        string
	Email           string
	PasswordHash    string
	ProfileImageURL string
	Role            string

	IsPremium        bool
	PremiumExpiresAt *time.Time

	// Payment provider references.
	CustomerID     string
	SubscriptionID string

	CreatedAt time.Time
	UpdatedAt time.Time
}
