package domain

import "time"

// Activate grants premium access. A nil expiresAt keeps the current expiry.
func Activate(u *User, expiresAt *time.Time) {
	u.IsPremium = true
	if expiresAt != nil {
		t := *expiresAt
		u.PremiumExpiresAt = &t
	}
}

// Deactivate revokes premium access and drops the subscription reference.
func Deactivate(u *User) {
	u.IsPremium = false
	u.PremiumExpiresAt = nil
	u.SubscriptionID = ""
}

// IsActive reports whether the user currently has premium access.
func IsActive(u User, now time.Time) bool {
	if u.IsPremium {
		return true
	}
	return u.PremiumExpiresAt != nil && u.PremiumExpiresAt.After(now)
}
