package dto

import "time"

type CheckoutData struct {
	SubscriptionID string `json:"subscriptionId"`
	KeyID          string `json:"keyId"`
	Status         string `json:"status,omitempty"`
}

type VerifyData struct {
	Verified bool `json:"verified"`
}

type WebhookData struct {
	Received bool   `json:"received"`
	Event    string `json:"event,omitempty"`
}

type StatusData struct {
	IsPremium      bool       `json:"isPremium"`
	Active         bool       `json:"active"`
	ExpiresAt      *time.Time `json:"premiumExpiresAt,omitempty"`
	SubscriptionID string     `json:"subscriptionId,omitempty"`
}

type FeaturesData struct {
	Features []string `json:"features"`
}
