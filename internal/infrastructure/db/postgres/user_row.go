package postgres

import (
	"database/sql"
	"time"

	"github.com/baechuer/expense-tracker/internal/domain"
)

const userColumns = `id, full_name, email, password_hash, profile_image_url, role,
is_premium, premium_expires_at, razorpay_customer_id, razorpay_subscription_id, created_at, updated_at`

type userRow struct {
	ID               string
	FullName         string
	Email            string
	PasswordHash     string
	ProfileImageURL  string
	Role             string
	IsPremium        bool
	PremiumExpiresAt sql.NullTime
	CustomerID       sql.NullString
	SubscriptionID   sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (userRow, error) {
	var ur userRow
	err := s.Scan(
		&ur.ID,
		&ur.FullName,
		&ur.Email,
		&ur.PasswordHash,
		&ur.ProfileImageURL,
		&ur.Role,
		&ur.IsPremium,
		&ur.PremiumExpiresAt,
		&ur.CustomerID,
		&ur.SubscriptionID,
		&ur.CreatedAt,
		&ur.UpdatedAt,
	)
	return ur, err
}

func toDomainUser(ur userRow) domain.User {
	u := domain.User{
		ID:              ur.ID,
		FullName:        ur.FullName,
		Email:           ur.Email,
		PasswordHash:    ur.PasswordHash,
		ProfileImageURL: ur.ProfileImageURL,
		Role:            ur.Role,
		IsPremium:       ur.IsPremium,
		CustomerID:      ur.CustomerID.String,
		SubscriptionID:  ur.SubscriptionID.String,
		CreatedAt:       ur.CreatedAt,
		UpdatedAt:       ur.UpdatedAt,
	}
	if ur.PremiumExpiresAt.Valid {
		t := ur.PremiumExpiresAt.Time.UTC()
		u.PremiumExpiresAt = &t
	}
	return u
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
