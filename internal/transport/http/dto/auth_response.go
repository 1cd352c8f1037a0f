package dto

import (
	"time"

	"github.com/baechuer/expense-tracker/internal/domain"
)

// UserView is the public user shape. It never carries the password hash.
type UserView struct {
	ID               string     `json:"id"`
	FullName         string     `json:"fullName"`
	Email            string     `json:"email"`
	ProfileImageURL  string     `json:"profileImageUrl,omitempty"`
	Role             string     `json:"role"`
	IsPremium        bool       `json:"isPremium"`
	PremiumExpiresAt *time.Time `json:"premiumExpiresAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:               u.ID,
		FullName:         u.FullName,
		Email:            u.Email,
		ProfileImageURL:  u.ProfileImageURL,
		Role:             u.Role,
		IsPremium:        u.IsPremium,
		PremiumExpiresAt: u.PremiumExpiresAt,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

// AuthData is returned by register and login.
type AuthData struct {
	ID        string   `json:"id"`
	User      UserView `json:"user"`
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expiresIn"`
}
