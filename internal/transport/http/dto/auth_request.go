package dto

import "strings"

// -------- Core auth --------

type RegisterRequest struct {
	FullName        string `json:"fullName" validate:"required,max=120"`
	Email           string `json:"email" validate:"required,max=254"`
	Password        string `json:"password" validate:"required,max=72"`
	ProfileImageURL string `json:"profileImageUrl" validate:"omitempty,url,max=2048"`
}

func (r *RegisterRequest) Validate() error {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	r.ProfileImageURL = strings.TrimSpace(r.ProfileImageURL)
	return validateStruct(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateStruct(r)
}

// -------- Password reset --------

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

func (r *SendOTPRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateStruct(r)
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,max=254"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=72"`
}

func (r *ResetPasswordRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateStruct(r)
}
