package http_handlers

import (
	"net/http"

	"github.com/baechuer/expense-tracker/internal/application/auth"
	"github.com/baechuer/expense-tracker/internal/domain"
	"github.com/baechuer/expense-tracker/internal/logger"
	"github.com/baechuer/expense-tracker/internal/transport/http/dto"
	"github.com/baechuer/expense-tracker/internal/transport/http/middleware"
	"github.com/baechuer/expense-tracker/internal/transport/http/response"
)

// The public contract reports duplicate emails, bad credentials and unknown
// reset codes as plain 400s.
var (
	writeRegisterErr = response.StatusFor(http.StatusBadRequest, "email_already_exists")
	writeLoginErr    = response.StatusFor(http.StatusBadRequest, "invalid_credentials")
	writeResetErr    = response.StatusFor(http.StatusBadRequest, "otp_not_found")
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Register(r.Context(), auth.RegisterInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Password:        req.Password,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		writeRegisterErr(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("user_registered")

	response.Created(w, h.authData(res))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeLoginErr(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("user_logged_in")

	response.OK(w, h.authData(res))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	u, err := h.svc.GetProfile(r.Context(), uid)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.NewUserView(u))
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.SendOTPRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.RequestReset(r.Context(), req.Email); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.Message(w, "OTP sent successfully to your email.")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.VerifyAndReset(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		writeResetErr(w, r, err)
		return
	}
	response.Message(w, "Password updated successfully.")
}

func (h *AuthHandler) authData(res auth.AuthResult) dto.AuthData {
	return dto.AuthData{
		ID:        res.User.ID,
		User:      dto.NewUserView(res.User),
		Token:     res.Token,
		ExpiresIn: int64(h.svc.AccessTTL().Seconds()),
	}
}
