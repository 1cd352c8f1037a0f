package http_handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/baechuer/expense-tracker/internal/application/billing"
	"github.com/baechuer/expense-tracker/internal/domain"
	"github.com/baechuer/expense-tracker/internal/logger"
	"github.com/baechuer/expense-tracker/internal/metrics"
	"github.com/baechuer/expense-tracker/internal/transport/http/dto"
	"github.com/baechuer/expense-tracker/internal/transport/http/middleware"
	"github.com/baechuer/expense-tracker/internal/transport/http/response"
)

const HeaderWebhookSignature = "X-Razorpay-Signature"

type SubscriptionHandler struct {
	svc *billing.Service
}

func NewSubscriptionHandler(svc *billing.Service) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

func (h *SubscriptionHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	handle, err := h.svc.CreateCheckout(r.Context(), uid)
	metrics.CheckoutsTotal.WithLabelValues("create", metrics.Outcome(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.CheckoutData{
		SubscriptionID: handle.SubscriptionID,
		KeyID:          handle.KeyID,
		Status:         handle.Status,
	})
}

func (h *SubscriptionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	var req dto.VerifyRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	err := h.svc.VerifyCheckout(r.Context(), uid, req.PaymentID, req.SubscriptionID, req.Signature)
	metrics.CheckoutsTotal.WithLabelValues("verify", metrics.Outcome(err)).Inc()
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.VerifyData{Verified: true})
}

func (h *SubscriptionHandler) Status(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	st, err := h.svc.Status(r.Context(), uid)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.StatusData{
		IsPremium:      st.IsPremium,
		Active:         st.Active,
		ExpiresAt:      st.ExpiresAt,
		SubscriptionID: st.SubscriptionID,
	})
}

// Webhook must see the request bytes exactly as sent; the signature is
// computed over them.
func (h *SubscriptionHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.WriteError(w, r, domain.ErrInvalidField("body", "too large"))
			return
		}
		response.WriteError(w, r, domain.ErrInvalidJSON(err))
		return
	}

	ev, err := h.svc.HandleWebhook(r.Context(), raw, r.Header.Get(HeaderWebhookSignature))

	kind := "unknown"
	if ev != nil {
		kind = ev.Kind()
	}
	metrics.WebhookEventsTotal.WithLabelValues(kind, metrics.Outcome(err)).Inc()

	if err != nil {
		logger.WithCtx(r.Context()).Warn().Err(err).Str("kind", kind).Msg("webhook rejected")
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().Str("kind", kind).Msg("webhook processed")
	data := dto.WebhookData{Received: true, Event: kind}
	response.OK(w, data)
}
