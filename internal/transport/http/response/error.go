package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baechuer/expense-tracker/internal/domain"
	"github.com/baechuer/expense-tracker/internal/logger"
)

// ErrorBody mirrors the message at the top level for clients that only read "message".
type ErrorBody struct {
	Message string       `json:"message"`
	Error   ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteError converts a domain error into a consistent JSON HTTP error response.
// Non-domain errors are treated as internal errors (500) without leaking details.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	WriteErrorStatus(w, r, 0, err)
}

// WriteErrorStatus is WriteError with an explicit status; 0 derives it from the error kind.
func WriteErrorStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	code := "internal_error"
	message := "internal error"
	kindStatus := http.StatusInternalServerError
	var meta map[string]string

	var de *domain.Error
	if errors.As(err, &de) {
		kindStatus = statusFromKind(de.Kind)
		code = de.Code
		message = de.Message
		meta = de.Meta
	}
	if status == 0 {
		status = kindStatus
	}

	if status >= http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error().
			Err(err).
			Str("code", code).
			Str("path", r.URL.Path).
			Msg("request failed")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorBody{
		Message: message,
		Error: ErrorPayload{
			Code:      code,
			Message:   message,
			Meta:      meta,
			RequestID: RequestIDFromContext(r),
		},
	})
}

// StatusFor overrides the status of the listed error codes and leaves the rest
// to WriteError.
func StatusFor(status int, codes ...string) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		for _, c := range codes {
			if domain.Is(err, c) {
				WriteErrorStatus(w, r, status, err)
				return
			}
		}
		WriteError(w, r, err)
	}
}

// statusFromKind maps domain error kinds to HTTP status codes.
func statusFromKind(kind domain.ErrKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindInfrastructure:
		return http.StatusServiceUnavailable
	case domain.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
