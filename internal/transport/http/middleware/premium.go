package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/expense-tracker/internal/domain"
)

type UserLoader interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
}

// RequirePremium admits the request only while the caller's entitlement is
// active. It must run after Auth.
func RequirePremium(users UserLoader, now func() time.Time, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := UserIDFromContext(r.Context())
			if !ok {
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}

			u, err := users.GetByID(r.Context(), uid)
			if err != nil {
				if domain.Is(err, "user_not_found") {
					// token outlived its account
					writeErr(w, r, domain.ErrTokenInvalid())
					return
				}
				writeErr(w, r, err)
				return
			}

			if !domain.IsActive(u, now()) {
				writeErr(w, r, domain.ErrPremiumRequired())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
