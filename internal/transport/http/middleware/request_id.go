package middleware

import (
	"net/http"

	appCtx "github.com/baechuer/expense-tracker/internal/pkg/context"
)

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := appCtx.AcceptRequestID(r.Header.Get(appCtx.HeaderRequestID))
		w.Header().Set(appCtx.HeaderRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(appCtx.WithRequestID(r.Context(), reqID)))
	})
}
