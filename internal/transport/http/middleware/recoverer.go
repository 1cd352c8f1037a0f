package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/baechuer/expense-tracker/internal/domain"
	"github.com/baechuer/expense-tracker/internal/logger"
)

// Recoverer turns a handler panic into a 500 and keeps the server running.
func Recoverer(writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.WithCtx(r.Context()).Error().
					Str("panic", fmt.Sprint(rec)).
					Bytes("stack", debug.Stack()).
					Msg("handler panic")
				writeErr(w, r, domain.ErrInternal(fmt.Errorf("panic: %v", rec)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
