package context

import (
	"context"

	"github.com/google/uuid"
)

// HeaderRequestID carries the correlation id in both directions.
const HeaderRequestID = "X-Request-Id"

const maxRequestIDLen = 128

type requestIDKey struct{}

// WithRequestID tags ctx with id. An empty id leaves ctx untouched.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// AcceptRequestID keeps a client supplied id when it is short visible ASCII
// and mints a fresh uuid otherwise.
func AcceptRequestID(raw string) string {
	if raw == "" || len(raw) > maxRequestIDLen {
		return uuid.NewString()
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] <= ' ' || raw[i] > '~' {
			return uuid.NewString()
		}
	}
	return raw
}
