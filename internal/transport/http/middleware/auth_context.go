package middleware

import "context"

// Identity is the caller resolved from a verified bearer token.
type Identity struct {
	UserID string
	Role   string
}

type identityKey struct{}

// WithIdentity attaches id to ctx. An identity without a user id is dropped.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if id.UserID == "" {
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// UserIDFromContext is the handler-facing shorthand for IdentityFromContext.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	return id.UserID, ok
}
