package auth

import "context"

// Identity is the verified caller attached to a request by the auth gateway.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type contextKey string

const identityContextKey contextKey = "identity"

// ContextWithIdentity adds the identity to ctx.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext retrieves the identity stored by ContextWithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}

// UserIDFromContext returns the caller's user id, or "" when unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}
