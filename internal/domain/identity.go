package domain

import "context"

// Identity is the authenticated caller, as supplied by the auth layer.
type Identity struct {
	Subject string `json:"subject"`
}

type identityKey struct{}

// WithIdentity attaches the caller identity to a context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extracts the caller identity from a context.
// The second return is false when no identity is present.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.Subject == "" {
		return Identity{}, false
	}
	return id, true
}
