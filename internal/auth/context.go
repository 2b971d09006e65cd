package auth

import "context"

type principalContextKey struct{}

// SetPrincipal stores the validated principal on the context for downstream
// consumers. The authentication middleware calls this exactly once per
// request so every handler sees a single consistent view of the caller.
func SetPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// GetPrincipal retrieves the validated principal from the context.
func GetPrincipal(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(Principal)
	return principal, ok
}
