package auth

import "context"

type principalContextKey struct{}

// ContextWithPrincipal stores the resolved principal in context for
// downstream gates and handlers.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context. Nil when the
// request did not pass the authentication gate.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
