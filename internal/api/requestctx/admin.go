package requestctx

import "context"

// AdminClaims captures the authenticated admin derived by the auth middleware.
type AdminClaims struct {
	ID       int64
	Username string
}

type contextKey string

const adminContextKey contextKey = "portal-admin"

// WithAdminClaims attaches admin data to the context for downstream handlers.
func WithAdminClaims(ctx context.Context, claims AdminClaims) context.Context {
	return context.WithValue(ctx, adminContextKey, claims)
}

// AdminFromContext fetches admin claims, returning zero value if missing.
func AdminFromContext(ctx context.Context) AdminClaims {
	if ctx == nil {
		return AdminClaims{}
	}
	claims, _ := ctx.Value(adminContextKey).(AdminClaims)
	return claims
}
