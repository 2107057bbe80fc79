package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyScopes ctxKey = "scopes"
	CtxKeyClaims ctxKey = "claims" // if you want full jwtx.Claims
)

func scopesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyScopes).([]string); ok {
		return v
	}
	return nil
}

// ScopesFromContext returns the authenticated caller's scopes, nil if the
// request did not pass through AuthnMiddleware.
func ScopesFromContext(ctx context.Context) []string {
	return scopesFromCtx(ctx)
}

// UserIDFromContext returns the authenticated caller's user ID, empty if the
// request did not pass through AuthnMiddleware.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}
