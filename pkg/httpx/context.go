package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID       ctxKey = "user_id"
	CtxKeyRole         ctxKey = "role"
	CtxKeySessionToken ctxKey = "session_token"
)

// Principal is the authenticated caller attached to a request by
// SessionMiddleware.
type Principal struct {
	UserID string
	Role   string
}

func contextWithPrincipal(ctx context.Context, p Principal, token string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, p.UserID)
	ctx = context.WithValue(ctx, CtxKeyRole, p.Role)
	ctx = context.WithValue(ctx, CtxKeySessionToken, token)
	return ctx
}

// UserIDFromContext returns the authenticated user ID, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyUserID).(string)
	return v, ok && v != ""
}

// RoleFromContext returns the authenticated user's global role, if any.
func RoleFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyRole).(string)
	return v
}

// SessionTokenFromContext returns the raw session token that authenticated
// the request, if any.
func SessionTokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeySessionToken).(string)
	return v
}
