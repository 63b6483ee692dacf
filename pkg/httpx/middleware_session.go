package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/scrimflow/accounts/pkg/slogx"
)

// ErrNoSession is returned by a SessionResolver for tokens that do not map to
// a live session.
var ErrNoSession = errors.New("httpx: no active session")

// SessionResolver maps a raw session token to the principal that owns it.
// Unknown, expired and revoked tokens must all yield ErrNoSession.
type SessionResolver func(ctx context.Context, token string) (Principal, error)

// SessionMiddleware authenticates requests by their session cookie. A cookie
// that no longer resolves is cleared so the client stops sending it.
func SessionMiddleware(resolve SessionResolver, secureCookies bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			token := SessionTokenFromRequest(r)
			if token == "" {
				writeUnauthorized(w)
				return
			}

			p, err := resolve(ctx, token)
			if err != nil {
				if !errors.Is(err, ErrNoSession) {
					log.Error("session lookup failed", "err", err)
					WriteJSON(w, http.StatusInternalServerError, map[string]string{
						"code":    "INTERNAL",
						"message": "internal server error",
					})
					return
				}
				ClearSessionCookie(w, secureCookies)
				writeUnauthorized(w)
				return
			}

			ctx = slogx.With(contextWithPrincipal(ctx, p, token), "user_id", p.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets the request through only when the authenticated principal
// holds one of the given global roles. It must run after SessionMiddleware.
func RequireRole(roles ...string) Middleware {
	want := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		want[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := want[RoleFromContext(r.Context())]; !ok {
				WriteJSON(w, http.StatusForbidden, map[string]string{
					"code":    "FORBIDDEN",
					"message": "insufficient permissions",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"code":    "UNAUTHORIZED",
		"message": "authentication required",
	})
}
