package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/domain"
	"github.com/scrimflow/accounts/internal/accounts/service"
	"github.com/scrimflow/accounts/internal/accounts/store"
	"github.com/scrimflow/accounts/pkg/httpx"
	"github.com/scrimflow/accounts/pkg/slogx"

	_ "github.com/scrimflow/accounts/api/accounts" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService *service.AuthService

	// Geo resolves client locations for new sessions and users. Optional.
	Geo        service.GeoLocator
	GeoTimeout time.Duration

	// Cache is reported by /readyz when set.
	Cache Pinger

	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

func NewRouter(buildVersion string, st store.Store, auth *service.AuthService, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		AuthService:  auth,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccount()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Scrimflow Accounts API
//	@version		0.1.0
//	@description	Account and session service for the Scrimflow scrim-scheduling platform.
//	@description
//	@description				Sessions are opaque bearer tokens carried in the HTTP-only session_token cookie.
//
//	@contact.name				Scrimflow Team
//	@contact.url				https://scrimflow.com
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						session_token
//	@description				Opaque session token set by /v1/auth/login.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// resolveSession adapts the session store to httpx.SessionMiddleware.
func (r *Router) resolveSession(ctx context.Context, token string) (httpx.Principal, error) {
	user, _, err := r.AuthService.GetSessionUser(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return httpx.Principal{}, httpx.ErrNoSession
		}
		return httpx.Principal{}, err
	}
	return httpx.Principal{UserID: user.ID, Role: string(user.GlobalRole)}, nil
}

func (r *Router) session() httpx.Middleware {
	return httpx.SessionMiddleware(r.resolveSession, r.SecureCookies)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Auth:          r.AuthService,
		Metadata:      metadataResolver{geo: r.Geo, timeout: r.GeoTimeout},
		SecureCookies: r.SecureCookies,
	}

	// Credential and code endpoints - strict rate limit by IP + email
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("POST /v1/auth/verify-email",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyEmail),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("POST /v1/auth/resend-verification",
		httpx.Chain(http.HandlerFunc(h.HandleResendVerification),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("POST /v1/auth/password/forgot",
		httpx.Chain(http.HandlerFunc(h.HandleForgotPassword),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("POST /v1/auth/password/reset",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// Logout works with or without a valid session
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			r.session(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAccount() {
	h := &AccountHandler{Auth: r.AuthService, SecureCookies: r.SecureCookies}

	r.Mux.Handle("GET /v1/account/sessions",
		httpx.Chain(http.HandlerFunc(h.HandleListSessions),
			r.session(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// Password-gated requests - strict rate limit by user
	r.Mux.Handle("POST /v1/account/email",
		httpx.Chain(http.HandlerFunc(h.HandleRequestEmailChange),
			r.session(),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/account/delete",
		httpx.Chain(http.HandlerFunc(h.HandleRequestDeletion),
			r.session(),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	// Confirmations are bound to the code and address, not the session
	r.Mux.Handle("POST /v1/account/email/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleConfirmEmailChange),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "newEmail"),
		),
	)
	r.Mux.Handle("POST /v1/account/delete/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleConfirmDeletion),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{Auth: r.AuthService}

	r.Mux.Handle("POST /v1/admin/users/{id}/sessions/revoke",
		httpx.Chain(http.HandlerFunc(h.HandleRevokeSessions),
			r.session(),
			httpx.RequireRole(string(domain.RoleAdmin)),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Cache),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
