package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/domain"
	"github.com/scrimflow/accounts/internal/accounts/notify"
	"github.com/scrimflow/accounts/internal/accounts/service"
	"github.com/scrimflow/accounts/internal/accounts/store"
	"github.com/scrimflow/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/scrimflow/accounts/pkg/accountsdk"
	"github.com/scrimflow/accounts/pkg/cryptox"
	"github.com/scrimflow/accounts/pkg/httpx"
	"github.com/scrimflow/accounts/pkg/idx"
	"github.com/scrimflow/accounts/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type staticGeo struct{}

func (staticGeo) Lookup(context.Context, string) *domain.Location {
	return &domain.Location{City: "Sydney", Country: "Australia", CountryCode: "AU", Timezone: "Australia/Sydney"}
}

type testServer struct {
	router *Router
	store  store.Store
	mailer *notify.MemoryMailer
	hasher *cryptox.Hasher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	// Lift the strict profile so a single test can exercise a whole flow.
	strict := httpx.StrictLimit
	httpx.StrictLimit = httpx.LenientLimit
	t.Cleanup(func() { httpx.StrictLimit = strict })

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	mailer := &notify.MemoryMailer{}
	hasher := cryptox.NewHasher("test-pepper")
	sessions := &service.SessionService{Store: st}
	verification := &service.VerificationService{Store: st, Mailer: mailer}
	auth := &service.AuthService{
		Store:        st,
		Hasher:       hasher,
		Verification: verification,
		Sessions:     sessions,
		Anomaly:      &service.AnomalyNotifier{Sessions: sessions, Mailer: mailer},
	}

	r := NewRouter("test", st, auth, slogx.Discard())
	r.Geo = staticGeo{}
	r.ApplyRoutes()

	return &testServer{router: r, store: st, mailer: mailer, hasher: hasher}
}

type call struct {
	method  string
	path    string
	body    any
	cookie  *http.Cookie
	headers map[string]string
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.RemoteAddr = "10.0.0.2:40000" // behind the ingress proxy
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == httpx.SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

// signUp registers and verifies an account through the API.
func (s *testServer) signUp(t *testing.T, username, email, password string) string {
	t.Helper()
	rec := s.do(t, call{method: http.MethodPost, path: "/v1/auth/register", body: accountsdk.RegisterRequest{
		Username: username, Email: email, Password: password, ConfirmPassword: password,
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	userID := decode[accountsdk.RegisterResponse](t, rec).UserID

	code, ok := s.mailer.LastCode(email, domain.VerificationEmail)
	require.True(t, ok)
	rec = s.do(t, call{method: http.MethodPost, path: "/v1/auth/verify-email", body: accountsdk.VerifyCodeRequest{Token: code, Email: email}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return userID
}

func (s *testServer) login(t *testing.T, email, password, ip string) *http.Cookie {
	t.Helper()
	rec := s.do(t, call{
		method:  http.MethodPost,
		path:    "/v1/auth/login",
		body:    accountsdk.LoginRequest{Email: email, Password: password},
		headers: map[string]string{"X-Real-IP": ip},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return sessionCookie(t, rec)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodPost, path: "/v1/auth/register", body: accountsdk.RegisterRequest{
		Username: "a!", Email: "not-an-email", Password: "short", ConfirmPassword: "other",
	}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	apiErr := decode[accountsdk.APIError](t, rec)
	require.Equal(t, accountsdk.CodeValidation, apiErr.Code)
	require.Contains(t, apiErr.Details, "username")
	require.Contains(t, apiErr.Details, "email")
	require.Contains(t, apiErr.Details, "password")
	require.Contains(t, apiErr.Details, "confirmPassword")

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", bytes.NewBufferString("{not json"))
	raw := httptest.NewRecorder()
	s.router.ServeHTTP(raw, req)
	require.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestRegisterLoginFlow(t *testing.T) {
	s := newTestServer(t)

	register := func() *httptest.ResponseRecorder {
		return s.do(t, call{
			method:  http.MethodPost,
			path:    "/v1/auth/register",
			body:    accountsdk.RegisterRequest{Username: "alice", Email: "alice@x.com", Password: "password123", ConfirmPassword: "password123"},
			headers: map[string]string{"Accept-Language": "de-DE,de;q=0.9,en;q=0.8"},
		})
	}

	rec := register()
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[accountsdk.RegisterResponse](t, rec)
	require.NotEmpty(t, resp.UserID)
	require.Empty(t, rec.Result().Cookies(), "registration never opens a session")

	rec = register()
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, accountsdk.CodeEmailOrUsernameTaken, decode[accountsdk.APIError](t, rec).Code)

	login := accountsdk.LoginRequest{Email: "alice@x.com", Password: "password123"}
	rec = s.do(t, call{method: http.MethodPost, path: "/v1/auth/login", body: login})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, accountsdk.CodeEmailNotVerified, decode[accountsdk.APIError](t, rec).Code)

	code, ok := s.mailer.LastCode("alice@x.com", domain.VerificationEmail)
	require.True(t, ok)
	rec = s.do(t, call{method: http.MethodPost, path: "/v1/auth/verify-email", body: accountsdk.VerifyCodeRequest{Token: code, Email: "alice@x.com"}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, call{method: http.MethodPost, path: "/v1/auth/verify-email", body: accountsdk.VerifyCodeRequest{Token: code, Email: "alice@x.com"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, accountsdk.CodeInvalidOrExpiredCode, decode[accountsdk.APIError](t, rec).Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/v1/auth/login", body: accountsdk.LoginRequest{Email: "alice@x.com", Password: "wrong-password"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	wrong := decode[accountsdk.APIError](t, rec)
	rec = s.do(t, call{method: http.MethodPost, path: "/v1/auth/login", body: accountsdk.LoginRequest{Email: "nobody@x.com", Password: "password123"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, wrong, decode[accountsdk.APIError](t, rec))

	rec = s.do(t, call{method: http.MethodPost, path: "/v1/auth/login", body: login})
	require.Equal(t, http.StatusOK, rec.Code)
	loginResp := decode[accountsdk.LoginResponse](t, rec)
	require.Equal(t, "alice", loginResp.User.Username)
	require.Equal(t, "user", loginResp.User.Role)

	cookie := sessionCookie(t, rec)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.WithinDuration(t, loginResp.ExpiresAt, cookie.Expires, time.Second)

	rec = s.do(t, call{method: http.MethodGet, path: "/v1/auth/me", cookie: cookie})
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[accountsdk.MeResponse](t, rec)
	require.Equal(t, "alice@x.com", me.User.Email)
	require.True(t, me.User.EmailVerified)
	require.Equal(t, "AU", me.User.Country)
	require.Equal(t, "Australia/Sydney", me.User.Timezone)
	require.Equal(t, "de", me.User.Locale)
	require.True(t, me.Session.Current)
	require.Equal(t, "desktop", me.Session.Device)
	require.NotNil(t, me.Session.Location)
	require.Equal(t, "Sydney", me.Session.Location.City)

	rec = s.do(t, call{method: http.MethodPost, path: "/v1/auth/logout", cookie: cookie})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/v1/auth/me", cookie: cookie})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	cleared := sessionCookie(t, rec)
	require.Empty(t, cleared.Value)

	rec = s.do(t, call{method: http.MethodPost, path: "/v1/auth/logout"})
	require.Equal(t, http.StatusOK, rec.Code, "logout without a session still succeeds")
}

func TestSessionRequired(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/v1/auth/me", "/v1/account/sessions"} {
		rec := s.do(t, call{method: http.MethodGet, path: path})
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
		require.Equal(t, accountsdk.CodeUnauthorized, decode[accountsdk.APIError](t, rec).Code)
	}

	rec := s.do(t, call{method: http.MethodGet, path: "/v1/auth/me", cookie: &http.Cookie{Name: httpx.SessionCookieName, Value: "forged"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResendAndPasswordReset(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "alice", "alice@x.com", "password123")
	cookie := s.login(t, "alice@x.com", "password123", "203.0.113.1")

	rec := s.do(t, call{method: http.MethodPost, path: "/v1/auth/resend-verification", body: accountsdk.ResendVerificationRequest{Email: "alice@x.com", Type: "ACCOUNT_DELETION"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, accountsdk.CodeUnsupportedVerificationType, decode[accountsdk.APIError](t, rec).Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/v1/auth/resend-verification", body: accountsdk.ResendVerificationRequest{Email: "alice@x.com", Type: "MAGIC"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, accountsdk.CodeValidation, decode[accountsdk.APIError](t, rec).Code)

	known := s.do(t, call{method: http.MethodPost, path: "/v1/auth/resend-verification", body: accountsdk.ResendVerificationRequest{Email: "alice@x.com"}})
	unknown := s.do(t, call{method: http.MethodPost, path: "/v1/auth/resend-verification", body: accountsdk.ResendVerificationRequest{Email: "nobody@x.com"}})
	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, known.Body.String(), unknown.Body.String())

	known = s.do(t, call{method: http.MethodPost, path: "/v1/auth/password/forgot", body: accountsdk.ForgotPasswordRequest{Email: "alice@x.com"}})
	unknown = s.do(t, call{method: http.MethodPost, path: "/v1/auth/password/forgot", body: accountsdk.ForgotPasswordRequest{Email: "nobody@x.com"}})
	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, known.Body.String(), unknown.Body.String())

	code, ok := s.mailer.LastCode("alice@x.com", domain.VerificationPasswordReset)
	require.True(t, ok)
	rec = s.do(t, call{method: http.MethodPost, path: "/v1/auth/password/reset", body: accountsdk.ResetPasswordRequest{
		Token: code, Email: "alice@x.com", Password: "new-password-1", ConfirmPassword: "new-password-1",
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, call{method: http.MethodGet, path: "/v1/auth/me", cookie: cookie})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	s.login(t, "alice@x.com", "new-password-1", "203.0.113.1")
}

func TestEmailChangeAndDeletion(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "alice", "alice@x.com", "password123")
	s.signUp(t, "bob", "bob@x.com", "password123")
	cookie := s.login(t, "alice@x.com", "password123", "203.0.113.1")

	rec := s.do(t, call{method: http.MethodPost, path: "/v1/account/email", cookie: cookie, body: accountsdk.EmailChangeRequest{NewEmail: "new@x.com", CurrentPassword: "nope"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, accountsdk.CodeInvalidPassword, decode[accountsdk.APIError](t, rec).Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/v1/account/email", cookie: cookie, body: accountsdk.EmailChangeRequest{NewEmail: "bob@x.com", CurrentPassword: "password123"}})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, accountsdk.CodeEmailTaken, decode[accountsdk.APIError](t, rec).Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/v1/account/email", cookie: cookie, body: accountsdk.EmailChangeRequest{NewEmail: "new@x.com", CurrentPassword: "password123"}})
	require.Equal(t, http.StatusOK, rec.Code)

	code, ok := s.mailer.LastCode("new@x.com", domain.VerificationEmailChange)
	require.True(t, ok)
	rec = s.do(t, call{method: http.MethodPost, path: "/v1/account/email/confirm", body: accountsdk.ConfirmEmailChangeRequest{Token: code, NewEmail: "new@x.com"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/v1/auth/me", cookie: cookie})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "new@x.com", decode[accountsdk.MeResponse](t, rec).User.Email)

	rec = s.do(t, call{method: http.MethodPost, path: "/v1/account/delete", cookie: cookie, body: accountsdk.DeleteAccountRequest{CurrentPassword: "password123"}})
	require.Equal(t, http.StatusOK, rec.Code)

	code, ok = s.mailer.LastCode("new@x.com", domain.VerificationAccountDeletion)
	require.True(t, ok)
	rec = s.do(t, call{method: http.MethodPost, path: "/v1/account/delete/confirm", body: accountsdk.ConfirmDeleteAccountRequest{Token: code, Email: "bob@x.com"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, call{method: http.MethodPost, path: "/v1/account/delete/confirm", body: accountsdk.ConfirmDeleteAccountRequest{Token: code, Email: "new@x.com"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, call{method: http.MethodGet, path: "/v1/auth/me", cookie: cookie})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListSessions(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "alice", "alice@x.com", "password123")
	first := s.login(t, "alice@x.com", "password123", "203.0.113.1")
	s.login(t, "alice@x.com", "password123", "198.51.100.2")

	rec := s.do(t, call{method: http.MethodGet, path: "/v1/account/sessions", cookie: first})
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[accountsdk.SessionListResponse](t, rec)
	require.Len(t, list.Sessions, 2)

	current := 0
	for _, sess := range list.Sessions {
		if sess.Current {
			current++
			require.Equal(t, "203.0.113.1", sess.IPAddress)
		}
	}
	require.Equal(t, 1, current)

	alerts := s.mailer.Alerts()
	require.Len(t, alerts, 1)
	require.Equal(t, "198.51.100.2", alerts[0].Alert.IPAddress)
}

func TestAdminRevokeSessions(t *testing.T) {
	s := newTestServer(t)
	aliceID := s.signUp(t, "alice", "alice@x.com", "password123")
	aliceCookie := s.login(t, "alice@x.com", "password123", "203.0.113.1")

	hash, err := s.hasher.Hash("admin-password")
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, s.store.Users().CreateUser(context.Background(), domain.User{
		ID: idx.New().String(), Email: "admin@x.com", Username: "admin", PasswordHash: hash,
		EmailVerified: true, GlobalRole: domain.RoleAdmin, Timezone: domain.DefaultTimezone,
		Locale: domain.DefaultLocale, CreatedAt: now, UpdatedAt: now,
	}))
	adminCookie := s.login(t, "admin@x.com", "admin-password", "203.0.113.9")

	path := "/v1/admin/users/" + aliceID + "/sessions/revoke"

	rec := s.do(t, call{method: http.MethodPost, path: path, cookie: aliceCookie})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/v1/admin/users/missing/sessions/revoke", cookie: adminCookie})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, call{method: http.MethodPost, path: path, cookie: adminCookie})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, decode[accountsdk.RevokeSessionsResponse](t, rec).Revoked)

	rec = s.do(t, call{method: http.MethodGet, path: "/v1/auth/me", cookie: aliceCookie})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: http.MethodGet, path: "/livez"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[accountsdk.HealthResponse](t, rec).Status)

	rec = s.do(t, call{method: http.MethodGet, path: "/readyz"})
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[accountsdk.HealthResponse](t, rec)
	require.Equal(t, "ok", health.Checks.Database)
	require.Empty(t, health.Checks.Cache)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
