package accountsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Session is an authenticated handle on the accounts service. It is safe for
// concurrent use.
type Session struct {
	client *SDKClient

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	user      PublicUser
}

// Token returns the raw session token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// ExpiresAt returns when the server will stop accepting the token.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// User returns the public user view captured at login.
func (s *Session) User() PublicUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Me returns the signed-in user's profile and the current session.
func (s *Session) Me(ctx context.Context) (*MeResponse, error) {
	resp, err := s.doSessionRequest(ctx, http.MethodGet, "/v1/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var out MeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = out.User.PublicUser
	s.mu.Unlock()
	return &out, nil
}

// Sessions lists the signed-in user's active sessions.
func (s *Session) Sessions(ctx context.Context) ([]SessionView, error) {
	resp, err := s.doSessionRequest(ctx, http.MethodGet, "/v1/account/sessions", nil)
	if err != nil {
		return nil, err
	}

	var out SessionListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// RequestEmailChange sends an EMAIL_CHANGE code to the new address.
func (s *Session) RequestEmailChange(ctx context.Context, req EmailChangeRequest) error {
	return s.postMessage(ctx, "/v1/account/email", req)
}

// RequestAccountDeletion sends an ACCOUNT_DELETION code to the current address.
func (s *Session) RequestAccountDeletion(ctx context.Context, req DeleteAccountRequest) error {
	return s.postMessage(ctx, "/v1/account/delete", req)
}

// RevokeUserSessions signs out every session of another user. Requires the
// admin role.
func (s *Session) RevokeUserSessions(ctx context.Context, userID string) (int64, error) {
	path := fmt.Sprintf("/v1/admin/users/%s/sessions/revoke", url.PathEscape(userID))
	resp, err := s.doSessionRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return 0, err
	}

	var out RevokeSessionsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return 0, err
	}
	return out.Revoked, nil
}

// Logout revokes the session on the server. It is idempotent.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.postMessage(ctx, "/v1/auth/logout", nil); err != nil {
		return err
	}

	s.mu.Lock()
	s.expiresAt = time.Time{}
	s.mu.Unlock()
	return nil
}

func (s *Session) postMessage(ctx context.Context, path string, payload any) error {
	resp, err := s.doSessionRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}
