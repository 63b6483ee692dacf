package accountsdk

import (
	"net/http"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session_token"

// SDKClient is a client for the Scrimflow accounts service. It provides the
// unauthenticated operations and creates a Session on login.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Headers are added to every request. Useful for forwarding the end
	// user's address (X-Forwarded-For) or user agent from a gateway.
	Headers map[string]string
}

// NewSDKClient creates a new accounts service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSessionFromToken wraps an existing session token, for example one read
// from a browser cookie by a backend-for-frontend.
func (c *SDKClient) NewSessionFromToken(token string, expiresAt time.Time) *Session {
	return &Session{client: c, token: token, expiresAt: expiresAt}
}
