package accountsdk

import (
	"context"
	"errors"
	"net/http"
)

// ErrMissingSessionCookie is returned by Login when the server accepted the
// credentials but did not set a session cookie.
var ErrMissingSessionCookie = errors.New("login response did not set a session cookie")

// Register creates an account. The account cannot log in until the emailed
// verification code is redeemed with VerifyEmail.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/register", req)
	if err != nil {
		return nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a Session.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/login", req)
	if err != nil {
		return nil, err
	}
	cookie := sessionCookie(resp)

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	if cookie == nil || cookie.Value == "" {
		return nil, ErrMissingSessionCookie
	}

	return &Session{
		client:    c,
		token:     cookie.Value,
		expiresAt: out.ExpiresAt,
		user:      out.User,
	}, nil
}

// VerifyEmail redeems an EMAIL_VERIFICATION code.
func (c *SDKClient) VerifyEmail(ctx context.Context, req VerifyCodeRequest) error {
	return c.postMessage(ctx, "/v1/auth/verify-email", req)
}

// ResendVerification asks for a fresh code. The response is the same whether
// or not a code was actually sent.
func (c *SDKClient) ResendVerification(ctx context.Context, req ResendVerificationRequest) error {
	return c.postMessage(ctx, "/v1/auth/resend-verification", req)
}

// ForgotPassword requests a PASSWORD_RESET code.
func (c *SDKClient) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	return c.postMessage(ctx, "/v1/auth/password/forgot", req)
}

// ResetPassword redeems a PASSWORD_RESET code and signs out every session.
func (c *SDKClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	return c.postMessage(ctx, "/v1/auth/password/reset", req)
}

// ConfirmEmailChange redeems an EMAIL_CHANGE code sent to the new address.
func (c *SDKClient) ConfirmEmailChange(ctx context.Context, req ConfirmEmailChangeRequest) error {
	return c.postMessage(ctx, "/v1/account/email/confirm", req)
}

// ConfirmAccountDeletion redeems an ACCOUNT_DELETION code.
func (c *SDKClient) ConfirmAccountDeletion(ctx context.Context, req ConfirmDeleteAccountRequest) error {
	return c.postMessage(ctx, "/v1/account/delete/confirm", req)
}

func (c *SDKClient) postMessage(ctx context.Context, path string, payload any) error {
	resp, err := c.doRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}
