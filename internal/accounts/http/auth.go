package http

import (
	"net/http"

	"github.com/scrimflow/accounts/internal/accounts/domain"
	"github.com/scrimflow/accounts/internal/accounts/service"
	"github.com/scrimflow/accounts/pkg/accountsdk"
	"github.com/scrimflow/accounts/pkg/httpx"
)

// AuthHandler serves the public sign-up, sign-in and code redemption
// endpoints.
type AuthHandler struct {
	Auth          *service.AuthService
	Metadata      metadataResolver
	SecureCookies bool
}

// HandleRegister creates an account.
//
//	@Summary		Register
//	@Description	Creates an unverified account and emails an EMAIL_VERIFICATION code. No session is created.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.RegisterRequest	true	"Registration details"
//	@Success		201		{object}	accountsdk.RegisterResponse
//	@Failure		400		{object}	accountsdk.APIError	"Validation failed"
//	@Failure		409		{object}	accountsdk.APIError	"Email or username already taken"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	userID, err := h.Auth.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}, h.Metadata.resolve(r, true))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, accountsdk.RegisterResponse{
		Message: "Account created. Please check your emails for the verification code.",
		UserID:  userID,
	})
}

// HandleLogin signs a user in and sets the session cookie.
//
//	@Summary		Login
//	@Description	Checks credentials and opens a session. Unknown emails and wrong passwords fail identically.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	accountsdk.LoginResponse
//	@Failure		401		{object}	accountsdk.APIError	"Invalid email or password"
//	@Failure		403		{object}	accountsdk.APIError	"Email not verified (code EMAIL_NOT_VERIFIED)"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	res, err := h.Auth.Login(r.Context(), req.Email, req.Password, h.Metadata.resolve(r, true))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.SetSessionCookie(w, res.Session.Token, res.Session.ExpiresAt, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, accountsdk.LoginResponse{
		Message:   "Logged in successfully",
		User:      publicUserView(res.User),
		ExpiresAt: res.Session.ExpiresAt,
	})
}

// HandleLogout revokes the current session, if any, and clears the cookie.
//
//	@Summary		Logout
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	accountsdk.MessageResponse
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context(), httpx.SessionTokenFromRequest(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.ClearSessionCookie(w, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{Message: "Logged out successfully"})
}

// HandleVerifyEmail redeems an EMAIL_VERIFICATION code.
//
//	@Summary		Verify email
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.VerifyCodeRequest	true	"Code and email"
//	@Success		200		{object}	accountsdk.MessageResponse
//	@Failure		400		{object}	accountsdk.APIError	"Invalid or expired code"
//	@Router			/v1/auth/verify-email [post].
func (h *AuthHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.VerifyCodeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := h.Auth.VerifyEmail(r.Context(), req.Token, req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{Message: "Email verified successfully"})
}

// HandleResendVerification reissues a code. The response never reveals
// whether the account exists.
//
//	@Summary		Resend verification code
//	@Description	Type defaults to EMAIL_VERIFICATION. ACCOUNT_DELETION codes cannot be resent.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.ResendVerificationRequest	true	"Email and purpose"
//	@Success		200		{object}	accountsdk.MessageResponse
//	@Failure		400		{object}	accountsdk.APIError	"Unsupported verification type"
//	@Router			/v1/auth/resend-verification [post].
func (h *AuthHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.ResendVerificationRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := h.Auth.ResendVerification(r.Context(), req.Email, domain.VerificationType(req.Type)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{Message: "If account exists and is unverified, code sent."})
}

// HandleForgotPassword sends a PASSWORD_RESET code when the account exists.
//
//	@Summary		Request password reset
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.ForgotPasswordRequest	true	"Account email"
//	@Success		200		{object}	accountsdk.MessageResponse
//	@Router			/v1/auth/password/forgot [post].
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.ForgotPasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := h.Auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{Message: "If an account with that email exists, a reset code has been sent."})
}

// HandleResetPassword sets a new password and signs the user out everywhere.
//
//	@Summary		Reset password
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.ResetPasswordRequest	true	"Code, email and new password"
//	@Success		200		{object}	accountsdk.MessageResponse
//	@Failure		400		{object}	accountsdk.APIError	"Invalid or expired code"
//	@Router			/v1/auth/password/reset [post].
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.ResetPasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := h.Auth.ResetPassword(r.Context(), req.Token, req.Email, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.ClearSessionCookie(w, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{Message: "Password reset successfully. Please log in again."})
}

// HandleMe returns the signed-in user and the current session.
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		SessionCookie
//	@Produce		json
//	@Success		200	{object}	accountsdk.MeResponse
//	@Failure		401	{object}	accountsdk.APIError	"Missing or invalid session"
//	@Router			/v1/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, sess, err := h.Auth.GetSessionUser(r.Context(), httpx.SessionTokenFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MeResponse{
		User:    profileView(user),
		Session: sessionView(sess, sess.ID),
	})
}
