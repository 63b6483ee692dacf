package http

import (
	"net/http"

	"github.com/scrimflow/accounts/internal/accounts/service"
	"github.com/scrimflow/accounts/pkg/accountsdk"
	"github.com/scrimflow/accounts/pkg/httpx"
	"github.com/scrimflow/accounts/pkg/slogx"
)

// AccountHandler serves the self-service account endpoints.
type AccountHandler struct {
	Auth          *service.AuthService
	SecureCookies bool
}

// HandleListSessions lists the signed-in user's active sessions.
//
//	@Summary		List sessions
//	@Tags			Account
//	@Security		SessionCookie
//	@Produce		json
//	@Success		200	{object}	accountsdk.SessionListResponse
//	@Failure		401	{object}	accountsdk.APIError	"Missing or invalid session"
//	@Router			/v1/account/sessions [get].
func (h *AccountHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := httpx.UserIDFromContext(ctx)

	_, current, err := h.Auth.GetSessionUser(ctx, httpx.SessionTokenFromContext(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	sessions, err := h.Auth.ListActiveSessions(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := accountsdk.SessionListResponse{Sessions: make([]accountsdk.SessionView, 0, len(sessions))}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, sessionView(s, current.ID))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleRequestEmailChange sends an EMAIL_CHANGE code to the new address.
//
//	@Summary		Request email change
//	@Tags			Account
//	@Security		SessionCookie
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.EmailChangeRequest	true	"New email and current password"
//	@Success		200		{object}	accountsdk.MessageResponse
//	@Failure		401		{object}	accountsdk.APIError	"Invalid password"
//	@Failure		409		{object}	accountsdk.APIError	"Email already in use"
//	@Router			/v1/account/email [post].
func (h *AccountHandler) HandleRequestEmailChange(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.EmailChangeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	userID, _ := httpx.UserIDFromContext(r.Context())

	if err := h.Auth.RequestEmailChange(r.Context(), userID, req.NewEmail, req.CurrentPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{Message: "Verification code sent to new email address."})
}

// HandleConfirmEmailChange redeems an EMAIL_CHANGE code.
//
//	@Summary		Confirm email change
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.ConfirmEmailChangeRequest	true	"Code and new email"
//	@Success		200		{object}	accountsdk.MessageResponse
//	@Failure		400		{object}	accountsdk.APIError	"Invalid or expired code"
//	@Failure		409		{object}	accountsdk.APIError	"Email already in use"
//	@Router			/v1/account/email/confirm [post].
func (h *AccountHandler) HandleConfirmEmailChange(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.ConfirmEmailChangeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := h.Auth.ConfirmEmailChange(r.Context(), req.Token, req.NewEmail); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{Message: "Email updated successfully"})
}

// HandleRequestDeletion sends an ACCOUNT_DELETION code to the current
// address.
//
//	@Summary		Request account deletion
//	@Tags			Account
//	@Security		SessionCookie
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.DeleteAccountRequest	true	"Current password"
//	@Success		200		{object}	accountsdk.MessageResponse
//	@Failure		401		{object}	accountsdk.APIError	"Invalid password"
//	@Router			/v1/account/delete [post].
func (h *AccountHandler) HandleRequestDeletion(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.DeleteAccountRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	userID, _ := httpx.UserIDFromContext(r.Context())

	if err := h.Auth.RequestAccountDeletion(r.Context(), userID, req.CurrentPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{Message: "Account deletion code sent to your email."})
}

// HandleConfirmDeletion redeems an ACCOUNT_DELETION code, deleting the
// account and every session.
//
//	@Summary		Confirm account deletion
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.ConfirmDeleteAccountRequest	true	"Code and email"
//	@Success		200		{object}	accountsdk.MessageResponse
//	@Failure		400		{object}	accountsdk.APIError	"Invalid or expired code"
//	@Router			/v1/account/delete/confirm [post].
func (h *AccountHandler) HandleConfirmDeletion(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.ConfirmDeleteAccountRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := h.Auth.ConfirmAccountDeletion(r.Context(), req.Token, req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	slogx.FromContext(r.Context()).Info("account deletion confirmed")
	httpx.ClearSessionCookie(w, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{Message: "Account deleted successfully"})
}
