package http

import (
	"errors"
	"net/http"

	"github.com/scrimflow/accounts/internal/accounts/service"
	"github.com/scrimflow/accounts/pkg/accountsdk"
	"github.com/scrimflow/accounts/pkg/httpx"
	"github.com/scrimflow/accounts/pkg/slogx"
)

type AdminHandler struct {
	Auth *service.AuthService
}

// HandleRevokeSessions signs a user out of every session.
//
//	@Summary		Revoke user sessions
//	@Description	Requires the admin global role.
//	@Tags			Admin
//	@Security		SessionCookie
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	accountsdk.RevokeSessionsResponse
//	@Failure		401	{object}	accountsdk.APIError	"Missing or invalid session"
//	@Failure		403	{object}	accountsdk.APIError	"Not an administrator"
//	@Failure		404	{object}	accountsdk.APIError	"User not found"
//	@Router			/v1/admin/users/{id}/sessions/revoke [post].
func (h *AdminHandler) HandleRevokeSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target := r.PathValue("id")

	n, err := h.Auth.RevokeUserSessions(ctx, target)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			accountsdk.ErrNotFound.WriteError(w)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	adminID, _ := httpx.UserIDFromContext(ctx)
	slogx.FromContext(ctx).Info("admin revoked user sessions",
		"admin_id", adminID, "target_user_id", target, "revoked", n)
	httpx.WriteJSON(w, http.StatusOK, accountsdk.RevokeSessionsResponse{Revoked: n})
}
