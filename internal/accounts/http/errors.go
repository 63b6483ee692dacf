package http

import (
	"net/http"

	"github.com/scrimflow/accounts/internal/accounts/service"
	"github.com/scrimflow/accounts/pkg/accountsdk"
	"github.com/scrimflow/accounts/pkg/slogx"
)

// writeServiceError maps a service error to its client response. Anything
// outside the service taxonomy is logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *accountsdk.APIError

	switch service.KindOf(err) {
	case service.KindEmailOrUsernameTaken:
		apiErr = accountsdk.ErrEmailOrUsernameTaken
	case service.KindInvalidCredentials:
		apiErr = accountsdk.ErrInvalidCredentials
	case service.KindEmailNotVerified:
		apiErr = accountsdk.ErrEmailNotVerified
	case service.KindInvalidOrExpiredCode, service.KindCodeEmailMismatch:
		apiErr = accountsdk.ErrInvalidOrExpiredCode
	case service.KindUnsupportedVerificationType:
		apiErr = accountsdk.ErrUnsupportedVerificationType
	case service.KindInvalidPassword:
		apiErr = accountsdk.ErrInvalidPassword
	case service.KindEmailTaken:
		apiErr = accountsdk.ErrEmailTaken
	case service.KindSessionNotFound:
		apiErr = accountsdk.ErrUnauthorized
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		apiErr = accountsdk.ErrInternal
	}

	apiErr.WriteError(w)
}
