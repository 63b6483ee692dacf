//go:build integration

package accounts_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/scrimflow/accounts/internal/accounts/domain"
	"github.com/scrimflow/accounts/pkg/accountsdk"
	"github.com/stretchr/testify/require"
)

// TestEmailChange moves the account to a new address and keeps it verified.
func TestEmailChange(t *testing.T) {
	env := setupServer(t)
	acc := env.signUp(t)
	sess := env.login(t, acc)

	err := sess.RequestEmailChange(t.Context(), accountsdk.EmailChangeRequest{
		NewEmail:        newAccount().Email,
		CurrentPassword: "WrongPass1!",
	})
	requireAPIError(t, err, http.StatusUnauthorized, accountsdk.CodeInvalidPassword)

	taken := env.signUp(t)
	err = sess.RequestEmailChange(t.Context(), accountsdk.EmailChangeRequest{
		NewEmail:        taken.Email,
		CurrentPassword: testPassword,
	})
	requireAPIError(t, err, http.StatusConflict, accountsdk.CodeEmailTaken)

	newEmail := newAccount().Email
	require.NoError(t, sess.RequestEmailChange(t.Context(), accountsdk.EmailChangeRequest{
		NewEmail:        newEmail,
		CurrentPassword: testPassword,
	}))
	code := env.waitForCode(t, newEmail, domain.VerificationEmailChange)

	me, err := sess.Me(t.Context())
	require.NoError(t, err)
	require.NotNil(t, me.User.PendingEmail)
	require.Equal(t, newEmail, *me.User.PendingEmail)

	// The code is bound to the pending address, not the current one.
	err = env.client.ConfirmEmailChange(t.Context(), accountsdk.ConfirmEmailChangeRequest{Token: code, NewEmail: acc.Email})
	requireAPIError(t, err, http.StatusBadRequest, accountsdk.CodeInvalidOrExpiredCode)

	require.NoError(t, env.client.ConfirmEmailChange(t.Context(), accountsdk.ConfirmEmailChangeRequest{Token: code, NewEmail: newEmail}))

	me, err = sess.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, newEmail, me.User.Email)
	require.Nil(t, me.User.PendingEmail)
	require.True(t, me.User.EmailVerified)

	_, err = env.client.Login(t.Context(), accountsdk.LoginRequest{Email: newEmail, Password: testPassword})
	require.NoError(t, err)
}

// TestAccountDeletion soft deletes the account and frees its identifiers.
func TestAccountDeletion(t *testing.T) {
	env := setupServer(t)
	acc := env.signUp(t)
	sess := env.login(t, acc)

	err := sess.RequestAccountDeletion(t.Context(), accountsdk.DeleteAccountRequest{CurrentPassword: "WrongPass1!"})
	requireAPIError(t, err, http.StatusUnauthorized, accountsdk.CodeInvalidPassword)

	require.NoError(t, sess.RequestAccountDeletion(t.Context(), accountsdk.DeleteAccountRequest{CurrentPassword: testPassword}))
	code := env.waitForCode(t, acc.Email, domain.VerificationAccountDeletion)

	require.NoError(t, env.client.ConfirmAccountDeletion(t.Context(), accountsdk.ConfirmDeleteAccountRequest{Token: code, Email: acc.Email}))

	_, err = sess.Me(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, accountsdk.CodeUnauthorized)

	_, err = env.client.Login(t.Context(), accountsdk.LoginRequest{Email: acc.Email, Password: testPassword})
	requireAPIError(t, err, http.StatusUnauthorized, accountsdk.CodeInvalidCredentials)

	deleted, err := env.store.Users().GetUserByID(context.Background(), acc.ID)
	require.NoError(t, err)
	require.False(t, deleted.Active())

	_, err = env.client.Register(t.Context(), accountsdk.RegisterRequest{
		Username:        acc.Username,
		Email:           acc.Email,
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})
	require.NoError(t, err)
}

// TestNewLoginAlert mails an alert when a known user signs in from a new
// address, and not on the first sign-in.
func TestNewLoginAlert(t *testing.T) {
	env := setupServer(t)
	acc := env.signUp(t)

	env.client.Headers = map[string]string{"X-Real-IP": "203.0.113.10"}
	env.login(t, acc)

	env.client.Headers = map[string]string{"X-Real-IP": "203.0.113.10"}
	env.login(t, acc)

	env.client.Headers = map[string]string{"X-Real-IP": "198.51.100.20"}
	sess := env.login(t, acc)

	require.Eventually(t, func() bool {
		return len(env.mailer.Alerts()) == 1
	}, waitTimeout, waitTick)

	alert := env.mailer.Alerts()[0]
	require.Equal(t, acc.Email, alert.To)
	require.Equal(t, "198.51.100.20", alert.Alert.IPAddress)
	require.NotNil(t, alert.Alert.Location)
	require.Equal(t, "Sydney", alert.Alert.Location.City)

	sessions, err := sess.Sessions(t.Context())
	require.NoError(t, err)
	require.Len(t, sessions, 3)
}

// TestAdminRevokeSessions requires the admin role.
func TestAdminRevokeSessions(t *testing.T) {
	env := setupServer(t)
	target := env.signUp(t)
	targetSession := env.login(t, target)

	caller := env.signUp(t)
	callerSession := env.login(t, caller)

	_, err := callerSession.RevokeUserSessions(t.Context(), target.ID)
	requireAPIError(t, err, http.StatusForbidden, accountsdk.CodeForbidden)

	promote(t, caller.ID)

	revoked, err := callerSession.RevokeUserSessions(t.Context(), target.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, revoked)

	_, err = targetSession.Me(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, accountsdk.CodeUnauthorized)

	_, err = callerSession.RevokeUserSessions(t.Context(), "01HZZZZZZZZZZZZZZZZZZZZZZZ")
	requireAPIError(t, err, http.StatusNotFound, accountsdk.CodeNotFound)
}

// TestHealth reports both health endpoints healthy against Postgres.
func TestHealth(t *testing.T) {
	env := setupServer(t)

	live, err := env.client.Livez(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := env.client.Readyz(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
}
