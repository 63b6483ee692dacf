//go:build integration

package accounts_test

import (
	"net/http"
	"testing"

	"github.com/scrimflow/accounts/internal/accounts/domain"
	"github.com/scrimflow/accounts/pkg/accountsdk"
	"github.com/stretchr/testify/require"
)

// TestRegisterVerifyLogin walks the sign-up flow end to end.
func TestRegisterVerifyLogin(t *testing.T) {
	env := setupServer(t)
	acc := newAccount()

	resp, err := env.client.Register(t.Context(), accountsdk.RegisterRequest{
		Username:        acc.Username,
		Email:           acc.Email,
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.UserID)

	_, err = env.client.Login(t.Context(), accountsdk.LoginRequest{Email: acc.Email, Password: testPassword})
	requireAPIError(t, err, http.StatusForbidden, accountsdk.CodeEmailNotVerified)

	code := env.waitForCode(t, acc.Email, domain.VerificationEmail)
	require.Len(t, code, 6)

	err = env.client.VerifyEmail(t.Context(), accountsdk.VerifyCodeRequest{Token: code, Email: "someone@else.test"})
	requireAPIError(t, err, http.StatusBadRequest, accountsdk.CodeInvalidOrExpiredCode)

	require.NoError(t, env.client.VerifyEmail(t.Context(), accountsdk.VerifyCodeRequest{Token: code, Email: acc.Email}))

	err = env.client.VerifyEmail(t.Context(), accountsdk.VerifyCodeRequest{Token: code, Email: acc.Email})
	requireAPIError(t, err, http.StatusBadRequest, accountsdk.CodeInvalidOrExpiredCode)

	sess := env.login(t, acc)
	require.NotEmpty(t, sess.Token())
	require.Equal(t, resp.UserID, sess.User().ID)

	me, err := sess.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, acc.Email, me.User.Email)
	require.True(t, me.User.EmailVerified)
	require.Equal(t, "AU", me.User.Country)
	require.Equal(t, "Australia/Sydney", me.User.Timezone)
	require.True(t, me.Session.Current)

	require.NoError(t, sess.Logout(t.Context()))
	_, err = sess.Me(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, accountsdk.CodeUnauthorized)
}

// TestDuplicateRegistration rejects a reused email or username.
func TestDuplicateRegistration(t *testing.T) {
	env := setupServer(t)
	acc := env.signUp(t)

	other := newAccount()
	_, err := env.client.Register(t.Context(), accountsdk.RegisterRequest{
		Username:        acc.Username,
		Email:           other.Email,
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})
	requireAPIError(t, err, http.StatusConflict, accountsdk.CodeEmailOrUsernameTaken)

	_, err = env.client.Register(t.Context(), accountsdk.RegisterRequest{
		Username:        other.Username,
		Email:           acc.Email,
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})
	requireAPIError(t, err, http.StatusConflict, accountsdk.CodeEmailOrUsernameTaken)
}

// TestInvalidCredentials returns the same error for an unknown email and a
// wrong password.
func TestInvalidCredentials(t *testing.T) {
	env := setupServer(t)
	acc := env.signUp(t)

	_, err := env.client.Login(t.Context(), accountsdk.LoginRequest{Email: acc.Email, Password: "WrongPass1!"})
	requireAPIError(t, err, http.StatusUnauthorized, accountsdk.CodeInvalidCredentials)

	_, err = env.client.Login(t.Context(), accountsdk.LoginRequest{Email: "nobody@scrimflow.test", Password: testPassword})
	requireAPIError(t, err, http.StatusUnauthorized, accountsdk.CodeInvalidCredentials)
}

// TestPasswordReset revokes existing sessions and accepts the new password.
func TestPasswordReset(t *testing.T) {
	env := setupServer(t)
	acc := env.signUp(t)
	sess := env.login(t, acc)

	require.NoError(t, env.client.ForgotPassword(t.Context(), accountsdk.ForgotPasswordRequest{Email: acc.Email}))
	require.NoError(t, env.client.ForgotPassword(t.Context(), accountsdk.ForgotPasswordRequest{Email: "nobody@scrimflow.test"}))

	code := env.waitForCode(t, acc.Email, domain.VerificationPasswordReset)

	const newPassword = "An0therSecret!"
	require.NoError(t, env.client.ResetPassword(t.Context(), accountsdk.ResetPasswordRequest{
		Token:           code,
		Email:           acc.Email,
		Password:        newPassword,
		ConfirmPassword: newPassword,
	}))

	_, err := sess.Me(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, accountsdk.CodeUnauthorized)

	_, err = env.client.Login(t.Context(), accountsdk.LoginRequest{Email: acc.Email, Password: testPassword})
	requireAPIError(t, err, http.StatusUnauthorized, accountsdk.CodeInvalidCredentials)

	_, err = env.client.Login(t.Context(), accountsdk.LoginRequest{Email: acc.Email, Password: newPassword})
	require.NoError(t, err)
}

// TestResendVerification replaces the outstanding code.
func TestResendVerification(t *testing.T) {
	env := setupServer(t)
	acc := newAccount()

	_, err := env.client.Register(t.Context(), accountsdk.RegisterRequest{
		Username:        acc.Username,
		Email:           acc.Email,
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})
	require.NoError(t, err)
	first := env.waitForCode(t, acc.Email, domain.VerificationEmail)

	require.NoError(t, env.client.ResendVerification(t.Context(), accountsdk.ResendVerificationRequest{Email: acc.Email}))
	require.Eventually(t, func() bool {
		return len(env.mailer.Codes()) >= 2
	}, waitTimeout, waitTick)
	second := env.waitForCode(t, acc.Email, domain.VerificationEmail)

	if first != second {
		err = env.client.VerifyEmail(t.Context(), accountsdk.VerifyCodeRequest{Token: first, Email: acc.Email})
		requireAPIError(t, err, http.StatusBadRequest, accountsdk.CodeInvalidOrExpiredCode)
	}
	require.NoError(t, env.client.VerifyEmail(t.Context(), accountsdk.VerifyCodeRequest{Token: second, Email: acc.Email}))
}
