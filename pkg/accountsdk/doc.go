/*
Package accountsdk provides the wire types and a client SDK for the Scrimflow
accounts service.

# Overview

The service authenticates users with opaque session tokens carried in an
HTTP-only cookie. The package is organized around two types:

  - SDKClient: unauthenticated operations (register, login, verification codes,
    password reset, health checks)
  - Session: operations performed with an established session cookie

	client := accountsdk.NewSDKClient("https://accounts.example.com")

	_, err := client.Register(ctx, accountsdk.RegisterRequest{...})
	err = client.VerifyEmail(ctx, accountsdk.VerifyCodeRequest{Token: code, Email: email})

	session, err := client.Login(ctx, accountsdk.LoginRequest{Email: email, Password: pw})
	me, err := session.Me(ctx)
	err = session.Logout(ctx)

# Errors

Every non-2xx response is returned as an *APIError. Compare Code against the
Code* constants to branch on the failure kind:

	var apiErr *accountsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == accountsdk.CodeEmailNotVerified {
		// prompt for the verification code
	}

Verification code failures are deliberately undifferentiated: a wrong code, an
expired code, a consumed code and a code bound to another address all yield
CodeInvalidOrExpiredCode.
*/
package accountsdk
