package service

import (
	"errors"

	"github.com/scrimflow/accounts/pkg/accountsdk"
)

// Kind enumerates the failures the account flows report. Anything that is
// not an *Error is KindInternal.
type Kind int

const (
	KindInternal Kind = iota
	KindEmailOrUsernameTaken
	KindInvalidCredentials
	KindEmailNotVerified
	KindInvalidOrExpiredCode
	KindCodeEmailMismatch
	KindUnsupportedVerificationType
	KindInvalidPassword
	KindEmailTaken
	KindUserNotFound
	KindSessionNotFound
)

var kindNames = map[Kind]string{
	KindInternal:                    "internal",
	KindEmailOrUsernameTaken:        "email_or_username_taken",
	KindInvalidCredentials:          "invalid_credentials",
	KindEmailNotVerified:            "email_not_verified",
	KindInvalidOrExpiredCode:        "invalid_or_expired_code",
	KindCodeEmailMismatch:           "code_email_mismatch",
	KindUnsupportedVerificationType: "unsupported_verification_type",
	KindInvalidPassword:             "invalid_password",
	KindEmailTaken:                  "email_taken",
	KindUserNotFound:                "user_not_found",
	KindSessionNotFound:             "session_not_found",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is the closed set of expected failures. Code is the client-facing
// machine-readable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches errors of the same kind. A code bound to another address also
// matches ErrInvalidOrExpiredCode so callers cannot tell the two apart.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind == t.Kind {
		return true
	}
	return e.Kind == KindCodeEmailMismatch && t.Kind == KindInvalidOrExpiredCode
}

var (
	ErrEmailOrUsernameTaken = &Error{
		Kind:    KindEmailOrUsernameTaken,
		Code:    accountsdk.CodeEmailOrUsernameTaken,
		Message: "email or username already taken",
	}
	ErrInvalidCredentials = &Error{
		Kind:    KindInvalidCredentials,
		Code:    accountsdk.CodeInvalidCredentials,
		Message: "invalid email or password",
	}
	ErrEmailNotVerified = &Error{
		Kind:    KindEmailNotVerified,
		Code:    accountsdk.CodeEmailNotVerified,
		Message: "email address not verified",
	}
	ErrInvalidOrExpiredCode = &Error{
		Kind:    KindInvalidOrExpiredCode,
		Code:    accountsdk.CodeInvalidOrExpiredCode,
		Message: "invalid or expired code",
	}
	ErrCodeEmailMismatch = &Error{
		Kind:    KindCodeEmailMismatch,
		Code:    accountsdk.CodeInvalidOrExpiredCode,
		Message: "invalid or expired code",
	}
	ErrUnsupportedVerificationType = &Error{
		Kind:    KindUnsupportedVerificationType,
		Code:    accountsdk.CodeUnsupportedVerificationType,
		Message: "verification type cannot be resent",
	}
	ErrInvalidPassword = &Error{
		Kind:    KindInvalidPassword,
		Code:    accountsdk.CodeInvalidPassword,
		Message: "invalid password",
	}
	ErrEmailTaken = &Error{
		Kind:    KindEmailTaken,
		Code:    accountsdk.CodeEmailTaken,
		Message: "email already in use",
	}
	ErrUserNotFound = &Error{
		Kind:    KindUserNotFound,
		Code:    accountsdk.CodeNotFound,
		Message: "user not found",
	}
	ErrSessionNotFound = &Error{
		Kind:    KindSessionNotFound,
		Code:    accountsdk.CodeUnauthorized,
		Message: "session not found",
	}
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
