package domain

import "time"

// VerificationType is the purpose a verification code was issued for.
type VerificationType string

const (
	VerificationEmail           VerificationType = "EMAIL_VERIFICATION"
	VerificationPasswordReset   VerificationType = "PASSWORD_RESET"
	VerificationEmailChange     VerificationType = "EMAIL_CHANGE"
	VerificationAccountDeletion VerificationType = "ACCOUNT_DELETION"
)

// Valid reports whether t is a known purpose.
func (t VerificationType) Valid() bool {
	switch t {
	case VerificationEmail, VerificationPasswordReset, VerificationEmailChange, VerificationAccountDeletion:
		return true
	}
	return false
}

// Resendable reports whether a code of this purpose may be reissued without
// re-authentication. Deletion codes are only issued from a password-checked
// request.
func (t VerificationType) Resendable() bool {
	return t.Valid() && t != VerificationAccountDeletion
}

// VerificationCode is a single-use, purpose-scoped, time-boxed secret. Codes
// are never deleted; UsedAt is set when redeemed or superseded.
type VerificationCode struct {
	ID          string
	UserID      string
	Token       string
	Type        VerificationType
	Destination string // address the code was mailed to
	ExpiresAt   time.Time
	UsedAt      *time.Time
	CreatedAt   time.Time
}

// Redeemable reports whether the code is unconsumed and unexpired at now.
func (c VerificationCode) Redeemable(now time.Time) bool {
	return c.UsedAt == nil && now.Before(c.ExpiresAt)
}
