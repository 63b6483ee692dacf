package notify

import (
	"context"
	"time"
	_ "time/tzdata" // user timezones must resolve on minimal images

	"github.com/scrimflow/accounts/internal/accounts/domain"
)

// Mailer delivers account emails. Implementations may block on network I/O;
// callers run them on the Dispatcher.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string, purpose domain.VerificationType) error
	SendNewLoginAlert(ctx context.Context, to string, alert LoginAlert) error
}

// LoginAlert describes a sign-in from an address not seen before.
type LoginAlert struct {
	IPAddress string
	Location  *domain.Location
	Timezone  string // IANA zone the date is rendered in
	At        time.Time
}

// FormattedDate renders At in the alert's timezone, falling back to UTC for
// unknown zones.
func (a LoginAlert) FormattedDate() string {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil || a.Timezone == "" {
		loc = time.UTC
	}
	return a.At.In(loc).Format("January 2, 2006 at 3:04 PM MST")
}

// verificationContent is the copy for each verification purpose.
type verificationContent struct {
	Subject string
	Title   string
	Message string
	Action  string
}

var verificationContents = map[domain.VerificationType]verificationContent{
	domain.VerificationEmail: {
		Subject: "Verify your email address",
		Title:   "Verify your email address",
		Message: "Use the code below to verify your email address and finish setting up your account.",
		Action:  "enter the following code",
	},
	domain.VerificationPasswordReset: {
		Subject: "Reset your password",
		Title:   "Reset your password",
		Message: "We received a request to reset the password for your account.",
		Action:  "enter this code to choose a new password",
	},
	domain.VerificationEmailChange: {
		Subject: "Confirm your new email address",
		Title:   "Confirm your new email address",
		Message: "Use the code below to confirm this address as the new email for your account.",
		Action:  "enter the following code",
	},
	domain.VerificationAccountDeletion: {
		Subject: "Confirm account deletion",
		Title:   "Confirm account deletion",
		Message: "We received a request to permanently delete your account.",
		Action:  "enter this code to confirm the deletion",
	},
}

func contentFor(purpose domain.VerificationType) verificationContent {
	if c, ok := verificationContents[purpose]; ok {
		return c
	}
	return verificationContents[domain.VerificationEmail]
}
