package notify

import (
	"context"

	"github.com/scrimflow/accounts/internal/accounts/domain"
	"github.com/scrimflow/accounts/pkg/slogx"
)

// LogMailer writes emails to the log instead of sending them. Development only:
// it logs verification codes in clear.
type LogMailer struct{}

func (LogMailer) SendVerificationCode(ctx context.Context, to, code string, purpose domain.VerificationType) error {
	slogx.FromContext(ctx).Info("[DEV] verification code",
		"to", to,
		"purpose", string(purpose),
		"code", code,
	)
	return nil
}

func (LogMailer) SendNewLoginAlert(ctx context.Context, to string, alert LoginAlert) error {
	slogx.FromContext(ctx).Info("[DEV] new sign-in alert",
		"to", to,
		"ip", alert.IPAddress,
		"location", alert.Location.String(),
		"date", alert.FormattedDate(),
	)
	return nil
}
