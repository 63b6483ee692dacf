package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/domain"
	"github.com/scrimflow/accounts/internal/accounts/notify"
	"github.com/scrimflow/accounts/pkg/slogx"
)

// GeoLocator resolves an IP address to an approximate location, or nil.
type GeoLocator interface {
	Lookup(ctx context.Context, ip string) *domain.Location
}

// AnomalyNotifier alerts users about sign-ins from addresses they have never
// signed in from before. A user's first session is never flagged.
type AnomalyNotifier struct {
	Sessions *SessionService
	Geo      GeoLocator
	Mailer   notify.Mailer
	Runner   TaskRunner
	Now      func() time.Time
}

// CheckLogin must run before the new session is written. It never fails and
// never blocks on delivery.
func (n *AnomalyNotifier) CheckLogin(ctx context.Context, user domain.User, meta domain.SessionMetadata) {
	l := slogx.FromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			l.Error("login anomaly check panicked", slog.String("user_id", user.ID), slog.Any("panic", r))
		}
	}()

	if n == nil || n.Sessions == nil || meta.IPAddress == "" {
		return
	}

	known, err := n.Sessions.HasSessionFromIP(ctx, user.ID, meta.IPAddress)
	if err != nil {
		l.Warn("login anomaly check failed", slog.String("user_id", user.ID), slog.Any("error", err))
		return
	}
	if known {
		return
	}
	seen, err := n.Sessions.HasAnySessionHistory(ctx, user.ID)
	if err != nil {
		l.Warn("login anomaly check failed", slog.String("user_id", user.ID), slog.Any("error", err))
		return
	}
	if !seen {
		return
	}

	if n.Mailer == nil {
		return
	}
	l.Info("sign-in from new address", slog.String("user_id", user.ID), slog.String("ip", meta.IPAddress))

	alert := notify.LoginAlert{
		IPAddress: meta.IPAddress,
		Location:  meta.Location,
		Timezone:  user.Timezone,
		At:        n.now(),
	}
	to := user.Email
	mailer, geo := n.Mailer, n.Geo
	dispatch(ctx, n.Runner, "send_new_login_alert", func(ctx context.Context) error {
		if alert.Location == nil && geo != nil {
			alert.Location = geo.Lookup(ctx, alert.IPAddress)
		}
		return mailer.SendNewLoginAlert(ctx, to, alert)
	})
}

func (n *AnomalyNotifier) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}
