package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/cooldown"
	"github.com/scrimflow/accounts/internal/accounts/domain"
	"github.com/scrimflow/accounts/internal/accounts/notify"
	"github.com/scrimflow/accounts/internal/accounts/store"
	"github.com/scrimflow/accounts/pkg/cryptox"
	"github.com/scrimflow/accounts/pkg/idx"
	"github.com/scrimflow/accounts/pkg/slogx"
)

const (
	// DefaultCodeTTL is how long an issued code stays redeemable.
	DefaultCodeTTL = 15 * time.Minute
)

// VerificationService issues and redeems single-use, purpose-scoped codes.
// At most one unconsumed code exists per (user, purpose); issuing a new one
// supersedes the previous.
type VerificationService struct {
	Store  store.Store
	Mailer notify.Mailer
	Runner TaskRunner

	// Cooldown throttles issuance per (user, purpose, destination). Nil
	// disables it.
	Cooldown cooldown.Limiter

	CodeTTL    time.Duration
	CodeLength int
	Now        func() time.Time
}

func (s *VerificationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *VerificationService) ttl() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return DefaultCodeTTL
}

func (s *VerificationService) codeLength() int {
	if s.CodeLength > 0 {
		return s.CodeLength
	}
	return cryptox.DefaultCodeLength
}

// SendCode issues a fresh code of purpose typ for userID and emails it to
// destination. Delivery runs after commit and its failures never reach the
// caller.
//
// Inside the issuance cooldown a request is suppressed only while the user
// still holds a redeemable code of typ that was mailed to destination and is
// bound to it. Otherwise a new code is issued as usual.
func (s *VerificationService) SendCode(ctx context.Context, userID, destination string, typ domain.VerificationType) error {
	return s.SendCodeTx(ctx, userID, destination, typ, nil)
}

// SendCodeTx is SendCode with prepare run in the issuance transaction, after
// the purpose lock and before any code is issued. An error from prepare
// rolls the transaction back and nothing is sent.
func (s *VerificationService) SendCodeTx(
	ctx context.Context,
	userID, destination string,
	typ domain.VerificationType,
	prepare func(tx store.Tx) error,
) error {
	if !typ.Valid() {
		return ErrUnsupportedVerificationType
	}
	l := slogx.FromContext(ctx)
	destination = domain.NormalizeEmail(destination)
	throttled := s.throttled(ctx, userID, destination, typ)

	var code string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Verifications().LockPurpose(ctx, userID, typ); err != nil {
			return fmt.Errorf("lock verification purpose: %w", err)
		}
		if prepare != nil {
			if err := prepare(tx); err != nil {
				return err
			}
		}

		if throttled {
			outstanding, err := s.hasOutstandingCode(ctx, tx, userID, destination, typ)
			if err != nil {
				return err
			}
			if outstanding {
				l.Info("verification code suppressed by cooldown",
					slog.String("user_id", userID), slog.String("type", string(typ)))
				return nil
			}
		}

		var err error
		code, err = s.IssueCode(ctx, tx, userID, destination, typ)
		return err
	})
	if err != nil || code == "" {
		return err
	}

	s.Deliver(ctx, destination, code, typ)
	return nil
}

// throttled reports whether destination already received a code of typ
// within the cooldown window. Limiter errors count as not throttled.
func (s *VerificationService) throttled(ctx context.Context, userID, destination string, typ domain.VerificationType) bool {
	if s.Cooldown == nil {
		return false
	}
	allowed, err := s.Cooldown.Allow(ctx, cooldown.Key{UserID: userID, Purpose: typ, Destination: destination})
	if err != nil {
		slogx.FromContext(ctx).Warn("issuance cooldown unavailable, continuing",
			slog.String("type", string(typ)), slog.Any("error", err))
		return false
	}
	return !allowed
}

// hasOutstandingCode reports whether the user holds a redeemable code of typ
// that was mailed to destination and would be accepted for it.
func (s *VerificationService) hasOutstandingCode(
	ctx context.Context,
	tx store.Tx,
	userID, destination string,
	typ domain.VerificationType,
) (bool, error) {
	user, err := tx.Users().GetUserByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load user: %w", err)
	}
	if !user.Active() || boundEmail(user, typ) != destination {
		return false, nil
	}

	codes, err := tx.Verifications().ListUnconsumedForUser(ctx, userID, typ)
	if err != nil {
		return false, fmt.Errorf("list active codes: %w", err)
	}
	now := s.now()
	for _, c := range codes {
		if c.Redeemable(now) && domain.NormalizeEmail(c.Destination) == destination {
			return true, nil
		}
	}
	return false, nil
}

// IssueCode supersedes every unconsumed code of (userID, typ) and inserts a
// new one addressed to destination inside tx. The caller delivers the
// returned code after commit.
func (s *VerificationService) IssueCode(
	ctx context.Context,
	tx store.Tx,
	userID, destination string,
	typ domain.VerificationType,
) (string, error) {
	if !typ.Valid() {
		return "", ErrUnsupportedVerificationType
	}
	now := s.now()

	if err := tx.Verifications().LockPurpose(ctx, userID, typ); err != nil {
		return "", fmt.Errorf("lock verification purpose: %w", err)
	}
	superseded, err := tx.Verifications().InvalidateActive(ctx, userID, typ, now)
	if err != nil {
		return "", fmt.Errorf("invalidate active codes: %w", err)
	}

	code, err := cryptox.GenerateNumericCode(s.codeLength())
	if err != nil {
		return "", err
	}

	v := domain.VerificationCode{
		ID:          idx.New().String(),
		UserID:      userID,
		Token:       code,
		Type:        typ,
		Destination: domain.NormalizeEmail(destination),
		ExpiresAt:   now.Add(s.ttl()),
		CreatedAt:   now,
	}
	if err := tx.Verifications().CreateVerification(ctx, v); err != nil {
		return "", fmt.Errorf("create verification: %w", err)
	}

	slogx.FromContext(ctx).Debug("verification code issued",
		slog.String("user_id", userID),
		slog.String("type", string(typ)),
		slog.Int64("superseded", superseded))
	return code, nil
}

// Deliver hands the code to the mailer off the request path.
func (s *VerificationService) Deliver(ctx context.Context, destination, code string, typ domain.VerificationType) {
	if s.Mailer == nil {
		slogx.FromContext(ctx).Warn("no mailer configured, verification code not delivered", slog.String("type", string(typ)))
		return
	}
	mailer := s.Mailer
	dispatch(ctx, s.Runner, "send_verification_code", func(ctx context.Context) error {
		return mailer.SendVerificationCode(ctx, destination, code, typ)
	})
}

// VerifyCode redeems a code in its own transaction and returns the owner's
// id.
func (s *VerificationService) VerifyCode(ctx context.Context, token, expectedEmail string, typ domain.VerificationType) (string, error) {
	var userID string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := s.RedeemCode(ctx, tx, token, expectedEmail, typ)
		if err != nil {
			return err
		}
		userID = u.ID
		return nil
	})
	return userID, err
}

// RedeemCode consumes the unconsumed, unexpired code matching (token, typ)
// whose owner is active and bound to expectedEmail. The bound address is the
// pending email for EMAIL_CHANGE and the current email otherwise. Tokens are
// short, so several users may hold the same one; the email binding picks the
// right row.
func (s *VerificationService) RedeemCode(ctx context.Context, tx store.Tx, token, expectedEmail string, typ domain.VerificationType) (domain.User, error) {
	now := s.now()
	expectedEmail = domain.NormalizeEmail(expectedEmail)

	candidates, err := tx.Verifications().ListUnconsumedByToken(ctx, token, typ)
	if err != nil {
		return domain.User{}, fmt.Errorf("find verification: %w", err)
	}

	mismatch := false
	for _, c := range candidates {
		if !c.Redeemable(now) {
			continue
		}

		owner, err := tx.Users().GetUserByID(ctx, c.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return domain.User{}, fmt.Errorf("load code owner: %w", err)
		}
		if !owner.Active() {
			continue
		}
		if boundEmail(owner, typ) != expectedEmail {
			mismatch = true
			continue
		}

		if err := tx.Verifications().MarkUsed(ctx, c.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.User{}, ErrInvalidOrExpiredCode
			}
			return domain.User{}, fmt.Errorf("consume verification: %w", err)
		}
		return owner, nil
	}

	if mismatch {
		slogx.FromContext(ctx).Info("verification code email mismatch", slog.String("type", string(typ)))
		return domain.User{}, ErrCodeEmailMismatch
	}
	return domain.User{}, ErrInvalidOrExpiredCode
}

func boundEmail(u domain.User, typ domain.VerificationType) string {
	if typ == domain.VerificationEmailChange {
		if u.PendingEmail == nil {
			return ""
		}
		return domain.NormalizeEmail(*u.PendingEmail)
	}
	return domain.NormalizeEmail(u.Email)
}
