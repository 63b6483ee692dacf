package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/domain"
	"github.com/scrimflow/accounts/internal/accounts/store"
	"github.com/scrimflow/accounts/pkg/idx"
	"github.com/scrimflow/accounts/pkg/slogx"
)

// AuthService orchestrates the account flows on top of the verification
// engine and the session store.
type AuthService struct {
	Store        store.Store
	Hasher       PasswordHasher
	Verification *VerificationService
	Sessions     *SessionService
	Anomaly      *AnomalyNotifier
	Now          func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	User    domain.User
	Session domain.IssuedSession
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Register creates an unverified user and sends an EMAIL_VERIFICATION code.
// The user and the code are written in one transaction. No session is
// created.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta domain.SessionMetadata) (string, error) {
	l := slogx.FromContext(ctx)
	email := domain.NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		GlobalRole:   domain.RoleUser,
		Timezone:     domain.DefaultTimezone,
		Locale:       domain.DefaultLocale,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if loc := meta.Location; loc != nil {
		user.Country = strings.ToUpper(loc.CountryCode)
		if loc.Timezone != "" {
			user.Timezone = loc.Timezone
		}
	}
	if meta.Locale != "" {
		user.Locale = meta.Locale
	}

	var code string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if taken, err := identifiersTaken(ctx, tx, email, username); err != nil {
			return err
		} else if taken {
			return ErrEmailOrUsernameTaken
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailOrUsernameTaken
			}
			return fmt.Errorf("create user: %w", err)
		}

		code, err = s.Verification.IssueCode(ctx, tx, user.ID, email, domain.VerificationEmail)
		return err
	})
	if err != nil {
		return "", err
	}

	l.Info("user registered", slog.String("user_id", user.ID))
	s.Verification.Deliver(ctx, email, code, domain.VerificationEmail)
	return user.ID, nil
}

func identifiersTaken(ctx context.Context, tx store.Tx, email, username string) (bool, error) {
	_, err := tx.Users().GetActiveUserByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("lookup email: %w", err)
	}

	_, err = tx.Users().GetActiveUserByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("lookup username: %w", err)
	}
	return false, nil
}

// Login checks credentials and opens a session. Unknown emails and wrong
// passwords fail identically, and both pay for one password comparison.
func (s *AuthService) Login(ctx context.Context, email, password string, meta domain.SessionMetadata) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetActiveUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Hasher.Compare(password, s.dummy())
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if user.PasswordHash == "" {
		s.Hasher.Compare(password, s.dummy())
		return LoginResult{}, ErrInvalidCredentials
	}
	if !s.Hasher.Compare(password, user.PasswordHash) {
		l.Info("login rejected", slog.String("user_id", user.ID))
		return LoginResult{}, ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return LoginResult{}, ErrEmailNotVerified
	}

	s.Anomaly.CheckLogin(ctx, user, meta)

	issued, err := s.Sessions.CreateSession(ctx, user.ID, meta)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: user, Session: issued}, nil
}

// dummy returns a valid hash used to equalize the cost of failed logins.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.Hasher.Hash("scrimflow-dummy-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// Logout revokes the session behind token. Invalid tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.Sessions.RevokeSession(ctx, token)
}

// VerifyEmail redeems an EMAIL_VERIFICATION code and marks the address
// verified in the same transaction.
func (s *AuthService) VerifyEmail(ctx context.Context, token, email string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := s.Verification.RedeemCode(ctx, tx, token, email, domain.VerificationEmail)
		if err != nil {
			return err
		}
		if err := tx.Users().MarkEmailVerified(ctx, user.ID, s.now()); err != nil {
			return fmt.Errorf("mark email verified: %w", err)
		}
		slogx.FromContext(ctx).Info("email verified", slog.String("user_id", user.ID))
		return nil
	})
}

// ResendVerification reissues a code. Unknown users, verified addresses and
// email changes without a pending address are silent no-ops so the response
// never reveals whether an account exists. Deletion codes are never resent.
func (s *AuthService) ResendVerification(ctx context.Context, email string, typ domain.VerificationType) error {
	if typ == "" {
		typ = domain.VerificationEmail
	}
	if !typ.Resendable() {
		return ErrUnsupportedVerificationType
	}

	user, err := s.Store.Users().GetActiveUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	destination := user.Email
	switch typ {
	case domain.VerificationEmail:
		if user.EmailVerified {
			return nil
		}
	case domain.VerificationEmailChange:
		if user.PendingEmail == nil {
			return nil
		}
		destination = *user.PendingEmail
	}

	return s.Verification.SendCode(ctx, user.ID, destination, typ)
}

// RequestPasswordReset sends a PASSWORD_RESET code when the account exists.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.Store.Users().GetActiveUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	return s.Verification.SendCode(ctx, user.ID, user.Email, domain.VerificationPasswordReset)
}

// ResetPassword redeems a PASSWORD_RESET code, sets the new password and
// revokes every session of the user, all in one transaction.
func (s *AuthService) ResetPassword(ctx context.Context, token, email, newPassword string) error {
	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := s.Verification.RedeemCode(ctx, tx, token, email, domain.VerificationPasswordReset)
		if err != nil {
			return err
		}
		if err := tx.Users().UpdatePasswordHash(ctx, user.ID, hash, s.now()); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if _, err := s.Sessions.RevokeAllSessionsTx(ctx, tx, user.ID); err != nil {
			return err
		}
		slogx.FromContext(ctx).Info("password reset", slog.String("user_id", user.ID))
		return nil
	})
}

// RequestEmailChange records newEmail as pending and sends an EMAIL_CHANGE
// code to it. The current password is required. The pending address and the
// code are written in one transaction.
func (s *AuthService) RequestEmailChange(ctx context.Context, userID, newEmail, currentPassword string) error {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return err
	}
	if !s.passwordMatches(user, currentPassword) {
		return ErrInvalidPassword
	}

	newEmail = domain.NormalizeEmail(newEmail)
	return s.Verification.SendCodeTx(ctx, user.ID, newEmail, domain.VerificationEmailChange, func(tx store.Tx) error {
		if _, err := tx.Users().GetActiveUserByEmail(ctx, newEmail); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("lookup email: %w", err)
		}

		if err := tx.Users().SetPendingEmail(ctx, user.ID, &newEmail, s.now()); err != nil {
			return fmt.Errorf("set pending email: %w", err)
		}
		return nil
	})
}

// ConfirmEmailChange redeems an EMAIL_CHANGE code bound to newEmail and swaps
// the address in the same transaction.
func (s *AuthService) ConfirmEmailChange(ctx context.Context, token, newEmail string) error {
	newEmail = domain.NormalizeEmail(newEmail)
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := s.Verification.RedeemCode(ctx, tx, token, newEmail, domain.VerificationEmailChange)
		if err != nil {
			return err
		}
		if err := tx.Users().ConfirmEmailChange(ctx, user.ID, newEmail, s.now()); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return fmt.Errorf("confirm email change: %w", err)
		}
		slogx.FromContext(ctx).Info("email changed", slog.String("user_id", user.ID))
		return nil
	})
}

// RequestAccountDeletion sends an ACCOUNT_DELETION code to the current
// address. The current password is required.
func (s *AuthService) RequestAccountDeletion(ctx context.Context, userID, currentPassword string) error {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return err
	}
	if !s.passwordMatches(user, currentPassword) {
		return ErrInvalidPassword
	}
	return s.Verification.SendCode(ctx, user.ID, user.Email, domain.VerificationAccountDeletion)
}

// ConfirmAccountDeletion redeems an ACCOUNT_DELETION code, soft-deletes the
// user and revokes all their sessions in one transaction.
func (s *AuthService) ConfirmAccountDeletion(ctx context.Context, token, email string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := s.Verification.RedeemCode(ctx, tx, token, email, domain.VerificationAccountDeletion)
		if err != nil {
			return err
		}
		if err := tx.Users().SoftDeleteUser(ctx, user.ID, s.now()); err != nil {
			return fmt.Errorf("soft delete user: %w", err)
		}
		if _, err := s.Sessions.RevokeAllSessionsTx(ctx, tx, user.ID); err != nil {
			return err
		}
		slogx.FromContext(ctx).Info("account deleted", slog.String("user_id", user.ID))
		return nil
	})
}

// GetSessionUser resolves a session token to its owner and session.
func (s *AuthService) GetSessionUser(ctx context.Context, token string) (domain.User, domain.Session, error) {
	return s.Sessions.GetActiveSessionWithUser(ctx, token)
}

// ListActiveSessions returns the user's valid sessions, newest first.
func (s *AuthService) ListActiveSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	return s.Sessions.ListActiveSessions(ctx, userID)
}

// RevokeUserSessions signs a user out everywhere on behalf of an
// administrator and returns how many sessions were revoked.
func (s *AuthService) RevokeUserSessions(ctx context.Context, userID string) (int64, error) {
	if _, err := s.activeUser(ctx, userID); err != nil {
		return 0, err
	}
	return s.Sessions.RevokeAllSessions(ctx, userID)
}

func (s *AuthService) activeUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	if !user.Active() {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) passwordMatches(user domain.User, password string) bool {
	if user.PasswordHash == "" {
		s.Hasher.Compare(password, s.dummy())
		return false
	}
	return s.Hasher.Compare(password, user.PasswordHash)
}
