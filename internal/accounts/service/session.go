package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/domain"
	"github.com/scrimflow/accounts/internal/accounts/store"
	"github.com/scrimflow/accounts/pkg/cryptox"
	"github.com/scrimflow/accounts/pkg/idx"
	"github.com/scrimflow/accounts/pkg/slogx"
)

// DefaultSessionTTL is the lifetime of a session from creation.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionService manages opaque bearer sessions. Only the SHA-256
// fingerprint of a token is stored.
type SessionService struct {
	Store store.Store
	TTL   time.Duration
	Now   func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultSessionTTL
}

// CreateSession mints a token for userID and records the metadata snapshot.
func (s *SessionService) CreateSession(ctx context.Context, userID string, meta domain.SessionMetadata) (domain.IssuedSession, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.IssuedSession{}, fmt.Errorf("generate session token: %w", err)
	}
	now := s.now()

	sess := domain.Session{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(s.ttl()),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Device:    meta.Device,
		Location:  meta.Location,
		CreatedAt: now,
	}
	if err := s.Store.Sessions().CreateSession(ctx, sess); err != nil {
		return domain.IssuedSession{}, fmt.Errorf("create session: %w", err)
	}

	slogx.FromContext(ctx).Info("session created",
		slog.String("user_id", userID),
		slog.String("session_id", sess.ID),
		slog.String("ip", meta.IPAddress))

	return domain.IssuedSession{Token: token, ExpiresAt: sess.ExpiresAt, Session: sess}, nil
}

// GetActiveSessionWithUser resolves a token to its session and owner.
// Unknown, revoked and expired tokens, and tokens of deleted users, all
// return ErrSessionNotFound.
func (s *SessionService) GetActiveSessionWithUser(ctx context.Context, token string) (domain.User, domain.Session, error) {
	if token == "" {
		return domain.User{}, domain.Session{}, ErrSessionNotFound
	}

	sess, err := s.Store.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.Session{}, ErrSessionNotFound
		}
		return domain.User{}, domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	if !sess.Valid(s.now()) {
		return domain.User{}, domain.Session{}, ErrSessionNotFound
	}

	user, err := s.Store.Users().GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.Session{}, ErrSessionNotFound
		}
		return domain.User{}, domain.Session{}, fmt.Errorf("get session user: %w", err)
	}
	if !user.Active() {
		return domain.User{}, domain.Session{}, ErrSessionNotFound
	}

	return user, sess, nil
}

// RevokeSession revokes the session behind token. Unknown or already
// revoked tokens are not an error.
func (s *SessionService) RevokeSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.Store.Sessions().RevokeSession(ctx, cryptox.FingerprintToken(token), s.now())
}

// RevokeAllSessions revokes every live session of userID.
func (s *SessionService) RevokeAllSessions(ctx context.Context, userID string) (int64, error) {
	return s.revokeAll(ctx, s.Store, userID)
}

// RevokeAllSessionsTx is RevokeAllSessions inside an existing transaction.
func (s *SessionService) RevokeAllSessionsTx(ctx context.Context, tx store.Tx, userID string) (int64, error) {
	return s.revokeAll(ctx, tx, userID)
}

func (s *SessionService) revokeAll(ctx context.Context, st store.Store, userID string) (int64, error) {
	n, err := st.Sessions().RevokeAllUserSessions(ctx, userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	slogx.FromContext(ctx).Info("sessions revoked", slog.String("user_id", userID), slog.Int64("count", n))
	return n, nil
}

func (s *SessionService) HasSessionFromIP(ctx context.Context, userID, ip string) (bool, error) {
	return s.Store.Sessions().HasSessionFromIP(ctx, userID, ip)
}

func (s *SessionService) HasAnySessionHistory(ctx context.Context, userID string) (bool, error) {
	return s.Store.Sessions().HasAnySession(ctx, userID)
}

// ListActiveSessions returns the user's valid sessions, newest first.
func (s *SessionService) ListActiveSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	all, err := s.Store.Sessions().ListUnrevokedUserSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	now := s.now()
	active := make([]domain.Session, 0, len(all))
	for _, sess := range all {
		if sess.Valid(now) {
			active = append(active, sess)
		}
	}
	return active, nil
}
