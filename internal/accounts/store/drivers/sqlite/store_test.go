package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/domain"
	"github.com/scrimflow/accounts/internal/accounts/store"
	"github.com/scrimflow/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/scrimflow/accounts/pkg/idx"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createUser(t *testing.T, s store.Store, username, email string) domain.User {
	t.Helper()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: "hash",
		GlobalRole:   domain.RoleUser,
		Timezone:     domain.DefaultTimezone,
		Locale:       domain.DefaultLocale,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestDSN(t *testing.T) {
	require.Equal(t,
		"file:/data/accounts.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite",
		sqlite.DSN("/data/accounts.db"))
	require.Contains(t, sqlite.DSN("file:x.db?mode=rwc"), "mode=rwc&_pragma=")
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	alice := createUser(t, s, "Alice", " Alice@X.com ")

	t.Run("lookup normalizes email and username case", func(t *testing.T) {
		got, err := s.Users().GetActiveUserByEmail(ctx, "alice@x.com")
		require.NoError(t, err)
		require.Equal(t, alice.ID, got.ID)
		require.Equal(t, "alice@x.com", got.Email)
		require.Equal(t, domain.RoleUser, got.GlobalRole)
		require.True(t, now.Equal(got.CreatedAt))

		got, err = s.Users().GetActiveUserByUsername(ctx, "ALICE")
		require.NoError(t, err)
		require.Equal(t, alice.ID, got.ID)
	})

	t.Run("duplicate email or username is rejected", func(t *testing.T) {
		dup := alice
		dup.ID = idx.New().String()
		dup.Username = "someone_else"
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

		dup.ID = idx.New().String()
		dup.Username = "alice"
		dup.Email = "other@x.com"
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("email change", func(t *testing.T) {
		pending := "New@X.com"
		require.NoError(t, s.Users().SetPendingEmail(ctx, alice.ID, &pending, now))

		got, err := s.Users().GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, got.PendingEmail)
		require.Equal(t, "new@x.com", *got.PendingEmail)

		require.NoError(t, s.Users().ConfirmEmailChange(ctx, alice.ID, "new@x.com", now))
		got, err = s.Users().GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		require.Equal(t, "new@x.com", got.Email)
		require.Nil(t, got.PendingEmail)
		require.True(t, got.EmailVerified)
	})

	t.Run("soft delete frees identifiers", func(t *testing.T) {
		require.NoError(t, s.Users().SoftDeleteUser(ctx, alice.ID, now))
		require.ErrorIs(t, s.Users().SoftDeleteUser(ctx, alice.ID, now), store.ErrNotFound)

		_, err := s.Users().GetActiveUserByEmail(ctx, "new@x.com")
		require.ErrorIs(t, err, store.ErrNotFound)

		deleted, err := s.Users().GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		require.False(t, deleted.Active())

		again := createUser(t, s, "alice", "new@x.com")
		require.NotEqual(t, alice.ID, again.ID)
	})

	t.Run("updates on unknown users report not found", func(t *testing.T) {
		require.ErrorIs(t, s.Users().MarkEmailVerified(ctx, "nope", now), store.ErrNotFound)
		require.ErrorIs(t, s.Users().UpdatePasswordHash(ctx, "nope", "h", now), store.ErrNotFound)
	})
}

func TestVerifications(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := createUser(t, s, "bob", "bob@x.com")

	code := func(token string) domain.VerificationCode {
		return domain.VerificationCode{
			ID:          idx.New().String(),
			UserID:      u.ID,
			Token:       token,
			Type:        domain.VerificationEmail,
			Destination: "bob@x.com",
			ExpiresAt:   now.Add(15 * time.Minute),
			CreatedAt:   now,
		}
	}

	first := code("111111")
	require.NoError(t, s.Verifications().CreateVerification(ctx, first))

	t.Run("second unconsumed code for the pair is rejected", func(t *testing.T) {
		require.ErrorIs(t, s.Verifications().CreateVerification(ctx, code("222222")), store.ErrAlreadyExists)
	})

	t.Run("other purposes are independent", func(t *testing.T) {
		other := code("111111")
		other.Type = domain.VerificationPasswordReset
		require.NoError(t, s.Verifications().CreateVerification(ctx, other))
	})

	t.Run("invalidate then insert", func(t *testing.T) {
		n, err := s.Verifications().InvalidateActive(ctx, u.ID, domain.VerificationEmail, now)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		second := code("333333")
		require.NoError(t, s.Verifications().CreateVerification(ctx, second))

		active, err := s.Verifications().ListUnconsumedForUser(ctx, u.ID, domain.VerificationEmail)
		require.NoError(t, err)
		require.Len(t, active, 1)
		require.Equal(t, second.ID, active[0].ID)
		require.Equal(t, "bob@x.com", active[0].Destination)
		require.True(t, second.ExpiresAt.Equal(active[0].ExpiresAt))

		stale, err := s.Verifications().ListUnconsumedByToken(ctx, "111111", domain.VerificationEmail)
		require.NoError(t, err)
		require.Empty(t, stale)
	})

	t.Run("mark used is conditional", func(t *testing.T) {
		found, err := s.Verifications().ListUnconsumedByToken(ctx, "333333", domain.VerificationEmail)
		require.NoError(t, err)
		require.Len(t, found, 1)

		require.NoError(t, s.Verifications().MarkUsed(ctx, found[0].ID, now))
		require.ErrorIs(t, s.Verifications().MarkUsed(ctx, found[0].ID, now), store.ErrNotFound)
	})
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := createUser(t, s, "carol", "carol@x.com")

	newSession := func(hash, ip string, loc *domain.Location) domain.Session {
		sess := domain.Session{
			ID:        idx.New().String(),
			UserID:    u.ID,
			TokenHash: hash,
			ExpiresAt: now.Add(7 * 24 * time.Hour),
			IPAddress: ip,
			UserAgent: "test-agent",
			Device:    "desktop",
			Location:  loc,
			CreatedAt: now,
		}
		require.NoError(t, s.Sessions().CreateSession(ctx, sess))
		return sess
	}

	hasAny, err := s.Sessions().HasAnySession(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, hasAny)

	loc := &domain.Location{City: "Sydney", CountryCode: "AU", Timezone: "Australia/Sydney"}
	a := newSession("hash-a", "203.0.113.1", loc)
	newSession("hash-b", "203.0.113.2", nil)

	t.Run("lookup round trips metadata", func(t *testing.T) {
		got, err := s.Sessions().GetSessionByTokenHash(ctx, "hash-a")
		require.NoError(t, err)
		require.Equal(t, a.ID, got.ID)
		require.Equal(t, "test-agent", got.UserAgent)
		require.Equal(t, loc, got.Location)
		require.Nil(t, got.RevokedAt)

		_, err = s.Sessions().GetSessionByTokenHash(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("ip history", func(t *testing.T) {
		seen, err := s.Sessions().HasSessionFromIP(ctx, u.ID, "203.0.113.1")
		require.NoError(t, err)
		require.True(t, seen)

		seen, err = s.Sessions().HasSessionFromIP(ctx, u.ID, "198.51.100.9")
		require.NoError(t, err)
		require.False(t, seen)
	})

	t.Run("revoke", func(t *testing.T) {
		require.NoError(t, s.Sessions().RevokeSession(ctx, "unknown", now))
		require.NoError(t, s.Sessions().RevokeSession(ctx, "hash-a", now))

		got, err := s.Sessions().GetSessionByTokenHash(ctx, "hash-a")
		require.NoError(t, err)
		require.NotNil(t, got.RevokedAt)

		live, err := s.Sessions().ListUnrevokedUserSessions(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, live, 1)

		n, err := s.Sessions().RevokeAllUserSessions(ctx, u.ID, now)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		live, err = s.Sessions().ListUnrevokedUserSessions(ctx, u.ID)
		require.NoError(t, err)
		require.Empty(t, live)

		// Revoked sessions still count as history.
		seen, err := s.Sessions().HasSessionFromIP(ctx, u.ID, "203.0.113.1")
		require.NoError(t, err)
		require.True(t, seen)
	})
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	t.Run("rolls back on error", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			createUser(t, tx, "dave", "dave@x.com")
			return sql.ErrConnDone
		})
		require.ErrorIs(t, err, sql.ErrConnDone)

		_, err = s.Users().GetActiveUserByEmail(ctx, "dave@x.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("commits on success", func(t *testing.T) {
		require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
			createUser(t, tx, "erin", "erin@x.com")
			return nil
		}))

		_, err := s.Users().GetActiveUserByEmail(ctx, "erin@x.com")
		require.NoError(t, err)
	})

	t.Run("nested transactions are refused", func(t *testing.T) {
		require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
			_, err := tx.Tx(ctx)
			require.ErrorIs(t, err, sql.ErrTxDone)
			require.ErrorIs(t, tx.WithTx(ctx, func(store.Tx) error { return nil }), sql.ErrTxDone)
			return nil
		}))
	})
}
