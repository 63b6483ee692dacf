package store

import (
	"context"
	"errors"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories so a transaction-scoped
// Store offers exactly the same surface as the root one.
type Store interface {
	Users() Users
	Verifications() Verifications
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	// Starting a transaction from a Tx returns sql.ErrTxDone.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error (or
	// panics) the transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users queries only ever match active users unless the method says
// otherwise. Email and username are unique among active users.
type Users interface {
	// GetUserByID returns a user by id, including soft-deleted users.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetActiveUserByEmail matches the normalized email of an active user.
	GetActiveUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetActiveUserByUsername matches the username of an active user,
	// case-insensitively.
	GetActiveUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email or username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, hash string, at time.Time) error

	// MarkEmailVerified sets email_verified and bumps updated_at.
	MarkEmailVerified(ctx context.Context, userID string, at time.Time) error

	// SetPendingEmail records (or clears, when nil) the address of an email
	// change in progress.
	SetPendingEmail(ctx context.Context, userID string, email *string, at time.Time) error

	// ConfirmEmailChange swaps in the new address, clears pending_email and
	// marks the address verified. Returns ErrAlreadyExists if another active
	// user took the address in the meantime.
	ConfirmEmailChange(ctx context.Context, userID, email string, at time.Time) error

	// SoftDeleteUser sets deleted_at, freeing the email and username.
	SoftDeleteUser(ctx context.Context, userID string, at time.Time) error
}

type Verifications interface {
	// LockPurpose serializes issuance for a (user, type) pair until the
	// surrounding transaction ends. Only meaningful inside a Tx.
	LockPurpose(ctx context.Context, userID string, typ domain.VerificationType) error

	// InvalidateActive marks every unconsumed code of the pair as used at at.
	// Returns the number of codes superseded.
	InvalidateActive(ctx context.Context, userID string, typ domain.VerificationType, at time.Time) (int64, error)

	// CreateVerification inserts a new code. The schema permits at most one
	// unconsumed code per (user, type); a second returns ErrAlreadyExists.
	CreateVerification(ctx context.Context, v domain.VerificationCode) error

	// ListUnconsumedByToken returns every unconsumed code with the given token
	// and type, newest first. Expired codes are included.
	ListUnconsumedByToken(ctx context.Context, token string, typ domain.VerificationType) ([]domain.VerificationCode, error)

	// MarkUsed consumes the code if it is still unconsumed. Returns
	// ErrNotFound when the code was already used.
	MarkUsed(ctx context.Context, id string, at time.Time) error

	// ListUnconsumedForUser returns the user's unconsumed codes of a type.
	ListUnconsumedForUser(ctx context.Context, userID string, typ domain.VerificationType) ([]domain.VerificationCode, error)
}

type Sessions interface {
	// CreateSession stores a new session record.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByTokenHash returns the session regardless of expiry or
	// revocation; callers check validity.
	GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error)

	// RevokeSession sets revoked_at if it is unset. Unknown hashes are a no-op.
	RevokeSession(ctx context.Context, hash string, at time.Time) error

	// RevokeAllUserSessions revokes every unrevoked session of the user and
	// returns how many were revoked.
	RevokeAllUserSessions(ctx context.Context, userID string, at time.Time) (int64, error)

	// ListUnrevokedUserSessions returns unrevoked sessions, newest first.
	ListUnrevokedUserSessions(ctx context.Context, userID string) ([]domain.Session, error)

	// HasSessionFromIP reports whether any session, in any state, was ever
	// created for the user from ip.
	HasSessionFromIP(ctx context.Context, userID, ip string) (bool, error)

	// HasAnySession reports whether the user ever had a session.
	HasAnySession(ctx context.Context, userID string) (bool, error)
}
