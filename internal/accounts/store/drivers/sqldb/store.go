package sqldb

import (
	"context"
	"database/sql"

	"github.com/scrimflow/accounts/internal/accounts/store"
)

// Migrator applies the driver's embedded schema to db.
type Migrator func(db *sql.DB) error

type Store struct {
	db      *sql.DB
	dialect Dialect
	migrate Migrator
	q       *queries
}

// New wraps an open database. The driver packages call this after
// configuring the connection pool.
func New(db *sql.DB, dialect Dialect, migrate Migrator) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		migrate: migrate,
		q:       &queries{db: db, dialect: dialect},
	}
}

// DB exposes the underlying handle, mostly for tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(s.db)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx, s.dialect), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users                 { return &usersRepo{q: s.q} }
func (s *Store) Verifications() store.Verifications { return &verificationsRepo{q: s.q} }
func (s *Store) Sessions() store.Sessions           { return &sessionsRepo{q: s.q} }
