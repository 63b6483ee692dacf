// Package postgres is the server storage driver backed by pgx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/scrimflow/accounts/internal/accounts/store/drivers/sqldb"
)

const uniqueViolation = "23505"

// Dialect is the postgres flavour of the shared SQL store. Code issuance
// takes a transaction-scoped advisory lock per (user, type).
var Dialect = sqldb.Dialect{
	Name:              "postgres",
	NumberedParams:    true,
	LockPurposeSQL:    `SELECT pg_advisory_xact_lock(hashtextextended(?, 0))`,
	IsUniqueViolation: isUniqueViolation,
}

// Options tune the connection pool. Zero values keep the database/sql defaults.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewStore connects to the database at url (a postgres:// URL or key=value DSN).
func NewStore(ctx context.Context, url string, opts Options) (*sqldb.Store, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqldb.New(db, Dialect, applyMigrations), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
