// Package sqlite is the embedded storage driver backed by modernc.org/sqlite.
package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/scrimflow/accounts/internal/accounts/store/drivers/sqldb"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// pragmas are applied to every connection through the DSN.
var pragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
	"_time_format=sqlite",
}

// Dialect is the sqlite flavour of the shared SQL store. Writers are already
// serialized by the single pooled connection, so issuance needs no extra lock.
var Dialect = sqldb.Dialect{
	Name:              "sqlite",
	IsUniqueViolation: isUniqueViolation,
}

// NewStore opens (creating if needed) the database at path. Use ":memory:"
// for a private in-memory database.
func NewStore(path string) (*sqldb.Store, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer. One connection turns lock contention
	// into queueing inside database/sql and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	return sqldb.New(db, Dialect, applyMigrations), nil
}

// DSN builds a modernc connection string for path with the store's pragmas.
func DSN(path string) string {
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(pragmas, "&")
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
