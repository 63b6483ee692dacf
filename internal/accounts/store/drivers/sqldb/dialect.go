// Package sqldb implements the accounts store on database/sql. The sqlite
// and postgres drivers share it and differ only in their Dialect.
package sqldb

import (
	"strconv"
	"strings"
)

// Dialect captures what differs between the supported SQL engines.
type Dialect struct {
	Name string

	// NumberedParams rewrites ? placeholders to $1, $2, ...
	NumberedParams bool

	// LockPurposeSQL takes a transaction-scoped lock on a (user, type) key.
	// It receives the key as its only parameter.
	LockPurposeSQL string

	// IsUniqueViolation reports whether err is a unique constraint failure.
	IsUniqueViolation func(err error) bool
}

// rebind rewrites ? placeholders for dialects with numbered parameters.
// Queries in this package never contain a literal ?.
func (d Dialect) rebind(query string) string {
	if !d.NumberedParams || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
