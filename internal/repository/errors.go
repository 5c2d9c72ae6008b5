// Package repository holds the SQL data access for accounts, refresh
// tokens, availability windows and bookings.  Repositories return
// apperr sentinels so services can branch with errors.Is without knowing
// about database/sql.
package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/mentor-marketplace/internal/apperr"
	"github.com/iliyamo/mentor-marketplace/internal/database"
)

// ErrEmailExists is returned by UserRepo.Create for a taken email.
var ErrEmailExists = apperr.Wrap(apperr.ErrConflict, "email already registered")

// notFound turns sql.ErrNoRows into a NotFound error naming what.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Wrap(apperr.ErrNotFound, what+" not found")
	}
	return err
}

// nowUTC is the timestamp written to created_at/updated_at columns.  Values
// are truncated to whole seconds to match DATETIME precision.
func nowUTC() time.Time { return time.Now().UTC().Truncate(time.Second) }

// rollback is deferred by transactional methods; it is a no-op once the
// transaction committed.
func rollback(tx *sql.Tx, committed *bool) {
	if !*committed {
		_ = tx.Rollback()
	}
}

// dialectOrDefault picks MySQL when d is empty.
func dialectOrDefault(d database.Dialect) database.Dialect {
	if d == "" {
		return database.MySQL
	}
	return d
}
