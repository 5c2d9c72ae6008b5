// Package dbtest opens throwaway SQLite databases carrying the same schema
// as the MySQL migrations, so repository and service tests run without a
// database server.
package dbtest

import (
	"database/sql"
	_ "embed"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/iliyamo/mentor-marketplace/internal/database"
)

//go:embed schema_sqlite.sql
var schema string

// Dialect is the dialect of databases returned by New.
const Dialect = database.SQLite

// New returns a fresh database in t's temp dir.  The pool is capped at one
// connection, which serializes transactions the way row locks do on MySQL.
func New(t testing.TB) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	for _, stmt := range database.SplitStatements(schema) {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("apply schema: %v\n%s", err, stmt)
		}
	}
	return db
}
