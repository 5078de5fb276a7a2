// Package schematest opens migrated in-memory SQLite databases for tests.
package schematest

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/JaimeStill/stark/internal/schema"
)

// Open returns a fresh in-memory database with the schema applied. The pool
// is pinned to one connection so every query sees the same database.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := schema.Apply(context.Background(), db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}
