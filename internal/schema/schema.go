// Package schema embeds the SQL migrations shared by cmd/migrate and tests.
// The statements are portable across PostgreSQL and SQLite: ids and ISO dates
// are TEXT, flags are BOOLEAN, and audit columns are TIMESTAMP.
package schema

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

// Migrations holds the numbered golang-migrate files under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Dir is the directory inside Migrations that holds the files.
const Dir = "migrations"

// Apply runs every up migration in order against db, splitting files on
// statement boundaries. It is intended for fresh databases such as in-memory
// SQLite; deployed databases are migrated with cmd/migrate.
func Apply(ctx context.Context, db *sql.DB) error {
	names, err := fs.Glob(Migrations, Dir+"/*.up.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	slices.Sort(names)

	for _, name := range names {
		data, err := Migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		for stmt := range strings.SplitSeq(string(data), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply %s: %w", name, err)
			}
		}
	}

	return nil
}
