package schema_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/JaimeStill/stark/internal/schema"
)

func TestApply(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := schema.Apply(ctx, db); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for _, table := range []string{"profile", "placements", "courses", "achievements", "scans"} {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	// idempotent on an existing schema
	if err := schema.Apply(ctx, db); err != nil {
		t.Errorf("second Apply: %v", err)
	}
}

func TestMigrationsPaired(t *testing.T) {
	ups, _ := schema.Migrations.ReadDir(schema.Dir)
	var up, down int
	for _, e := range ups {
		switch {
		case len(e.Name()) > 7 && e.Name()[len(e.Name())-7:] == ".up.sql":
			up++
		case len(e.Name()) > 9 && e.Name()[len(e.Name())-9:] == ".down.sql":
			down++
		}
	}
	if up == 0 || up != down {
		t.Errorf("up = %d, down = %d, want equal and non-zero", up, down)
	}
}
