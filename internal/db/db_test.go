package db_test

import (
	"path/filepath"
	"testing"

	"github.com/lherron/circmerge/internal/db"
)

func TestMigrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "journal.db")

	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("could not open db: %v", err)
	}
	defer database.Close()

	if database.Path() != dbPath {
		t.Errorf("expected path %s, got %s", dbPath, database.Path())
	}

	applied, err := database.Migrate()
	if err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if len(applied) != 2 || applied[0] != "000001_runs.sql" {
		t.Errorf("unexpected applied migrations: %v", applied)
	}

	// Second run is a no-op
	applied, err = database.Migrate()
	if err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected nothing to apply, got %v", applied)
	}

	var versions int
	if err := database.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions); err != nil {
		t.Fatalf("could not count migrations: %v", err)
	}
	if versions != 2 {
		t.Errorf("expected 2 recorded migrations, got %d", versions)
	}
}

func TestMigrate_ResumesPartial(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("could not open db: %v", err)
	}
	defer database.Close()

	if _, err := database.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if _, err := database.Exec(`DROP TABLE run_entries`); err != nil {
		t.Fatalf("could not drop table: %v", err)
	}
	if _, err := database.Exec(`DELETE FROM schema_migrations WHERE version = '000002_run_entries.sql'`); err != nil {
		t.Fatalf("could not forget migration: %v", err)
	}

	applied, err := database.Migrate()
	if err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if len(applied) != 1 || applied[0] != "000002_run_entries.sql" {
		t.Errorf("expected only the forgotten migration, got %v", applied)
	}
}
