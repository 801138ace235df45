package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "migrate-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func appliedCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatalf("count applied migrations: %v", err)
	}
	return n
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	db := setupDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up: %v", err)
	}
	first := appliedCount(t, db)
	if first == 0 {
		t.Fatal("no migrations recorded")
	}

	// A second run must find everything applied and change nothing.
	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up: %v", err)
	}
	if got := appliedCount(t, db); got != first {
		t.Fatalf("second run re-applied migrations: first=%d got=%d", first, got)
	}

	if _, err := db.Exec(`INSERT INTO kv (key, value, updated_at) VALUES ('k', 'v', 'now')`); err != nil {
		t.Fatalf("kv table missing after migration: %v", err)
	}
}

func TestMigrateDownUnwindsLog(t *testing.T) {
	db := setupDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if got := appliedCount(t, db); got != 0 {
		t.Fatalf("migration log should be empty after down: %d", got)
	}
	if _, err := db.Exec(`INSERT INTO kv (key, value, updated_at) VALUES ('k', 'v', 'now')`); err == nil {
		t.Fatal("kv table should be gone after down migration")
	}

	// The same database migrates back up cleanly.
	if err := MigrateUp(db); err != nil {
		t.Fatalf("re-migrate up: %v", err)
	}
	if got := appliedCount(t, db); got == 0 {
		t.Fatal("re-applied migrations not recorded")
	}
}
