package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationLogSchema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TEXT NOT NULL
)`

// MigrateUp applies every pending .up.sql migration in version order. Applied
// versions are recorded in schema_migrations, so running it on every startup
// re-applies nothing.
func MigrateUp(db *sql.DB) error {
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}
	for _, name := range migrationNames(".up.sql") {
		version := migrationVersion(name, ".up.sql")
		if applied[version] {
			continue
		}
		if err := runMigration(db, name, func(tx *sql.Tx) error {
			_, execErr := tx.Exec(
				`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
				version, mustTime(time.Now()),
			)
			return execErr
		}); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown rolls back every applied migration, newest first.
func MigrateDown(db *sql.DB) error {
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}
	names := migrationNames(".down.sql")
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		version := migrationVersion(name, ".down.sql")
		if !applied[version] {
			continue
		}
		if err := runMigration(db, name, func(tx *sql.Tx) error {
			_, execErr := tx.Exec(`DELETE FROM schema_migrations WHERE version = ?`, version)
			return execErr
		}); err != nil {
			return err
		}
	}
	return nil
}

func runMigration(db *sql.DB, name string, record func(*sql.Tx) error) error {
	script, err := migrationFiles.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", name, err)
	}
	if _, err := tx.Exec(string(script)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	if err := record(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}

func appliedVersions(db *sql.DB) (map[string]bool, error) {
	if _, err := db.Exec(migrationLogSchema); err != nil {
		return nil, fmt.Errorf("create migration log: %w", err)
	}
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read migration log: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var version string
		if scanErr := rows.Scan(&version); scanErr != nil {
			return nil, scanErr
		}
		out[version] = true
	}
	return out, rows.Err()
}

func migrationNames(suffix string) []string {
	entries, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return nil
	}
	sort.Strings(entries)
	return entries
}

// migrationVersion derives the version from the file name, e.g.
// migrations/0001_create_kv.up.sql has version 0001_create_kv.
func migrationVersion(name, suffix string) string {
	return strings.TrimSuffix(path.Base(name), suffix)
}
