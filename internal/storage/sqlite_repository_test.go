package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "taskcycle-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, KeyDailyTasks, `[{"id":"t1"}]`); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Load(ctx, KeyDailyTasks)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != `[{"id":"t1"}]` {
		t.Fatalf("unexpected value: %s", got)
	}

	// Upsert replaces in place.
	if err := repo.Save(ctx, KeyDailyTasks, `[]`); err != nil {
		t.Fatalf("save again: %v", err)
	}
	got, err = repo.Load(ctx, KeyDailyTasks)
	if err != nil {
		t.Fatalf("load again: %v", err)
	}
	if got != `[]` {
		t.Fatalf("unexpected value after upsert: %s", got)
	}
}

func TestLoadMissingKeyReturnsNotFound(t *testing.T) {
	repo := setupRepo(t)
	_, err := repo.Load(context.Background(), "no-such-key")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestDeleteMissingKeyReturnsNotFound(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, KeyResetMode, "remove"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Delete(ctx, KeyResetMode); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, KeyResetMode); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got: %v", err)
	}
}

func TestKeysSorted(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for _, key := range []string{KeyWeeklyTasks, KeyDailyTasks, KeyResetMode} {
		if err := repo.Save(ctx, key, "x"); err != nil {
			t.Fatalf("save %s: %v", key, err)
		}
	}
	keys, err := repo.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	want := []string{KeyResetMode, KeyDailyTasks, KeyWeeklyTasks}
	if len(keys) != len(want) {
		t.Fatalf("unexpected keys: %#v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys not sorted: %#v", keys)
		}
	}
}
