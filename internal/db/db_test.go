package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func tableExists(t *testing.T, database *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count)
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	return count == 1
}

func TestOpen_FreshInstall(t *testing.T) {
	ctx := context.Background()
	database, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	for _, table := range []string{"sheets", "blocks", "notebook_state", "run_log", "schema_version"} {
		if !tableExists(t, database, table) {
			t.Errorf("expected table %s to exist", table)
		}
	}

	version, err := CurrentVersion(ctx, database)
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if version != LatestVersion() {
		t.Errorf("version = %d, want %d", version, LatestVersion())
	}
}

func TestOpen_CreatesDirectoryAndReopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "jsnb.db")

	first, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := first.Exec("INSERT INTO sheets (id, name, position) VALUES ('s1', 'Sheet', 0)"); err != nil {
		t.Fatalf("failed to insert sheet: %v", err)
	}
	first.Close()

	second, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer second.Close()

	var name string
	if err := second.QueryRow("SELECT name FROM sheets WHERE id = 's1'").Scan(&name); err != nil {
		t.Fatalf("expected sheet to survive reopen: %v", err)
	}
	if name != "Sheet" {
		t.Errorf("name = %q, want %q", name, "Sheet")
	}
}

func TestRunMigrations_UpgradesOlderDatabase(t *testing.T) {
	ctx := context.Background()
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	database.SetMaxOpenConns(1)
	defer database.Close()

	// Simulate a database created before the run log existed.
	if err := createVersionTable(ctx, database); err != nil {
		t.Fatal(err)
	}
	tx, err := database.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if err := migrationV1(ctx, tx); err != nil {
		t.Fatalf("migrationV1 error = %v", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if tableExists(t, database, "run_log") {
		t.Fatal("run_log should not exist before migrating")
	}

	if err := InitSchema(ctx, database); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}

	if !tableExists(t, database, "run_log") {
		t.Error("expected run_log after migration")
	}
	version, err := CurrentVersion(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HOME", "/tmp/jsnb-home")

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error = %v", err)
	}
	if want := filepath.Join("/tmp/jsnb-home", ".jsnb", "jsnb.db"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}
