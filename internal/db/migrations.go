package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kdougan/js-notebook/internal/ctxutil"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(context.Context, *sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_sheets_and_blocks",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_run_log",
		Up:      migrationV2,
	},
}

// LatestVersion is the schema version a fully migrated database reports.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// CurrentVersion returns the highest applied migration.
func CurrentVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return version, nil
}

func createVersionTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// RunMigrations executes all pending migrations, each in its own transaction.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	logger := ctxutil.LoggerFromContext(ctx)

	if err := createVersionTable(ctx, db); err != nil {
		return err
	}
	currentVersion, err := CurrentVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		logger.Info("running migration", "version", migration.Version, "name", migration.Name)

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(ctx, tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the notebook tables
func migrationV1(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sheets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			position INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS blocks (
			id TEXT NOT NULL,
			sheet_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('text', 'code')),
			text TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			attempted_source TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL CHECK(status IN ('', 'not_run', 'running', 'succeeded', 'failed')) DEFAULT 'not_run',
			value TEXT,
			error TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (sheet_id, id),
			FOREIGN KEY (sheet_id) REFERENCES sheets(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_blocks_sheet_position ON blocks(sheet_id, position);

		CREATE TABLE IF NOT EXISTS notebook_state (
			id INTEGER PRIMARY KEY CHECK(id = 1),
			selected_index INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// migrationV2 adds the run log
func migrationV2(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS run_log (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			sheet_id TEXT NOT NULL,
			block_id TEXT NOT NULL,
			decision TEXT NOT NULL,
			status TEXT NOT NULL,
			error_kind TEXT,
			error TEXT,
			actor_id TEXT,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_run_log_sheet ON run_log(sheet_id);
		CREATE INDEX IF NOT EXISTS idx_run_log_block ON run_log(block_id);
		CREATE INDEX IF NOT EXISTS idx_run_log_timestamp ON run_log(timestamp);
	`)
	return err
}
