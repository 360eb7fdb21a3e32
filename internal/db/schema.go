package db

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
// It reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Repository tests load
// it through GetSchemaSQL() instead of declaring their own tables, so a column that
// repository code references but the schema lacks fails with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration to migrations.go
//  2. Update SchemaSQL here
//  3. Run `go test ./...` to verify alignment
const SchemaSQL = `
-- Sheets (ordered by position)
CREATE TABLE IF NOT EXISTS sheets (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	position INTEGER NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Blocks (owned by a sheet, ordered by position)
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

-- Notebook state (single row)
CREATE TABLE IF NOT EXISTS notebook_state (
	id INTEGER PRIMARY KEY CHECK(id = 1),
	selected_index INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Run log (one row per executed block; survives sheet removal)
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
`

// InitSchema creates the schema on a fresh database and migrates an existing one.
func InitSchema(ctx context.Context, db *sql.DB) error {
	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}
	if tableCount > 0 {
		return RunMigrations(ctx, db)
	}

	// Fresh install - create the current schema directly and mark every migration applied
	if _, err := db.ExecContext(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := createVersionTable(ctx, db); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
