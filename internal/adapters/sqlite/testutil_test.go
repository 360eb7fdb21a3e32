// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB() and
// the helpers below instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kdougan/js-notebook/internal/db"
	"github.com/kdougan/js-notebook/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// This is the single shared test database setup function for all repository tests.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	// Use the authoritative schema from schema.go
	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// sampleNotebook returns a two-sheet notebook covering every block state.
func sampleNotebook() *secondary.NotebookRecord {
	return &secondary.NotebookRecord{
		SelectedIndex: 1,
		Sheets: []*secondary.SheetRecord{
			{
				ID:       "sheet-a",
				Name:     "Inputs",
				Position: 0,
				Blocks: []*secondary.BlockRecord{
					{ID: "b1", SheetID: "sheet-a", Position: 0, Kind: "text", Text: "# Notes"},
					{
						ID: "b2", SheetID: "sheet-a", Position: 1, Kind: "code",
						Source: "let x = 5;", AttemptedSource: "let x = 5;",
						Status: "succeeded", Value: map[string]any{"x": float64(5)},
					},
					{
						ID: "b3", SheetID: "sheet-a", Position: 2, Kind: "code",
						Source: "let y = x +;", AttemptedSource: "let y = x +;",
						Status: "failed", Error: "parse error at line 1, column 13: Unexpected token ;",
					},
				},
			},
			{
				ID:       "sheet-b",
				Name:     "Scratch",
				Position: 1,
				Blocks: []*secondary.BlockRecord{
					{
						ID: "b1", SheetID: "sheet-b", Position: 0, Kind: "code",
						Source: "let list = [1, 2];\n", AttemptedSource: "let list = [1];",
						Status: "succeeded", Value: map[string]any{"list": []any{float64(1)}},
					},
					{ID: "b2", SheetID: "sheet-b", Position: 1, Kind: "code", Status: "not_run"},
				},
			},
		},
	}
}
