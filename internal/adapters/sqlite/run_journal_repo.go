package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kdougan/js-notebook/internal/ports/secondary"
)

// RunJournalRepository implements secondary.RunJournal with SQLite.
type RunJournalRepository struct {
	db *sql.DB
}

// NewRunJournalRepository creates a new SQLite run journal repository.
func NewRunJournalRepository(db *sql.DB) *RunJournalRepository {
	return &RunJournalRepository{db: db}
}

// Record persists a new run entry.
func (r *RunJournalRepository) Record(ctx context.Context, entry *secondary.RunEntryRecord) error {
	var errorKind, errorMsg, actorID sql.NullString
	if entry.ErrorKind != "" {
		errorKind = sql.NullString{String: entry.ErrorKind, Valid: true}
	}
	if entry.Error != "" {
		errorMsg = sql.NullString{String: entry.Error, Valid: true}
	}
	if entry.ActorID != "" {
		actorID = sql.NullString{String: entry.ActorID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO run_log (id, run_id, sheet_id, block_id, decision, status, error_kind, error, actor_id, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.RunID,
		entry.SheetID,
		entry.BlockID,
		entry.Decision,
		entry.Status,
		errorKind,
		errorMsg,
		actorID,
		entry.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to record run entry: %w", err)
	}

	return nil
}

// List retrieves run entries matching the given filters, newest first.
func (r *RunJournalRepository) List(ctx context.Context, filters secondary.RunEntryFilters) ([]*secondary.RunEntryRecord, error) {
	query := `SELECT id, run_id, sheet_id, block_id, decision, status, error_kind, error, actor_id, duration_ms, timestamp FROM run_log WHERE 1=1`
	args := []any{}

	if filters.SheetID != "" {
		query += " AND sheet_id = ?"
		args = append(args, filters.SheetID)
	}

	if filters.BlockID != "" {
		query += " AND block_id = ?"
		args = append(args, filters.BlockID)
	}

	if filters.RunID != "" {
		query += " AND run_id = ?"
		args = append(args, filters.RunID)
	}

	// rowid breaks ties within the same second.
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list run entries: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.RunEntryRecord
	for rows.Next() {
		var (
			errorKind sql.NullString
			errorMsg  sql.NullString
			actorID   sql.NullString
			timestamp time.Time
		)

		record := &secondary.RunEntryRecord{}
		err := rows.Scan(&record.ID,
			&record.RunID,
			&record.SheetID,
			&record.BlockID,
			&record.Decision,
			&record.Status,
			&errorKind,
			&errorMsg,
			&actorID,
			&record.DurationMS,
			&timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run entry: %w", err)
		}
		record.ErrorKind = errorKind.String
		record.Error = errorMsg.String
		record.ActorID = actorID.String
		record.Timestamp = timestamp.Format(time.RFC3339)

		entries = append(entries, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list run entries: %w", err)
	}

	return entries, nil
}
