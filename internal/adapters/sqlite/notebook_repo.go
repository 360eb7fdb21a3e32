// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kdougan/js-notebook/internal/ports/secondary"
)

// NotebookRepository implements secondary.NotebookRepository with SQLite.
type NotebookRepository struct {
	db *sql.DB
}

// NewNotebookRepository creates a new SQLite notebook repository.
func NewNotebookRepository(db *sql.DB) *NotebookRepository {
	return &NotebookRepository{db: db}
}

// Load reads every sheet with its blocks in position order. It returns nil when
// nothing has been saved.
func (r *NotebookRepository) Load(ctx context.Context) (*secondary.NotebookRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin load: %w", err)
	}
	defer tx.Rollback()

	var selected sql.NullInt64
	err = tx.QueryRowContext(ctx, "SELECT selected_index FROM notebook_state WHERE id = 1").Scan(&selected)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get notebook state: %w", err)
	}

	sheets, err := r.loadSheets(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(sheets) == 0 && !selected.Valid {
		return nil, nil
	}

	byID := make(map[string]*secondary.SheetRecord, len(sheets))
	for _, s := range sheets {
		byID[s.ID] = s
	}
	if err := r.loadBlocks(ctx, tx, byID); err != nil {
		return nil, err
	}

	return &secondary.NotebookRecord{
		Sheets:        sheets,
		SelectedIndex: int(selected.Int64),
	}, nil
}

func (r *NotebookRepository) loadSheets(ctx context.Context, tx *sql.Tx) ([]*secondary.SheetRecord, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id, name, position FROM sheets ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	defer rows.Close()

	var sheets []*secondary.SheetRecord
	for rows.Next() {
		record := &secondary.SheetRecord{}
		if err := rows.Scan(&record.ID, &record.Name, &record.Position); err != nil {
			return nil, fmt.Errorf("failed to scan sheet: %w", err)
		}
		sheets = append(sheets, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	return sheets, nil
}

func (r *NotebookRepository) loadBlocks(ctx context.Context, tx *sql.Tx, sheets map[string]*secondary.SheetRecord) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, sheet_id, position, kind, text, source, attempted_source, status, value, error FROM blocks ORDER BY sheet_id, position`,
	)
	if err != nil {
		return fmt.Errorf("failed to list blocks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			value    sql.NullString
			errorMsg sql.NullString
		)
		record := &secondary.BlockRecord{}
		err := rows.Scan(&record.ID,
			&record.SheetID,
			&record.Position,
			&record.Kind,
			&record.Text,
			&record.Source,
			&record.AttemptedSource,
			&record.Status,
			&value,
			&errorMsg)
		if err != nil {
			return fmt.Errorf("failed to scan block: %w", err)
		}
		if value.Valid {
			if err := json.Unmarshal([]byte(value.String), &record.Value); err != nil {
				return fmt.Errorf("failed to decode output of block %s: %w", record.ID, err)
			}
		}
		record.Error = errorMsg.String

		sheet, ok := sheets[record.SheetID]
		if !ok {
			continue
		}
		sheet.Blocks = append(sheet.Blocks, record)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to list blocks: %w", err)
	}
	return nil
}

// Save replaces the stored notebook in one transaction.
func (r *NotebookRepository) Save(ctx context.Context, notebook *secondary.NotebookRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM blocks"); err != nil {
		return fmt.Errorf("failed to clear blocks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sheets"); err != nil {
		return fmt.Errorf("failed to clear sheets: %w", err)
	}

	for _, sheet := range notebook.Sheets {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO sheets (id, name, position) VALUES (?, ?, ?)",
			sheet.ID, sheet.Name, sheet.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to save sheet %s: %w", sheet.ID, err)
		}
		for _, block := range sheet.Blocks {
			if err := insertBlock(ctx, tx, sheet.ID, block); err != nil {
				return err
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO notebook_state (id, selected_index) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET selected_index = excluded.selected_index, updated_at = CURRENT_TIMESTAMP`,
		notebook.SelectedIndex,
	)
	if err != nil {
		return fmt.Errorf("failed to save notebook state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit notebook: %w", err)
	}
	return nil
}

func insertBlock(ctx context.Context, tx *sql.Tx, sheetID string, block *secondary.BlockRecord) error {
	var value, errorMsg sql.NullString
	if block.Value != nil {
		raw, err := json.Marshal(block.Value)
		if err != nil {
			return fmt.Errorf("failed to encode output of block %s: %w", block.ID, err)
		}
		value = sql.NullString{String: string(raw), Valid: true}
	}
	if block.Error != "" {
		errorMsg = sql.NullString{String: block.Error, Valid: true}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO blocks (id, sheet_id, position, kind, text, source, attempted_source, status, value, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		block.ID,
		sheetID,
		block.Position,
		block.Kind,
		block.Text,
		block.Source,
		block.AttemptedSource,
		block.Status,
		value,
		errorMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to save block %s: %w", block.ID, err)
	}
	return nil
}
