package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/kdougan/js-notebook/internal/models"
	"github.com/kdougan/js-notebook/internal/ports/secondary"
)

// NotebookStore holds the live notebook shared by the services and writes it back
// to the repository at explicit save points.
type NotebookStore struct {
	notebook *models.Notebook
	repo     secondary.NotebookRepository

	saveMu sync.Mutex
}

// LoadNotebookStore restores the stored notebook, or starts a fresh one when nothing
// has been saved. Outputs are restored verbatim; nothing is re-executed.
func LoadNotebookStore(ctx context.Context, repo secondary.NotebookRepository, ids secondary.IDGenerator) (*NotebookStore, error) {
	record, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notebook: %w", err)
	}
	return &NotebookStore{notebook: recordToNotebook(record, ids), repo: repo}, nil
}

// Notebook returns the live aggregate.
func (s *NotebookStore) Notebook() *models.Notebook {
	return s.notebook
}

// Save writes a snapshot of the notebook to the repository.
func (s *NotebookStore) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := s.repo.Save(ctx, notebookToRecord(s.notebook)); err != nil {
		return fmt.Errorf("failed to save notebook: %w", err)
	}
	return nil
}

// sheet resolves a sheet index; -1 means the selected sheet.
func (s *NotebookStore) sheet(index int) (*models.Sheet, int, error) {
	if index == -1 {
		index = s.notebook.SelectedIndex()
	}
	sheet, err := s.notebook.Sheet(index)
	if err != nil {
		return nil, 0, err
	}
	return sheet, index, nil
}

func notebookToRecord(nb *models.Notebook) *secondary.NotebookRecord {
	sheets := nb.Sheets()
	record := &secondary.NotebookRecord{
		Sheets:        make([]*secondary.SheetRecord, len(sheets)),
		SelectedIndex: nb.SelectedIndex(),
	}
	for i, sheet := range sheets {
		blocks := sheet.Blocks()
		sr := &secondary.SheetRecord{
			ID:       sheet.ID(),
			Name:     sheet.Name(),
			Position: i,
			Blocks:   make([]*secondary.BlockRecord, len(blocks)),
		}
		for j, b := range blocks {
			sr.Blocks[j] = &secondary.BlockRecord{
				ID:              b.ID,
				SheetID:         sheet.ID(),
				Position:        j,
				Kind:            string(b.Kind),
				Text:            b.Text,
				Source:          b.Source,
				AttemptedSource: b.AttemptedSource,
				Status:          string(b.Output.Status),
				Value:           b.Output.Value,
				Error:           b.Output.Error,
			}
		}
		record.Sheets[i] = sr
	}
	return record
}

func recordToNotebook(record *secondary.NotebookRecord, ids secondary.IDGenerator) *models.Notebook {
	if record == nil {
		return models.NewNotebook(ids)
	}
	sheets := make([]*models.Sheet, 0, len(record.Sheets))
	for _, sr := range record.Sheets {
		blocks := make([]models.Block, 0, len(sr.Blocks))
		for _, br := range sr.Blocks {
			blocks = append(blocks, recordToBlock(br))
		}
		sheets = append(sheets, models.RestoreSheet(sr.ID, sr.Name, ids, blocks))
	}
	return models.RestoreNotebook(ids, sheets, record.SelectedIndex)
}

func recordToBlock(br *secondary.BlockRecord) models.Block {
	b := models.Block{
		ID:              br.ID,
		Kind:            models.BlockKind(br.Kind),
		Text:            br.Text,
		Source:          br.Source,
		AttemptedSource: br.AttemptedSource,
	}
	if !b.IsCode() {
		return b
	}
	switch models.OutputStatus(br.Status) {
	case models.StatusSucceeded:
		b.Output = models.Succeeded(br.Value)
	case models.StatusFailed:
		b.Output = models.Failed(br.Error)
	default:
		// A block saved while running never committed; it has no output.
		b.Output = models.Output{Status: models.StatusNotRun}
	}
	return b
}
