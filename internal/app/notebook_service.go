package app

import (
	"context"
	"fmt"

	"github.com/kdougan/js-notebook/internal/core/notebook"
	"github.com/kdougan/js-notebook/internal/ctxutil"
	"github.com/kdougan/js-notebook/internal/models"
	"github.com/kdougan/js-notebook/internal/ports/primary"
)

// NotebookServiceImpl implements the NotebookService interface.
// Every successful mutation is followed by a save.
type NotebookServiceImpl struct {
	store *NotebookStore
}

// NewNotebookService creates a new NotebookService with injected dependencies.
func NewNotebookService(store *NotebookStore) *NotebookServiceImpl {
	return &NotebookServiceImpl{
		store: store,
	}
}

// GetNotebook returns every sheet with its blocks.
func (s *NotebookServiceImpl) GetNotebook(ctx context.Context) (*primary.Notebook, error) {
	nb := s.store.Notebook()
	selected := nb.SelectedIndex()
	sheets := nb.Sheets()

	out := &primary.Notebook{
		Sheets:        make([]*primary.Sheet, len(sheets)),
		SelectedIndex: selected,
	}
	for i, sheet := range sheets {
		out.Sheets[i] = sheetToDTO(i, i == selected, sheet)
	}
	return out, nil
}

// GetSheet retrieves a sheet by index.
func (s *NotebookServiceImpl) GetSheet(ctx context.Context, index int) (*primary.Sheet, error) {
	sheet, idx, err := s.store.sheet(index)
	if err != nil {
		return nil, err
	}
	return sheetToDTO(idx, idx == s.store.Notebook().SelectedIndex(), sheet), nil
}

// AddSheet appends a new sheet.
func (s *NotebookServiceImpl) AddSheet(ctx context.Context, req primary.AddSheetRequest) (*primary.Sheet, error) {
	nb := s.store.Notebook()
	sheet := nb.AddSheet(req.Name)

	if err := s.store.Save(ctx); err != nil {
		return nil, err
	}
	ctxutil.LoggerFromContext(ctx).Info("sheet added", "sheet", sheet.ID(), "name", sheet.Name())
	return sheetToDTO(nb.SheetCount()-1, false, sheet), nil
}

// RemoveSheet removes a sheet. The last sheet cannot be removed.
func (s *NotebookServiceImpl) RemoveSheet(ctx context.Context, index int) error {
	nb := s.store.Notebook()

	guard := notebook.CanRemoveSheet(notebook.SheetContext{
		SheetCount: nb.SheetCount(),
		Index:      index,
	})
	if err := guard.Error(); err != nil {
		return err
	}

	if err := nb.RemoveSheet(index); err != nil {
		return fmt.Errorf("failed to remove sheet: %w", err)
	}
	return s.store.Save(ctx)
}

// SelectSheet changes the selected sheet.
func (s *NotebookServiceImpl) SelectSheet(ctx context.Context, index int) error {
	if err := s.store.Notebook().Select(index); err != nil {
		return fmt.Errorf("failed to select sheet: %w", err)
	}
	return s.store.Save(ctx)
}

// RenameSheet renames a sheet.
func (s *NotebookServiceImpl) RenameSheet(ctx context.Context, index int, name string) error {
	if name == "" {
		return fmt.Errorf("sheet name cannot be empty")
	}
	sheet, _, err := s.store.sheet(index)
	if err != nil {
		return err
	}
	sheet.Rename(name)
	return s.store.Save(ctx)
}

// AddBlock appends or inserts an empty block, optionally with initial content.
func (s *NotebookServiceImpl) AddBlock(ctx context.Context, req primary.AddBlockRequest) (*primary.Block, error) {
	sheet, _, err := s.store.sheet(req.SheetIndex)
	if err != nil {
		return nil, err
	}

	kind := models.BlockKind(req.Kind)
	at := req.At
	if at < 0 {
		at = sheet.Len()
	}
	block, err := sheet.InsertBlock(at, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to add block: %w", err)
	}
	if req.Content != "" {
		if block, err = sheet.SetContent(at, req.Content); err != nil {
			return nil, fmt.Errorf("failed to set block content: %w", err)
		}
	}

	if err := s.store.Save(ctx); err != nil {
		return nil, err
	}
	return blockToDTO(at, block), nil
}

// EditBlock replaces a block's text or current source. Output is untouched.
func (s *NotebookServiceImpl) EditBlock(ctx context.Context, req primary.EditBlockRequest) (*primary.Block, error) {
	sheet, _, err := s.store.sheet(req.SheetIndex)
	if err != nil {
		return nil, err
	}
	block, err := sheet.SetContent(req.BlockIndex, req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to edit block: %w", err)
	}

	if err := s.store.Save(ctx); err != nil {
		return nil, err
	}
	return blockToDTO(req.BlockIndex, block), nil
}

// RemoveBlock removes a block.
func (s *NotebookServiceImpl) RemoveBlock(ctx context.Context, sheetIndex, blockIndex int) error {
	sheet, _, err := s.store.sheet(sheetIndex)
	if err != nil {
		return err
	}
	if _, err := sheet.RemoveBlock(blockIndex); err != nil {
		return fmt.Errorf("failed to remove block: %w", err)
	}
	return s.store.Save(ctx)
}

// Subscribe registers an observer for notebook changes.
func (s *NotebookServiceImpl) Subscribe(fn func(primary.Event)) func() {
	return s.store.Notebook().Subscribe(func(ev models.Event) {
		fn(eventToDTO(ev))
	})
}
