// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import "context"

// NotebookService defines the primary port for editing the notebook.
// Sheet indexes of -1 refer to the selected sheet.
type NotebookService interface {
	// GetNotebook returns every sheet with its blocks.
	GetNotebook(ctx context.Context) (*Notebook, error)

	// GetSheet retrieves a sheet by index.
	GetSheet(ctx context.Context, index int) (*Sheet, error)

	// AddSheet appends a new sheet.
	AddSheet(ctx context.Context, req AddSheetRequest) (*Sheet, error)

	// RemoveSheet removes a sheet. The last sheet cannot be removed.
	RemoveSheet(ctx context.Context, index int) error

	// SelectSheet changes the selected sheet.
	SelectSheet(ctx context.Context, index int) error

	// RenameSheet renames a sheet.
	RenameSheet(ctx context.Context, index int, name string) error

	// AddBlock appends or inserts an empty block.
	AddBlock(ctx context.Context, req AddBlockRequest) (*Block, error)

	// EditBlock replaces a block's text or current source. Output is untouched.
	EditBlock(ctx context.Context, req EditBlockRequest) (*Block, error)

	// RemoveBlock removes a block.
	RemoveBlock(ctx context.Context, sheetIndex, blockIndex int) error

	// Subscribe registers an observer for notebook changes.
	Subscribe(fn func(Event)) (unsubscribe func())
}

// AddSheetRequest contains parameters for adding a sheet.
type AddSheetRequest struct {
	Name string // Defaults to "Sheet"
}

// AddBlockRequest contains parameters for adding a block.
type AddBlockRequest struct {
	SheetIndex int
	Kind       string // "code" or "text"
	At         int    // Insert position; -1 appends
	Content    string // Optional initial text or source
}

// EditBlockRequest contains parameters for editing a block.
type EditBlockRequest struct {
	SheetIndex int
	BlockIndex int
	Content    string
}

// Notebook represents the notebook at the port boundary.
type Notebook struct {
	Sheets        []*Sheet
	SelectedIndex int
}

// Sheet represents a sheet at the port boundary.
type Sheet struct {
	Index    int
	ID       string
	Name     string
	Selected bool
	Blocks   []*Block
}

// Block represents a block at the port boundary.
type Block struct {
	Index           int
	ID              string
	Kind            string
	Text            string
	Source          string
	AttemptedSource string
	Status          string // not_run, running, succeeded, failed; empty for text blocks
	Value           any
	Error           string
	Stale           bool
}

// Event is a notebook change notification.
type Event struct {
	Type    string
	SheetID string
	Index   int
	Block   *Block
}
