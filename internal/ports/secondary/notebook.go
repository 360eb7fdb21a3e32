// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// NotebookRepository defines the secondary port for notebook persistence.
// The whole notebook is loaded and saved as one unit.
type NotebookRepository interface {
	// Load returns the stored notebook, or nil when nothing has been saved yet.
	Load(ctx context.Context) (*NotebookRecord, error)

	// Save replaces the stored notebook.
	Save(ctx context.Context, notebook *NotebookRecord) error
}

// NotebookRecord represents the notebook as stored in persistence.
type NotebookRecord struct {
	Sheets        []*SheetRecord
	SelectedIndex int
}

// SheetRecord represents a sheet as stored in persistence.
type SheetRecord struct {
	ID       string
	Name     string
	Position int
	Blocks   []*BlockRecord
}

// BlockRecord represents a block as stored in persistence.
type BlockRecord struct {
	ID              string
	SheetID         string
	Position        int
	Kind            string
	Text            string
	Source          string
	AttemptedSource string
	Status          string
	Value           any // JSON-compatible; encoded by the adapter
	Error           string
}

// IDGenerator produces identifiers for sheets and blocks.
type IDGenerator interface {
	NewID() string
}

// Evaluator defines the secondary port for the isolated script evaluator.
// Implementations must not share state between requests.
type Evaluator interface {
	// Evaluate runs a self-contained script and returns its final value.
	// Script failures are reported in EvaluateResponse.Error; the returned error is
	// reserved for transport failures and cancellation.
	Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error)
}

// EvaluateRequest is the evaluator request contract.
type EvaluateRequest struct {
	Script string `json:"script"`
}

// EvaluateResponse is the evaluator response contract. Exactly one of Output or
// Error is meaningful.
type EvaluateResponse struct {
	Output any    `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// RunJournal defines the secondary port for recording block attempts.
type RunJournal interface {
	// Record persists one block attempt.
	Record(ctx context.Context, entry *RunEntryRecord) error

	// List retrieves attempts matching the given filters, newest first.
	List(ctx context.Context, filters RunEntryFilters) ([]*RunEntryRecord, error)
}

// RunEntryRecord represents a block attempt as stored in persistence.
type RunEntryRecord struct {
	ID         string
	RunID      string
	SheetID    string
	BlockID    string
	Decision   string
	Status     string
	ErrorKind  string
	Error      string
	ActorID    string
	DurationMS int64
	Timestamp  string
}

// RunEntryFilters contains filter options for querying run entries.
type RunEntryFilters struct {
	SheetID string
	BlockID string
	RunID   string
	Limit   int
}
