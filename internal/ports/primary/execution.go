package primary

import "context"

// ExecutionService defines the primary port for running blocks.
type ExecutionService interface {
	// Run executes a sheet from StartIndex to the end. Blocks after the first code
	// block only run when forced or when they reference an inherited name.
	// Block failures are reported per block, never as an error.
	Run(ctx context.Context, req RunRequest) (*RunReport, error)

	// RunAll runs every code block of a sheet.
	RunAll(ctx context.Context, sheetIndex int) (*RunReport, error)

	// History lists recent block attempts, newest first.
	History(ctx context.Context, req HistoryRequest) ([]*RunEntry, error)
}

// RunRequest contains parameters for a run.
type RunRequest struct {
	SheetIndex int // -1 for the selected sheet
	StartIndex int
	Force      bool
}

// RunReport summarizes a finished run.
type RunReport struct {
	RunID      string
	SheetID    string
	StartIndex int
	Force      bool
	Blocks     []BlockRun
}

// Executed returns how many blocks were submitted for evaluation.
func (r *RunReport) Executed() int {
	n := 0
	for _, b := range r.Blocks {
		if b.Executed {
			n++
		}
	}
	return n
}

// Failed returns how many executed blocks failed.
func (r *RunReport) Failed() int {
	n := 0
	for _, b := range r.Blocks {
		if b.Executed && b.Status == "failed" {
			n++
		}
	}
	return n
}

// BlockRun describes what a run did with one block.
type BlockRun struct {
	Index     int
	BlockID   string
	Decision  string
	Executed  bool
	Status    string
	ErrorKind string // parse_failure, evaluation_failure or shape_violation
	Error     string
	Duration  string
}

// HistoryRequest contains filters for run history.
type HistoryRequest struct {
	SheetID string
	BlockID string
	Limit   int
}

// RunEntry is one recorded block attempt.
type RunEntry struct {
	ID        string
	RunID     string
	SheetID   string
	BlockID   string
	Decision  string
	Status    string
	ErrorKind string
	Error     string
	Actor     string
	Duration  string
	Timestamp string
}
