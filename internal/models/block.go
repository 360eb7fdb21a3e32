// Package models holds the notebook aggregate: a notebook owns sheets, a sheet owns
// an ordered sequence of blocks. All mutation goes through Sheet and Notebook methods
// so observers and concurrent readers see consistent snapshots.
package models

import "strings"

// BlockKind distinguishes display-only text blocks from executable code blocks.
type BlockKind string

// Block kinds
const (
	BlockKindText BlockKind = "text"
	BlockKindCode BlockKind = "code"
)

// Valid reports whether k is a known block kind.
func (k BlockKind) Valid() bool {
	return k == BlockKindText || k == BlockKindCode
}

// OutputStatus is the lifecycle state of a code block's output.
type OutputStatus string

// Output statuses
const (
	StatusNotRun    OutputStatus = "not_run"
	StatusRunning   OutputStatus = "running"
	StatusSucceeded OutputStatus = "succeeded"
	StatusFailed    OutputStatus = "failed"
)

// Output is the last committed result of a code block.
// Value is only meaningful for StatusSucceeded, Error only for StatusFailed.
type Output struct {
	Status OutputStatus
	Value  any
	Error  string
}

// Succeeded builds a successful output.
func Succeeded(value any) Output {
	return Output{Status: StatusSucceeded, Value: value}
}

// Failed builds a failed output with a null value.
func Failed(message string) Output {
	return Output{Status: StatusFailed, Error: message}
}

// Block is a single unit of a sheet.
//
// Text blocks only use Text. Code blocks use Source (what the user currently has),
// AttemptedSource (what was last submitted for execution) and Output. The two
// sources diverge whenever a block is edited and not re-run.
type Block struct {
	ID              string
	Kind            BlockKind
	Text            string
	Source          string
	AttemptedSource string
	Output          Output
}

// IsCode reports whether the block participates in execution.
func (b Block) IsCode() bool {
	return b.Kind == BlockKindCode
}

// Stale reports whether the stored output was produced from a source other than the
// current one. Attempted sources are stored trimmed.
func (b Block) Stale() bool {
	if !b.IsCode() || b.Output.Status == StatusNotRun {
		return false
	}
	return b.AttemptedSource != strings.TrimSpace(b.Source)
}

// KeyedValue returns the output value as a keyed structure when the block
// succeeded with one.
func (b Block) KeyedValue() (map[string]any, bool) {
	if !b.IsCode() || b.Output.Status != StatusSucceeded {
		return nil, false
	}
	m, ok := b.Output.Value.(map[string]any)
	return m, ok
}

func newBlock(id string, kind BlockKind) *Block {
	b := &Block{ID: id, Kind: kind}
	if kind == BlockKindCode {
		b.Output = Output{Status: StatusNotRun}
	}
	return b
}
