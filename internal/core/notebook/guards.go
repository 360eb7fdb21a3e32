// Package notebook contains the pure business rules for notebook editing and runs.
// This is part of the Functional Core - no I/O, only pure functions.
package notebook

import "fmt"

// SheetContext provides context for sheet removal guards.
type SheetContext struct {
	SheetCount int
	Index      int
}

// RunContext provides context for run guards.
// Populated by the caller with the sheet's run state.
type RunContext struct {
	SheetID    string
	BlockCount int
	StartIndex int
	InFlight   bool
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CanRemoveSheet evaluates whether a sheet can be removed.
// Rules:
// - Index must refer to an existing sheet
// - The last remaining sheet cannot be removed
func CanRemoveSheet(ctx SheetContext) GuardResult {
	if ctx.Index < 0 || ctx.Index >= ctx.SheetCount {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("sheet %d does not exist (notebook has %d sheets)", ctx.Index, ctx.SheetCount),
		}
	}
	if ctx.SheetCount <= 1 {
		return GuardResult{
			Allowed: false,
			Reason:  "cannot remove the last sheet - add another sheet first",
		}
	}
	return GuardResult{Allowed: true}
}

// CanStartRun evaluates whether a run may start on a sheet.
// Rules:
// - Only one run per sheet may be in flight
// - Start index must be within the sheet (an empty sheet only accepts 0)
func CanStartRun(ctx RunContext) GuardResult {
	if ctx.InFlight {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("sheet %s already has a run in progress", ctx.SheetID),
		}
	}
	if ctx.StartIndex < 0 || (ctx.StartIndex >= ctx.BlockCount && ctx.StartIndex != 0) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("start index %d is out of range (sheet has %d blocks)", ctx.StartIndex, ctx.BlockCount),
		}
	}
	return GuardResult{Allowed: true}
}
