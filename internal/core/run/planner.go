// Package run contains the pure rules that decide which blocks a run executes.
// This is part of the Functional Core - no I/O, only pure functions.
package run

// Decision is the outcome for a single block within a run.
type Decision string

// Decisions
const (
	SkipText        Decision = "skip_text"
	SkipIndependent Decision = "skip_independent"
	RunFirst        Decision = "run_first"
	RunForced       Decision = "run_forced"
	RunDependent    Decision = "run_dependent"
	RunUnparsable   Decision = "run_unparsable"
)

// Executes reports whether the block should be submitted for evaluation.
func (d Decision) Executes() bool {
	switch d {
	case RunFirst, RunForced, RunDependent, RunUnparsable:
		return true
	default:
		return false
	}
}

// BlockInput contains pre-computed facts about one block in a run.
type BlockInput struct {
	IsCode bool
	// First is set for the first code block the run reaches.
	First bool
	Force bool
	// Depends is the analyzer's answer; only read when AnalysisFailed is false.
	Depends        bool
	AnalysisFailed bool
}

// Decide picks what to do with a block.
// Text blocks never run. The first code block always runs. Later code blocks run
// when forced, when they reference an inherited name, or when their source cannot be
// analyzed so the parse failure lands on the block itself.
func Decide(in BlockInput) Decision {
	switch {
	case !in.IsCode:
		return SkipText
	case in.First:
		return RunFirst
	case in.Force:
		return RunForced
	case in.AnalysisFailed:
		return RunUnparsable
	case in.Depends:
		return RunDependent
	default:
		return SkipIndependent
	}
}

// NeedsAnalysis reports whether Decide would consult the analyzer for this block.
func NeedsAnalysis(in BlockInput) bool {
	return in.IsCode && !in.First && !in.Force
}
