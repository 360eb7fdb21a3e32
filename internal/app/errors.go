package app

import (
	"errors"
	"fmt"
)

// ErrRunInProgress is returned when a run is requested for a sheet that already
// has one in flight.
var ErrRunInProgress = errors.New("run already in progress")

// ErrorKind classifies why a block attempt failed.
type ErrorKind string

// Block failure kinds
const (
	ParseFailure      ErrorKind = "parse_failure"
	EvaluationFailure ErrorKind = "evaluation_failure"
	ShapeViolation    ErrorKind = "shape_violation"
)

// BlockError is a failure confined to a single block. It is committed as the
// block's failed output and never aborts a run.
type BlockError struct {
	Kind ErrorKind
	Err  error
}

func (e *BlockError) Error() string {
	return e.Err.Error()
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

func blockErr(kind ErrorKind, format string, args ...any) *BlockError {
	return &BlockError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the failure kind of err, or "" when err is not a block failure.
func KindOf(err error) ErrorKind {
	var be *BlockError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}
