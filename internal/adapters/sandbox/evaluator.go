// Package sandbox contains the in-process script evaluator.
package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/kdougan/js-notebook/internal/ports/secondary"
)

// DefaultMaxCallStackSize bounds recursion inside a block.
const DefaultMaxCallStackSize = 1024

// Evaluator implements secondary.Evaluator on an embedded goja runtime.
// Each request gets a fresh runtime with no host bindings.
type Evaluator struct {
	latency      time.Duration
	maxCallStack int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLatency delays every evaluation by d before the script starts.
func WithLatency(d time.Duration) Option {
	return func(e *Evaluator) {
		e.latency = d
	}
}

// WithMaxCallStackSize overrides the runtime call stack limit.
func WithMaxCallStackSize(n int) Option {
	return func(e *Evaluator) {
		e.maxCallStack = n
	}
}

// NewEvaluator creates a new sandbox evaluator.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{maxCallStack: DefaultMaxCallStackSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs req.Script and returns its completion value as JSON-decoded data.
// Thrown exceptions and syntax errors are reported in the response. The returned
// error is non-nil only when ctx ends before the script finishes.
func (e *Evaluator) Evaluate(ctx context.Context, req secondary.EvaluateRequest) (*secondary.EvaluateResponse, error) {
	if e.latency > 0 {
		timer := time.NewTimer(e.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vm := goja.New()
	vm.SetMaxCallStackSize(e.maxCallStack)
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	value, err := vm.RunString(req.Script)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cause := ctx.Err(); cause != nil {
				return nil, cause
			}
			return nil, fmt.Errorf("evaluation interrupted: %w", err)
		}
		return &secondary.EvaluateResponse{Error: errorMessage(err)}, nil
	}

	out, err := export(value)
	if err != nil {
		return &secondary.EvaluateResponse{Error: fmt.Sprintf("failed to export result: %v", err)}, nil
	}
	return &secondary.EvaluateResponse{Output: out}, nil
}

// export converts a runtime value to plain JSON data. Objects go through the
// runtime's own JSON serialization so numbers decode as float64 and functions
// become null.
func export(v goja.Value) (any, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return v.Export(), nil
	}
	raw, err := obj.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func errorMessage(err error) string {
	var overflow *goja.StackOverflowError
	if errors.As(err, &overflow) {
		return "maximum call stack size exceeded"
	}
	var exc *goja.Exception
	if errors.As(err, &exc) && exc.Value() != nil {
		return exc.Value().String()
	}
	return err.Error()
}
