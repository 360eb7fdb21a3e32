package app

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/kdougan/js-notebook/internal/core/environment"
	"github.com/kdougan/js-notebook/internal/core/notebook"
	"github.com/kdougan/js-notebook/internal/core/output"
	"github.com/kdougan/js-notebook/internal/core/run"
	"github.com/kdougan/js-notebook/internal/core/script"
	"github.com/kdougan/js-notebook/internal/ctxutil"
	"github.com/kdougan/js-notebook/internal/models"
	"github.com/kdougan/js-notebook/internal/ports/primary"
	"github.com/kdougan/js-notebook/internal/ports/secondary"
	"github.com/kdougan/js-notebook/internal/telemetry"
)

// DefaultEvaluationTimeout bounds a single block evaluation.
const DefaultEvaluationTimeout = 5 * time.Second

// ExecutionConfig configures the ExecutionService.
type ExecutionConfig struct {
	Timeout time.Duration
}

// ExecutionServiceImpl implements the ExecutionService interface.
// It is the run orchestrator: blocks are visited strictly in order and block k+1 is
// only considered once block k has committed.
type ExecutionServiceImpl struct {
	store     *NotebookStore
	evaluator secondary.Evaluator
	journal   secondary.RunJournal
	ids       secondary.IDGenerator
	telemetry *telemetry.Provider
	timeout   time.Duration

	mu      sync.Mutex
	running map[string]bool // sheet ID -> run in flight
}

// NewExecutionService creates a new ExecutionService with injected dependencies.
// journal and tel may be nil.
func NewExecutionService(
	store *NotebookStore,
	evaluator secondary.Evaluator,
	journal secondary.RunJournal,
	ids secondary.IDGenerator,
	tel *telemetry.Provider,
	cfg ExecutionConfig,
) *ExecutionServiceImpl {
	if tel == nil {
		tel = telemetry.Noop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultEvaluationTimeout
	}
	return &ExecutionServiceImpl{
		store:     store,
		evaluator: evaluator,
		journal:   journal,
		ids:       ids,
		telemetry: tel,
		timeout:   timeout,
		running:   make(map[string]bool),
	}
}

// RunAll runs every code block of a sheet.
func (s *ExecutionServiceImpl) RunAll(ctx context.Context, sheetIndex int) (*primary.RunReport, error) {
	return s.Run(ctx, primary.RunRequest{SheetIndex: sheetIndex, StartIndex: 0, Force: true})
}

// Run executes a sheet from req.StartIndex to the end.
func (s *ExecutionServiceImpl) Run(ctx context.Context, req primary.RunRequest) (*primary.RunReport, error) {
	sheet, _, err := s.store.sheet(req.SheetIndex)
	if err != nil {
		return nil, err
	}
	if err := s.acquire(sheet, req.StartIndex); err != nil {
		return nil, err
	}
	defer s.release(sheet.ID())

	runID := s.ids.NewID()
	logger := ctxutil.LoggerFromContext(ctx).With("run", runID, "sheet", sheet.ID())
	ctx = ctxutil.WithLogger(ctx, logger)
	ctx, endRun := s.telemetry.StartRun(ctx, sheet.ID(), req.StartIndex, req.Force)
	defer endRun()

	logger.Info("run started", "start", req.StartIndex, "force", req.Force)
	report := &primary.RunReport{
		RunID:      runID,
		SheetID:    sheet.ID(),
		StartIndex: req.StartIndex,
		Force:      req.Force,
	}

	first := true
	for i := req.StartIndex; i < sheet.Len(); i++ {
		block, err := sheet.Block(i)
		if err != nil {
			break
		}

		in := run.BlockInput{IsCode: block.IsCode(), First: first, Force: req.Force}
		if run.NeedsAnalysis(in) {
			env := environment.Build(sheet.Blocks(), i)
			depends, aerr := script.DependsOn(block.Source, env)
			in.Depends = depends
			in.AnalysisFailed = aerr != nil
		}
		decision := run.Decide(in)
		if block.IsCode() {
			first = false
		}

		entry := primary.BlockRun{Index: i, BlockID: block.ID, Decision: string(decision)}
		if !decision.Executes() {
			if block.IsCode() {
				entry.Status = string(block.Output.Status)
				s.telemetry.RecordSkip(ctx, string(decision))
				logger.Debug("block skipped", "index", i, "block", block.ID, "decision", decision)
			}
			report.Blocks = append(report.Blocks, entry)
			continue
		}

		logger.Debug("block scheduled", "index", i, "block", block.ID, "decision", decision)
		s.executeBlock(ctx, runID, sheet, i, block, decision, &entry)
		report.Blocks = append(report.Blocks, entry)
	}

	logger.Info("run finished", "executed", report.Executed(), "failed", report.Failed())
	if err := s.store.Save(ctx); err != nil {
		return report, err
	}
	return report, nil
}

// History lists recent block attempts, newest first.
func (s *ExecutionServiceImpl) History(ctx context.Context, req primary.HistoryRequest) ([]*primary.RunEntry, error) {
	if s.journal == nil {
		return nil, nil
	}
	records, err := s.journal.List(ctx, secondary.RunEntryFilters{
		SheetID: req.SheetID,
		BlockID: req.BlockID,
		Limit:   req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list run history: %w", err)
	}

	entries := make([]*primary.RunEntry, len(records))
	for i, r := range records {
		entries[i] = &primary.RunEntry{
			ID:        r.ID,
			RunID:     r.RunID,
			SheetID:   r.SheetID,
			BlockID:   r.BlockID,
			Decision:  r.Decision,
			Status:    r.Status,
			ErrorKind: r.ErrorKind,
			Error:     r.Error,
			Actor:     r.ActorID,
			Duration:  (time.Duration(r.DurationMS) * time.Millisecond).String(),
			Timestamp: r.Timestamp,
		}
	}
	return entries, nil
}

// acquire takes the per-sheet run guard.
func (s *ExecutionServiceImpl) acquire(sheet *models.Sheet, start int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inFlight := s.running[sheet.ID()]
	guard := notebook.CanStartRun(notebook.RunContext{
		SheetID:    sheet.ID(),
		BlockCount: sheet.Len(),
		StartIndex: start,
		InFlight:   inFlight,
	})
	if !guard.Allowed {
		if inFlight {
			return fmt.Errorf("%w: %s", ErrRunInProgress, guard.Reason)
		}
		return guard.Error()
	}
	s.running[sheet.ID()] = true
	return nil
}

func (s *ExecutionServiceImpl) release(sheetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, sheetID)
}

// executeBlock runs one block through the attempt protocol and fills entry with the
// outcome. Block failures are committed on the block; they never escape.
func (s *ExecutionServiceImpl) executeBlock(ctx context.Context, runID string, sheet *models.Sheet, index int, block models.Block, decision run.Decision, entry *primary.BlockRun) {
	logger := ctxutil.LoggerFromContext(ctx)
	attempted := strings.TrimSpace(block.Source)
	if _, err := sheet.BeginAttempt(block.ID, attempted); err != nil {
		logger.Warn("block disappeared before it could run", "block", block.ID, "error", err)
		entry.Status = string(models.StatusNotRun)
		return
	}
	entry.Executed = true

	start := time.Now()
	blockCtx, done := s.telemetry.TrackBlock(ctx, block.ID, index)
	value, evalErr := s.evaluate(blockCtx, sheet.Blocks(), index, attempted)
	done(evalErr)
	elapsed := time.Since(start)

	out := models.Succeeded(value)
	if evalErr != nil {
		out = models.Failed(evalErr.Error())
		entry.ErrorKind = string(KindOf(evalErr))
		entry.Error = evalErr.Error()
		logger.Warn("block failed", "index", index, "block", block.ID, "kind", entry.ErrorKind, "error", evalErr)
	} else {
		logger.Debug("block succeeded", "index", index, "block", block.ID, "duration", elapsed)
	}
	if _, err := sheet.Commit(block.ID, out); err != nil {
		logger.Warn("block removed before commit", "block", block.ID, "error", err)
	}
	entry.Status = string(out.Status)
	entry.Duration = elapsed.String()

	s.record(ctx, &secondary.RunEntryRecord{
		RunID:      runID,
		SheetID:    sheet.ID(),
		BlockID:    block.ID,
		Decision:   string(decision),
		Status:     entry.Status,
		ErrorKind:  entry.ErrorKind,
		Error:      entry.Error,
		ActorID:    ctxutil.ActorFromContext(ctx),
		DurationMS: elapsed.Milliseconds(),
	})
}

// evaluate builds the block's inherited environment, rewrites its source, submits it
// and validates the result.
func (s *ExecutionServiceImpl) evaluate(ctx context.Context, blocks []models.Block, index int, source string) (any, error) {
	logger := ctxutil.LoggerFromContext(ctx)
	env := environment.Build(blocks, index)

	transformed, err := script.Transform(source)
	if err != nil {
		return nil, &BlockError{Kind: ParseFailure, Err: err}
	}
	prelude, err := script.BuildPrelude(env.Entries())
	if err != nil {
		return nil, &BlockError{Kind: EvaluationFailure, Err: err}
	}
	for _, name := range prelude.Skipped {
		logger.Warn("inherited name has no usable identifier", "name", name)
	}

	evalCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.evaluator.Evaluate(evalCtx, secondary.EvaluateRequest{Script: script.Assemble(prelude, transformed)})
	if err != nil {
		if errors.Is(evalCtx.Err(), context.DeadlineExceeded) {
			return nil, blockErr(EvaluationFailure, "evaluation timed out after %s", s.timeout)
		}
		return nil, &BlockError{Kind: EvaluationFailure, Err: err}
	}
	if resp.Error != "" {
		return nil, &BlockError{Kind: EvaluationFailure, Err: errors.New(resp.Error)}
	}
	if !output.IsStructured(resp.Output) {
		return nil, blockErr(ShapeViolation, "output must be an object or array, got %s", describe(resp.Output))
	}
	return output.Normalize(resp.Output), nil
}

func (s *ExecutionServiceImpl) record(ctx context.Context, entry *secondary.RunEntryRecord) {
	if s.journal == nil {
		return
	}
	entry.ID = s.ids.NewID()
	if err := s.journal.Record(ctx, entry); err != nil {
		ctxutil.LoggerFromContext(ctx).Warn("failed to record run entry", "block", entry.BlockID, "error", err)
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
