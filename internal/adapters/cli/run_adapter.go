package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/kdougan/js-notebook/internal/ports/primary"
)

// RunAdapter translates CLI operations to ExecutionService calls.
// The notebook service is only used to follow block events while a run is in flight.
type RunAdapter struct {
	runs     primary.ExecutionService
	notebook primary.NotebookService
	out      io.Writer
}

// NewRunAdapter creates a new RunAdapter.
func NewRunAdapter(runs primary.ExecutionService, notebook primary.NotebookService, out io.Writer) *RunAdapter {
	return &RunAdapter{
		runs:     runs,
		notebook: notebook,
		out:      out,
	}
}

// Run executes a sheet and prints the report. With watch set, block transitions
// are printed as they happen. Failed blocks are reported, not returned as errors.
func (a *RunAdapter) Run(ctx context.Context, req primary.RunRequest, watch bool) error {
	if watch {
		unsubscribe := a.notebook.Subscribe(a.printEvent)
		defer unsubscribe()
	}

	report, err := a.runs.Run(ctx, req)
	if report != nil {
		a.printReport(report)
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

// History prints recorded block attempts, newest first.
func (a *RunAdapter) History(ctx context.Context, req primary.HistoryRequest) error {
	entries, err := a.runs.History(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No runs recorded")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-20s %-10s %-12s %-18s %-9s %s\n", "TIME", "BLOCK", "STATUS", "DECISION", "DURATION", "ACTOR")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────────────────────")
	for _, e := range entries {
		fmt.Fprintf(a.out, "%-20s %-10s %-12s %-18s %-9s %s\n",
			e.Timestamp, short(e.BlockID), e.Status, e.Decision, e.Duration, e.Actor)
		if e.Error != "" {
			fmt.Fprintf(a.out, "  %s %s\n", color.New(color.FgRed).Sprint(e.ErrorKind+":"), e.Error)
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *RunAdapter) printEvent(ev primary.Event) {
	if ev.Block == nil {
		return
	}
	switch ev.Type {
	case "block_running":
		fmt.Fprintf(a.out, "  [%d] %s\n", ev.Index, statusLabel("running"))
	case "block_committed":
		fmt.Fprintf(a.out, "  [%d] %s\n", ev.Index, statusLabel(ev.Block.Status))
	}
}

func (a *RunAdapter) printReport(r *primary.RunReport) {
	fmt.Fprintln(a.out)
	for _, b := range r.Blocks {
		if !b.Executed {
			fmt.Fprintf(a.out, "  [%d] %s %s\n", b.Index, color.New(color.Faint).Sprint("- skipped"), b.Decision)
			continue
		}
		fmt.Fprintf(a.out, "  [%d] %s %s (%s)\n", b.Index, statusLabel(b.Status), b.Decision, b.Duration)
		if b.Error != "" {
			fmt.Fprintf(a.out, "      %s %s\n", color.New(color.FgRed).Sprint(b.ErrorKind+":"), b.Error)
		}
	}

	executed, failed := r.Executed(), r.Failed()
	if failed > 0 {
		fmt.Fprintf(a.out, "\n✗ Run %s: %d executed, %d failed\n", short(r.RunID), executed, failed)
		return
	}
	fmt.Fprintf(a.out, "\n✓ Run %s: %d executed\n", short(r.RunID), executed)
}

// short trims a UUID to its first segment for display.
func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
