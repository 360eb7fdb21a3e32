// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/kdougan/js-notebook/internal/ports/primary"
)

// NotebookAdapter translates CLI operations to NotebookService calls.
type NotebookAdapter struct {
	service primary.NotebookService
	out     io.Writer
}

// NewNotebookAdapter creates a new NotebookAdapter with the given service.
func NewNotebookAdapter(service primary.NotebookService, out io.Writer) *NotebookAdapter {
	return &NotebookAdapter{
		service: service,
		out:     out,
	}
}

// ListSheets prints every sheet, marking the selected one.
func (a *NotebookAdapter) ListSheets(ctx context.Context) error {
	nb, err := a.service.GetNotebook(ctx)
	if err != nil {
		return fmt.Errorf("failed to get notebook: %w", err)
	}

	fmt.Fprintf(a.out, "\n  %-5s %-20s %-7s %s\n", "#", "NAME", "BLOCKS", "ID")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, s := range nb.Sheets {
		marker := " "
		if s.Selected {
			marker = color.New(color.FgCyan).Sprint("*")
		}
		fmt.Fprintf(a.out, "%s %-5d %-20s %-7d %s\n", marker, s.Index, s.Name, len(s.Blocks), s.ID)
	}
	fmt.Fprintln(a.out)
	return nil
}

// AddSheet appends a sheet.
func (a *NotebookAdapter) AddSheet(ctx context.Context, name string) error {
	sheet, err := a.service.AddSheet(ctx, primary.AddSheetRequest{Name: name})
	if err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Added sheet %d: %s\n", sheet.Index, sheet.Name)
	return nil
}

// RemoveSheet removes a sheet.
func (a *NotebookAdapter) RemoveSheet(ctx context.Context, index int) error {
	if err := a.service.RemoveSheet(ctx, index); err != nil {
		return fmt.Errorf("failed to remove sheet: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Removed sheet %d\n", index)
	return nil
}

// SelectSheet changes the selected sheet.
func (a *NotebookAdapter) SelectSheet(ctx context.Context, index int) error {
	if err := a.service.SelectSheet(ctx, index); err != nil {
		return fmt.Errorf("failed to select sheet: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Selected sheet %d\n", index)
	return nil
}

// RenameSheet renames a sheet.
func (a *NotebookAdapter) RenameSheet(ctx context.Context, index int, name string) error {
	if err := a.service.RenameSheet(ctx, index, name); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Sheet %d renamed to %s\n", index, name)
	return nil
}

// AddBlock adds a block.
func (a *NotebookAdapter) AddBlock(ctx context.Context, req primary.AddBlockRequest) error {
	block, err := a.service.AddBlock(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to add block: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Added %s block %d (%s)\n", block.Kind, block.Index, block.ID)
	return nil
}

// EditBlock replaces a block's content.
func (a *NotebookAdapter) EditBlock(ctx context.Context, req primary.EditBlockRequest) error {
	block, err := a.service.EditBlock(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to edit block: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Block %d updated\n", block.Index)
	if block.Stale {
		fmt.Fprintln(a.out, "  Output is stale until the block runs again")
	}
	return nil
}

// RemoveBlock removes a block.
func (a *NotebookAdapter) RemoveBlock(ctx context.Context, sheetIndex, blockIndex int) error {
	if err := a.service.RemoveBlock(ctx, sheetIndex, blockIndex); err != nil {
		return fmt.Errorf("failed to remove block: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Removed block %d\n", blockIndex)
	return nil
}

// Show prints a sheet with each block's source, status and last output.
func (a *NotebookAdapter) Show(ctx context.Context, sheetIndex int) error {
	sheet, err := a.service.GetSheet(ctx, sheetIndex)
	if err != nil {
		return fmt.Errorf("failed to get sheet: %w", err)
	}

	fmt.Fprintf(a.out, "\nSheet %d: %s\n", sheet.Index, sheet.Name)
	if len(sheet.Blocks) == 0 {
		fmt.Fprintln(a.out, "  (no blocks)")
		fmt.Fprintln(a.out)
		return nil
	}

	for _, b := range sheet.Blocks {
		fmt.Fprintln(a.out)
		if b.Kind == "text" {
			fmt.Fprintf(a.out, "[%d] text\n", b.Index)
			writeIndented(a.out, b.Text)
			continue
		}

		header := fmt.Sprintf("[%d] code %s", b.Index, statusLabel(b.Status))
		if b.Stale {
			header += " " + color.New(color.FgYellow).Sprint("(stale)")
		}
		fmt.Fprintln(a.out, header)
		writeIndented(a.out, b.Source)

		switch {
		case b.Error != "":
			fmt.Fprintf(a.out, "  %s %s\n", color.New(color.FgRed).Sprint("error:"), b.Error)
		case b.Value != nil:
			fmt.Fprintf(a.out, "  → %s\n", FormatValue(b.Value))
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

// FormatValue renders a block output as compact JSON.
func FormatValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func writeIndented(w io.Writer, text string) {
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(w, "  │ %s\n", line)
	}
}

func statusLabel(status string) string {
	switch status {
	case "succeeded":
		return color.New(color.FgGreen).Sprint("✓ succeeded")
	case "failed":
		return color.New(color.FgRed).Sprint("✗ failed")
	case "running":
		return color.New(color.FgBlue).Sprint("… running")
	default:
		return color.New(color.Faint).Sprint("○ not run")
	}
}
