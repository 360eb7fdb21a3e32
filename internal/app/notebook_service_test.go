package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kdougan/js-notebook/internal/models"
	"github.com/kdougan/js-notebook/internal/ports/primary"
	"github.com/kdougan/js-notebook/internal/ports/secondary"
)

func TestNotebookService_FreshNotebook(t *testing.T) {
	svc := newTestServices(t, &mockEvaluator{})

	nb, err := svc.notebook.GetNotebook(context.Background())
	if err != nil {
		t.Fatalf("GetNotebook failed: %v", err)
	}
	if len(nb.Sheets) != 1 {
		t.Fatalf("expected 1 sheet, got %d", len(nb.Sheets))
	}
	if nb.Sheets[0].Name != models.InitialSheetName {
		t.Errorf("Name = %q, want %q", nb.Sheets[0].Name, models.InitialSheetName)
	}
	if !nb.Sheets[0].Selected || nb.SelectedIndex != 0 {
		t.Error("expected first sheet to be selected")
	}
}

func TestNotebookService_Sheets(t *testing.T) {
	ctx := context.Background()

	t.Run("add sheet with default name", func(t *testing.T) {
		svc := newTestServices(t, &mockEvaluator{})

		sheet, err := svc.notebook.AddSheet(ctx, primary.AddSheetRequest{})
		if err != nil {
			t.Fatalf("AddSheet failed: %v", err)
		}
		if sheet.Name != models.DefaultSheetName {
			t.Errorf("Name = %q, want %q", sheet.Name, models.DefaultSheetName)
		}
		if sheet.Index != 1 {
			t.Errorf("Index = %d, want 1", sheet.Index)
		}
		if svc.repo.saves != 1 {
			t.Errorf("saves = %d, want 1", svc.repo.saves)
		}
	})

	t.Run("cannot remove last sheet", func(t *testing.T) {
		svc := newTestServices(t, &mockEvaluator{})

		err := svc.notebook.RemoveSheet(ctx, 0)
		if err == nil {
			t.Fatal("expected error removing the last sheet")
		}
		if !strings.Contains(err.Error(), "cannot remove the last sheet") {
			t.Errorf("unexpected error: %v", err)
		}
		if svc.repo.saves != 0 {
			t.Errorf("refused removal should not save, saves = %d", svc.repo.saves)
		}
	})

	t.Run("removing selected sheet selects previous", func(t *testing.T) {
		svc := newTestServices(t, &mockEvaluator{})
		for _, name := range []string{"two", "three"} {
			if _, err := svc.notebook.AddSheet(ctx, primary.AddSheetRequest{Name: name}); err != nil {
				t.Fatal(err)
			}
		}
		if err := svc.notebook.SelectSheet(ctx, 2); err != nil {
			t.Fatalf("SelectSheet failed: %v", err)
		}

		if err := svc.notebook.RemoveSheet(ctx, 2); err != nil {
			t.Fatalf("RemoveSheet failed: %v", err)
		}

		nb, _ := svc.notebook.GetNotebook(ctx)
		if nb.SelectedIndex != 1 || nb.Sheets[1].Name != "two" {
			t.Errorf("expected sheet 'two' selected, got index %d", nb.SelectedIndex)
		}
	})

	t.Run("remove out of range", func(t *testing.T) {
		svc := newTestServices(t, &mockEvaluator{})
		if _, err := svc.notebook.AddSheet(ctx, primary.AddSheetRequest{}); err != nil {
			t.Fatal(err)
		}

		if err := svc.notebook.RemoveSheet(ctx, 5); err == nil {
			t.Error("expected error for missing sheet")
		}
	})

	t.Run("rename", func(t *testing.T) {
		svc := newTestServices(t, &mockEvaluator{})

		if err := svc.notebook.RenameSheet(ctx, -1, "Analysis"); err != nil {
			t.Fatalf("RenameSheet failed: %v", err)
		}
		sheet, _ := svc.notebook.GetSheet(ctx, 0)
		if sheet.Name != "Analysis" {
			t.Errorf("Name = %q, want %q", sheet.Name, "Analysis")
		}

		if err := svc.notebook.RenameSheet(ctx, 0, ""); err == nil {
			t.Error("expected error for empty name")
		}
	})

	t.Run("select out of range", func(t *testing.T) {
		svc := newTestServices(t, &mockEvaluator{})

		err := svc.notebook.SelectSheet(ctx, 3)
		if !errors.Is(err, models.ErrSheetNotFound) {
			t.Errorf("expected ErrSheetNotFound, got %v", err)
		}
	})
}

func TestNotebookService_Blocks(t *testing.T) {
	ctx := context.Background()

	t.Run("add appends and inserts", func(t *testing.T) {
		svc := newTestServices(t, &mockEvaluator{})
		svc.addCode(t, "let a = 1;", "let c = 3;")

		block, err := svc.notebook.AddBlock(ctx, primary.AddBlockRequest{SheetIndex: -1, Kind: "code", At: 1, Content: "let b = 2;"})
		if err != nil {
			t.Fatalf("AddBlock failed: %v", err)
		}
		if block.Index != 1 || block.Status != "not_run" {
			t.Errorf("unexpected block: %+v", block)
		}

		var sources []string
		for _, b := range svc.blocks(t) {
			sources = append(sources, b.Source)
		}
		if strings.Join(sources, " ") != "let a = 1; let b = 2; let c = 3;" {
			t.Errorf("sources = %v", sources)
		}
	})

	t.Run("text block has no status", func(t *testing.T) {
		svc := newTestServices(t, &mockEvaluator{})

		block, err := svc.notebook.AddBlock(ctx, primary.AddBlockRequest{SheetIndex: -1, Kind: "text", At: -1, Content: "hello"})
		if err != nil {
			t.Fatalf("AddBlock failed: %v", err)
		}
		if block.Text != "hello" || block.Status != "" {
			t.Errorf("unexpected text block: %+v", block)
		}
	})

	t.Run("invalid kind", func(t *testing.T) {
		svc := newTestServices(t, &mockEvaluator{})

		if _, err := svc.notebook.AddBlock(ctx, primary.AddBlockRequest{SheetIndex: -1, Kind: "image", At: -1}); err == nil {
			t.Error("expected error for unknown kind")
		}
	})

	t.Run("ids are unique within a sheet", func(t *testing.T) {
		svc := newTestServices(t, &mockEvaluator{})
		svc.addCode(t, "1", "2", "3")

		seen := map[string]bool{}
		for _, b := range svc.blocks(t) {
			if seen[b.ID] {
				t.Errorf("duplicate block id %s", b.ID)
			}
			seen[b.ID] = true
		}
	})

	t.Run("edit keeps output", func(t *testing.T) {
		svc := newSandboxServices(t)
		svc.addCode(t, "let a = 1;")
		if _, err := svc.execution.RunAll(ctx, -1); err != nil {
			t.Fatal(err)
		}

		block, err := svc.notebook.EditBlock(ctx, primary.EditBlockRequest{SheetIndex: -1, BlockIndex: 0, Content: "let a = 2;"})
		if err != nil {
			t.Fatalf("EditBlock failed: %v", err)
		}
		if block.Status != "succeeded" || !block.Stale {
			t.Errorf("expected succeeded stale block, got %+v", block)
		}
	})

	t.Run("remove", func(t *testing.T) {
		svc := newTestServices(t, &mockEvaluator{})
		svc.addCode(t, "let a = 1;", "let b = 2;")

		if err := svc.notebook.RemoveBlock(ctx, -1, 0); err != nil {
			t.Fatalf("RemoveBlock failed: %v", err)
		}
		blocks := svc.blocks(t)
		if len(blocks) != 1 || blocks[0].Source != "let b = 2;" || blocks[0].Index != 0 {
			t.Errorf("unexpected blocks after removal: %+v", blocks)
		}

		if err := svc.notebook.RemoveBlock(ctx, -1, 4); !errors.Is(err, models.ErrBlockNotFound) {
			t.Errorf("expected ErrBlockNotFound, got %v", err)
		}
	})

	t.Run("save failure surfaces", func(t *testing.T) {
		svc := newTestServices(t, &mockEvaluator{})
		svc.repo.saveErr = errors.New("read-only")

		_, err := svc.notebook.AddBlock(ctx, primary.AddBlockRequest{SheetIndex: -1, Kind: "code", At: -1})
		if err == nil || !strings.Contains(err.Error(), "failed to save notebook") {
			t.Errorf("expected wrapped save error, got %v", err)
		}
	})
}

func TestNotebookStore_RestoresSavedNotebook(t *testing.T) {
	ctx := context.Background()
	repo := newMockNotebookRepository()
	repo.stored = &secondary.NotebookRecord{
		SelectedIndex: 1,
		Sheets: []*secondary.SheetRecord{
			{ID: "s1", Name: "One"},
			{
				ID:   "s2",
				Name: "Two",
				Blocks: []*secondary.BlockRecord{
					{ID: "b1", Kind: "code", Source: "let x = 2;", AttemptedSource: "let x = 1;", Status: "succeeded", Value: map[string]any{"x": float64(1)}},
					{ID: "b2", Kind: "code", Source: "boom", AttemptedSource: "boom", Status: "failed", Error: "ReferenceError"},
					{ID: "b3", Kind: "code", Source: "let y = 1;", AttemptedSource: "let y = 1;", Status: "running"},
					{ID: "b4", Kind: "text", Text: "notes"},
				},
			},
		},
	}

	store, err := LoadNotebookStore(ctx, repo, &seqIDs{})
	if err != nil {
		t.Fatalf("LoadNotebookStore failed: %v", err)
	}
	svc := NewNotebookService(store)

	sheet, err := svc.GetSheet(ctx, -1)
	if err != nil {
		t.Fatalf("GetSheet failed: %v", err)
	}
	if sheet.ID != "s2" {
		t.Fatalf("selected sheet = %s, want s2", sheet.ID)
	}

	tests := []struct {
		index      int
		wantStatus string
		wantStale  bool
		wantError  string
	}{
		{index: 0, wantStatus: "succeeded", wantStale: true},
		{index: 1, wantStatus: "failed", wantError: "ReferenceError"},
		{index: 2, wantStatus: "not_run"},
		{index: 3, wantStatus: ""},
	}
	for _, tt := range tests {
		b := sheet.Blocks[tt.index]
		if b.Status != tt.wantStatus {
			t.Errorf("block %d status = %q, want %q", tt.index, b.Status, tt.wantStatus)
		}
		if b.Stale != tt.wantStale {
			t.Errorf("block %d stale = %v, want %v", tt.index, b.Stale, tt.wantStale)
		}
		if b.Error != tt.wantError {
			t.Errorf("block %d error = %q, want %q", tt.index, b.Error, tt.wantError)
		}
	}
}

func TestNotebookStore_LoadError(t *testing.T) {
	repo := newMockNotebookRepository()
	repo.loadErr = errors.New("corrupt")

	_, err := LoadNotebookStore(context.Background(), repo, &seqIDs{})
	if err == nil || !strings.Contains(err.Error(), "failed to load notebook") {
		t.Errorf("expected wrapped load error, got %v", err)
	}
}
