package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/kdougan/js-notebook/internal/adapters/sqlite"
	"github.com/kdougan/js-notebook/internal/ports/secondary"
)

func TestRunJournalRepository_Record(t *testing.T) {
	repo := sqlite.NewRunJournalRepository(setupTestDB(t))
	ctx := context.Background()

	t.Run("records entry with all fields", func(t *testing.T) {
		err := repo.Record(ctx, &secondary.RunEntryRecord{
			ID:         "RUN-E1",
			RunID:      "RUN-1",
			SheetID:    "sheet-a",
			BlockID:    "b2",
			Decision:   "run_first",
			Status:     "failed",
			ErrorKind:  "evaluation_failure",
			Error:      "ReferenceError: y is not defined",
			ActorID:    "alice",
			DurationMS: 12,
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		entries, err := repo.List(ctx, secondary.RunEntryFilters{RunID: "RUN-1"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		got := entries[0]
		if got.Decision != "run_first" {
			t.Errorf("Decision = %q, want %q", got.Decision, "run_first")
		}
		if got.ErrorKind != "evaluation_failure" {
			t.Errorf("ErrorKind = %q, want %q", got.ErrorKind, "evaluation_failure")
		}
		if got.Error != "ReferenceError: y is not defined" {
			t.Errorf("Error = %q", got.Error)
		}
		if got.ActorID != "alice" {
			t.Errorf("ActorID = %q, want %q", got.ActorID, "alice")
		}
		if got.DurationMS != 12 {
			t.Errorf("DurationMS = %d, want 12", got.DurationMS)
		}
		if got.Timestamp == "" {
			t.Error("expected Timestamp to be set")
		}
	})

	t.Run("records entry with nullable fields null", func(t *testing.T) {
		err := repo.Record(ctx, &secondary.RunEntryRecord{
			ID:       "RUN-E2",
			RunID:    "RUN-2",
			SheetID:  "sheet-a",
			BlockID:  "b3",
			Decision: "run_dependent",
			Status:   "succeeded",
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		entries, err := repo.List(ctx, secondary.RunEntryFilters{RunID: "RUN-2"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		if entries[0].ErrorKind != "" || entries[0].Error != "" || entries[0].ActorID != "" {
			t.Errorf("expected empty optional fields, got %+v", entries[0])
		}
	})

	t.Run("duplicate id fails", func(t *testing.T) {
		err := repo.Record(ctx, &secondary.RunEntryRecord{
			ID: "RUN-E1", RunID: "RUN-3", SheetID: "s", BlockID: "b", Decision: "run_first", Status: "succeeded",
		})
		if err == nil {
			t.Error("expected error for duplicate id")
		}
	})
}

func TestRunJournalRepository_List(t *testing.T) {
	repo := sqlite.NewRunJournalRepository(setupTestDB(t))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		sheet := "sheet-a"
		if i%2 == 0 {
			sheet = "sheet-b"
		}
		err := repo.Record(ctx, &secondary.RunEntryRecord{
			ID:       fmt.Sprintf("E%d", i),
			RunID:    "RUN-1",
			SheetID:  sheet,
			BlockID:  fmt.Sprintf("b%d", i),
			Decision: "run_forced",
			Status:   "succeeded",
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	tests := []struct {
		name    string
		filters secondary.RunEntryFilters
		wantIDs []string
	}{
		{name: "all newest first", filters: secondary.RunEntryFilters{}, wantIDs: []string{"E5", "E4", "E3", "E2", "E1"}},
		{name: "by sheet", filters: secondary.RunEntryFilters{SheetID: "sheet-b"}, wantIDs: []string{"E4", "E2"}},
		{name: "by block", filters: secondary.RunEntryFilters{BlockID: "b3"}, wantIDs: []string{"E3"}},
		{name: "limit", filters: secondary.RunEntryFilters{Limit: 2}, wantIDs: []string{"E5", "E4"}},
		{name: "no match", filters: secondary.RunEntryFilters{RunID: "RUN-9"}, wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := repo.List(ctx, tt.filters)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			var gotIDs []string
			for _, e := range entries {
				gotIDs = append(gotIDs, e.ID)
			}
			if fmt.Sprint(gotIDs) != fmt.Sprint(tt.wantIDs) {
				t.Errorf("ids = %v, want %v", gotIDs, tt.wantIDs)
			}
		})
	}
}
