package app

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/kdougan/js-notebook/internal/adapters/sandbox"
	"github.com/kdougan/js-notebook/internal/ports/primary"
	"github.com/kdougan/js-notebook/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockNotebookRepository implements secondary.NotebookRepository for testing.
type mockNotebookRepository struct {
	mu      sync.Mutex
	stored  *secondary.NotebookRecord
	saves   int
	loadErr error
	saveErr error
}

func newMockNotebookRepository() *mockNotebookRepository {
	return &mockNotebookRepository{}
}

func (m *mockNotebookRepository) Load(ctx context.Context) (*secondary.NotebookRecord, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stored, nil
}

func (m *mockNotebookRepository) Save(ctx context.Context, notebook *secondary.NotebookRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = notebook
	m.saves++
	return nil
}

// mockEvaluator implements secondary.Evaluator for testing.
// evaluateFunc defaults to answering an empty keyed structure.
type mockEvaluator struct {
	mu           sync.Mutex
	scripts      []string
	evaluateFunc func(ctx context.Context, script string) (*secondary.EvaluateResponse, error)
}

func (m *mockEvaluator) Evaluate(ctx context.Context, req secondary.EvaluateRequest) (*secondary.EvaluateResponse, error) {
	m.mu.Lock()
	m.scripts = append(m.scripts, req.Script)
	fn := m.evaluateFunc
	m.mu.Unlock()

	if fn == nil {
		return &secondary.EvaluateResponse{Output: map[string]any{}}, nil
	}
	return fn(ctx, req.Script)
}

func (m *mockEvaluator) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.scripts...)
}

// mockRunJournal implements secondary.RunJournal for testing.
type mockRunJournal struct {
	mu        sync.Mutex
	entries   []*secondary.RunEntryRecord
	recordErr error
	listErr   error
}

func (m *mockRunJournal) Record(ctx context.Context, entry *secondary.RunEntryRecord) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockRunJournal) List(ctx context.Context, filters secondary.RunEntryFilters) ([]*secondary.RunEntryRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*secondary.RunEntryRecord
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if filters.SheetID != "" && e.SheetID != filters.SheetID {
			continue
		}
		if filters.BlockID != "" && e.BlockID != filters.BlockID {
			continue
		}
		if filters.RunID != "" && e.RunID != filters.RunID {
			continue
		}
		result = append(result, e)
		if filters.Limit > 0 && len(result) == filters.Limit {
			break
		}
	}
	return result, nil
}

// seqIDs implements secondary.IDGenerator with predictable ids.
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

// ============================================================================
// Fixtures
// ============================================================================

type testServices struct {
	notebook  *NotebookServiceImpl
	execution *ExecutionServiceImpl
	repo      *mockNotebookRepository
	journal   *mockRunJournal
}

func newTestServices(t *testing.T, evaluator secondary.Evaluator) *testServices {
	t.Helper()
	repo := newMockNotebookRepository()
	ids := &seqIDs{}
	store, err := LoadNotebookStore(context.Background(), repo, ids)
	if err != nil {
		t.Fatalf("LoadNotebookStore failed: %v", err)
	}
	journal := &mockRunJournal{}
	return &testServices{
		notebook:  NewNotebookService(store),
		execution: NewExecutionService(store, evaluator, journal, ids, nil, ExecutionConfig{}),
		repo:      repo,
		journal:   journal,
	}
}

// newSandboxServices wires the services to the real in-process evaluator.
func newSandboxServices(t *testing.T) *testServices {
	t.Helper()
	return newTestServices(t, sandbox.NewEvaluator())
}

// addCode appends code blocks with the given sources to the selected sheet.
func (s *testServices) addCode(t *testing.T, sources ...string) {
	t.Helper()
	for _, src := range sources {
		_, err := s.notebook.AddBlock(context.Background(), primary.AddBlockRequest{
			SheetIndex: -1,
			Kind:       "code",
			At:         -1,
			Content:    src,
		})
		if err != nil {
			t.Fatalf("AddBlock(%q) failed: %v", src, err)
		}
	}
}

func (s *testServices) addText(t *testing.T, text string) {
	t.Helper()
	_, err := s.notebook.AddBlock(context.Background(), primary.AddBlockRequest{
		SheetIndex: -1,
		Kind:       "text",
		At:         -1,
		Content:    text,
	})
	if err != nil {
		t.Fatalf("AddBlock(text) failed: %v", err)
	}
}

func (s *testServices) blocks(t *testing.T) []*primary.Block {
	t.Helper()
	sheet, err := s.notebook.GetSheet(context.Background(), -1)
	if err != nil {
		t.Fatalf("GetSheet failed: %v", err)
	}
	return sheet.Blocks
}
