package models

import (
	"errors"
	"fmt"
	"sync"
)

// Default sheet names.
const (
	InitialSheetName = "New Sheet"
	DefaultSheetName = "Sheet"
)

var (
	// ErrSheetNotFound is returned for an out-of-range sheet index.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrLastSheet is returned when removing the only remaining sheet.
	ErrLastSheet = errors.New("cannot remove the last sheet")
)

// IDSource produces identifiers for sheets and blocks.
type IDSource interface {
	NewID() string
}

// Notebook is the root aggregate: an ordered collection of sheets and a selected index.
type Notebook struct {
	mu       sync.RWMutex
	ids      IDSource
	sheets   []*Sheet
	selected int
	events   *hub
}

// NewNotebook creates a notebook holding a single empty sheet.
func NewNotebook(ids IDSource) *Notebook {
	n := &Notebook{ids: ids, events: newHub()}
	n.sheets = []*Sheet{n.attach(NewSheet(ids.NewID(), InitialSheetName, ids))}
	return n
}

// RestoreNotebook rebuilds a notebook from persisted sheets. The selected index is
// clamped into range; an empty sheet list yields a fresh notebook.
func RestoreNotebook(ids IDSource, sheets []*Sheet, selected int) *Notebook {
	if len(sheets) == 0 {
		return NewNotebook(ids)
	}
	n := &Notebook{ids: ids, events: newHub()}
	for _, s := range sheets {
		n.sheets = append(n.sheets, n.attach(s))
	}
	n.selected = clampIndex(selected, len(n.sheets))
	return n
}

func (n *Notebook) attach(s *Sheet) *Sheet {
	s.mu.Lock()
	s.events = n.events
	if s.ids == nil {
		s.ids = n.ids
	}
	s.mu.Unlock()
	return s
}

// Subscribe registers an observer and returns a function that removes it.
func (n *Notebook) Subscribe(fn Observer) func() {
	return n.events.subscribe(fn)
}

// Sheets returns the sheets in order. The slice is a copy; the sheets are live.
func (n *Notebook) Sheets() []*Sheet {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Sheet, len(n.sheets))
	copy(out, n.sheets)
	return out
}

// SheetCount returns the number of sheets.
func (n *Notebook) SheetCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.sheets)
}

// Sheet returns the sheet at index i.
func (n *Notebook) Sheet(i int) (*Sheet, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if i < 0 || i >= len(n.sheets) {
		return nil, fmt.Errorf("%w: index %d out of range [0,%d)", ErrSheetNotFound, i, len(n.sheets))
	}
	return n.sheets[i], nil
}

// SelectedIndex returns the currently selected sheet index.
func (n *Notebook) SelectedIndex() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.selected
}

// SelectedSheet returns the currently selected sheet.
func (n *Notebook) SelectedSheet() *Sheet {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.sheets[n.selected]
}

// Select changes the selected sheet.
func (n *Notebook) Select(i int) error {
	n.mu.Lock()
	if i < 0 || i >= len(n.sheets) {
		count := len(n.sheets)
		n.mu.Unlock()
		return fmt.Errorf("%w: index %d out of range [0,%d)", ErrSheetNotFound, i, count)
	}
	n.selected = i
	id := n.sheets[i].id
	n.mu.Unlock()

	n.events.publish(Event{Type: EventSheetSelected, SheetID: id, Index: i})
	return nil
}

// AddSheet appends an empty sheet. An empty name falls back to DefaultSheetName.
func (n *Notebook) AddSheet(name string) *Sheet {
	if name == "" {
		name = DefaultSheetName
	}
	s := n.attach(NewSheet(n.ids.NewID(), name, n.ids))

	n.mu.Lock()
	n.sheets = append(n.sheets, s)
	idx := len(n.sheets) - 1
	n.mu.Unlock()

	n.events.publish(Event{Type: EventSheetAdded, SheetID: s.id, Index: idx})
	return s
}

// RemoveSheet removes the sheet at index i. The last sheet cannot be removed.
// Removing the selected sheet selects the one before it; removing an earlier sheet
// keeps the same sheet selected.
func (n *Notebook) RemoveSheet(i int) error {
	n.mu.Lock()
	count := len(n.sheets)
	if i < 0 || i >= count {
		n.mu.Unlock()
		return fmt.Errorf("%w: index %d out of range [0,%d)", ErrSheetNotFound, i, count)
	}
	if count == 1 {
		n.mu.Unlock()
		return ErrLastSheet
	}
	removed := n.sheets[i]
	n.sheets = append(n.sheets[:i], n.sheets[i+1:]...)
	switch {
	case i == n.selected:
		n.selected = clampIndex(i-1, len(n.sheets))
	case i < n.selected:
		n.selected--
	}
	n.mu.Unlock()

	n.events.publish(Event{Type: EventSheetRemoved, SheetID: removed.id, Index: i})
	return nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
