package models

import "sync"

// EventType identifies a notebook mutation.
type EventType string

// Event types
const (
	EventSheetAdded     EventType = "sheet_added"
	EventSheetRemoved   EventType = "sheet_removed"
	EventSheetSelected  EventType = "sheet_selected"
	EventSheetRenamed   EventType = "sheet_renamed"
	EventBlockAdded     EventType = "block_added"
	EventBlockRemoved   EventType = "block_removed"
	EventBlockEdited    EventType = "block_edited"
	EventBlockRunning   EventType = "block_running"
	EventBlockCommitted EventType = "block_committed"
)

// Event describes a mutation that has already been applied.
// Block is a snapshot taken at the time of the mutation (zero for sheet events).
type Event struct {
	Type    EventType
	SheetID string
	Index   int
	Block   Block
}

// Observer receives notebook events.
type Observer func(Event)

// hub fans events out to subscribers. It never holds its lock while calling them.
type hub struct {
	mu        sync.Mutex
	next      int
	observers map[int]Observer
}

func newHub() *hub {
	return &hub{observers: make(map[int]Observer)}
}

func (h *hub) subscribe(fn Observer) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.observers[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.observers, id)
		h.mu.Unlock()
	}
}

func (h *hub) publish(ev Event) {
	if h == nil {
		return
	}
	h.mu.Lock()
	fns := make([]Observer, 0, len(h.observers))
	// subscription order
	for i := 0; i < h.next; i++ {
		if fn, ok := h.observers[i]; ok {
			fns = append(fns, fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
