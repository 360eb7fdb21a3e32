package models

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBlockNotFound is returned when a block index or id does not exist in a sheet.
var ErrBlockNotFound = errors.New("block not found")

// Sheet is an ordered sequence of blocks. Order is execution order and the scope
// boundary for inherited variables.
//
// Output values are replaced wholesale on commit and never mutated in place, so the
// snapshots returned by Blocks and Block may share them with the sheet.
type Sheet struct {
	mu     sync.RWMutex
	id     string
	name   string
	blocks []*Block
	ids    IDSource
	events *hub
}

// NewSheet creates an empty sheet. The id source is used for blocks added later.
func NewSheet(id, name string, ids IDSource) *Sheet {
	return &Sheet{id: id, name: name, ids: ids}
}

// RestoreSheet rebuilds a sheet from persisted blocks, keeping them verbatim.
func RestoreSheet(id, name string, ids IDSource, blocks []Block) *Sheet {
	s := NewSheet(id, name, ids)
	s.blocks = make([]*Block, len(blocks))
	for i := range blocks {
		b := blocks[i]
		s.blocks[i] = &b
	}
	return s
}

// ID returns the sheet identity.
func (s *Sheet) ID() string {
	return s.id
}

// Name returns the display name.
func (s *Sheet) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Rename changes the display name.
func (s *Sheet) Rename(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
	s.events.publish(Event{Type: EventSheetRenamed, SheetID: s.id, Index: -1})
}

// Len returns the number of blocks.
func (s *Sheet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blocks)
}

// Blocks returns a snapshot of every block in order.
func (s *Sheet) Blocks() []Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Block, len(s.blocks))
	for i, b := range s.blocks {
		out[i] = *b
	}
	return out
}

// Block returns a snapshot of the block at index i.
func (s *Sheet) Block(i int) (Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.blocks) {
		return Block{}, fmt.Errorf("%w: index %d out of range [0,%d)", ErrBlockNotFound, i, len(s.blocks))
	}
	return *s.blocks[i], nil
}

// IndexOf returns the current index of the block with the given id, or -1.
func (s *Sheet) IndexOf(blockID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOfLocked(blockID)
}

func (s *Sheet) indexOfLocked(blockID string) int {
	for i, b := range s.blocks {
		if b.ID == blockID {
			return i
		}
	}
	return -1
}

// AddBlock appends an empty block of the given kind.
func (s *Sheet) AddBlock(kind BlockKind) (Block, error) {
	return s.InsertBlock(s.Len(), kind)
}

// InsertBlock inserts an empty block at index i (0 <= i <= Len).
func (s *Sheet) InsertBlock(i int, kind BlockKind) (Block, error) {
	if !kind.Valid() {
		return Block{}, fmt.Errorf("invalid block kind %q", kind)
	}

	s.mu.Lock()
	if i < 0 || i > len(s.blocks) {
		n := len(s.blocks)
		s.mu.Unlock()
		return Block{}, fmt.Errorf("%w: insert index %d out of range [0,%d]", ErrBlockNotFound, i, n)
	}
	b := newBlock(s.newBlockIDLocked(), kind)
	s.blocks = append(s.blocks, nil)
	copy(s.blocks[i+1:], s.blocks[i:])
	s.blocks[i] = b
	snap := *b
	s.mu.Unlock()

	s.events.publish(Event{Type: EventBlockAdded, SheetID: s.id, Index: i, Block: snap})
	return snap, nil
}

// newBlockIDLocked draws ids until one is unique within the sheet.
func (s *Sheet) newBlockIDLocked() string {
	for {
		id := s.ids.NewID()
		if s.indexOfLocked(id) < 0 {
			return id
		}
	}
}

// RemoveBlock discards the block at index i.
func (s *Sheet) RemoveBlock(i int) (Block, error) {
	s.mu.Lock()
	if i < 0 || i >= len(s.blocks) {
		n := len(s.blocks)
		s.mu.Unlock()
		return Block{}, fmt.Errorf("%w: index %d out of range [0,%d)", ErrBlockNotFound, i, n)
	}
	snap := *s.blocks[i]
	s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
	s.mu.Unlock()

	s.events.publish(Event{Type: EventBlockRemoved, SheetID: s.id, Index: i, Block: snap})
	return snap, nil
}

// SetContent replaces a text block's text or a code block's current source.
// Output state is left untouched.
func (s *Sheet) SetContent(i int, content string) (Block, error) {
	s.mu.Lock()
	if i < 0 || i >= len(s.blocks) {
		n := len(s.blocks)
		s.mu.Unlock()
		return Block{}, fmt.Errorf("%w: index %d out of range [0,%d)", ErrBlockNotFound, i, n)
	}
	b := s.blocks[i]
	if b.IsCode() {
		b.Source = content
	} else {
		b.Text = content
	}
	snap := *b
	s.mu.Unlock()

	s.events.publish(Event{Type: EventBlockEdited, SheetID: s.id, Index: i, Block: snap})
	return snap, nil
}

// BeginAttempt records attempted as the block's attempted source, clears its output
// and marks it running.
func (s *Sheet) BeginAttempt(blockID, attempted string) (Block, error) {
	s.mu.Lock()
	i := s.indexOfLocked(blockID)
	if i < 0 || !s.blocks[i].IsCode() {
		s.mu.Unlock()
		return Block{}, fmt.Errorf("%w: no code block %s in sheet %s", ErrBlockNotFound, blockID, s.id)
	}
	b := s.blocks[i]
	b.AttemptedSource = attempted
	b.Output = Output{Status: StatusRunning}
	snap := *b
	s.mu.Unlock()

	s.events.publish(Event{Type: EventBlockRunning, SheetID: s.id, Index: i, Block: snap})
	return snap, nil
}

// Commit stores the final output of an attempt. This is what clears the running marker.
func (s *Sheet) Commit(blockID string, out Output) (Block, error) {
	s.mu.Lock()
	i := s.indexOfLocked(blockID)
	if i < 0 || !s.blocks[i].IsCode() {
		s.mu.Unlock()
		return Block{}, fmt.Errorf("%w: no code block %s in sheet %s", ErrBlockNotFound, blockID, s.id)
	}
	b := s.blocks[i]
	b.Output = out
	snap := *b
	s.mu.Unlock()

	s.events.publish(Event{Type: EventBlockCommitted, SheetID: s.id, Index: i, Block: snap})
	return snap, nil
}
