package app

import (
	"github.com/kdougan/js-notebook/internal/models"
	"github.com/kdougan/js-notebook/internal/ports/primary"
)

func blockToDTO(index int, b models.Block) *primary.Block {
	dto := &primary.Block{
		Index: index,
		ID:    b.ID,
		Kind:  string(b.Kind),
		Text:  b.Text,
	}
	if b.IsCode() {
		dto.Source = b.Source
		dto.AttemptedSource = b.AttemptedSource
		dto.Status = string(b.Output.Status)
		dto.Value = b.Output.Value
		dto.Error = b.Output.Error
		dto.Stale = b.Stale()
	}
	return dto
}

func sheetToDTO(index int, selected bool, s *models.Sheet) *primary.Sheet {
	blocks := s.Blocks()
	dto := &primary.Sheet{
		Index:    index,
		ID:       s.ID(),
		Name:     s.Name(),
		Selected: selected,
		Blocks:   make([]*primary.Block, len(blocks)),
	}
	for i, b := range blocks {
		dto.Blocks[i] = blockToDTO(i, b)
	}
	return dto
}

func eventToDTO(ev models.Event) primary.Event {
	out := primary.Event{
		Type:    string(ev.Type),
		SheetID: ev.SheetID,
		Index:   ev.Index,
	}
	if ev.Block.ID != "" {
		out.Block = blockToDTO(ev.Index, ev.Block)
	}
	return out
}
