// Package environment derives the variables a block inherits from the blocks above it.
// This is part of the Functional Core - no I/O, only pure functions.
package environment

import (
	"sort"

	"github.com/kdougan/js-notebook/internal/models"
)

// Entry is a single inherited name and its value.
type Entry struct {
	Name  string
	Value any
}

// Env is an ordered name -> value mapping. A name keeps the position of its first
// appearance and the value of its last write.
type Env struct {
	entries []Entry
	index   map[string]int
}

// New returns an empty environment.
func New() *Env {
	return &Env{index: make(map[string]int)}
}

// Set writes name, overriding any earlier value in place.
func (e *Env) Set(name string, value any) {
	if i, ok := e.index[name]; ok {
		e.entries[i].Value = value
		return
	}
	e.index[name] = len(e.entries)
	e.entries = append(e.entries, Entry{Name: name, Value: value})
}

// Get returns the value bound to name.
func (e *Env) Get(name string) (any, bool) {
	i, ok := e.index[name]
	if !ok {
		return nil, false
	}
	return e.entries[i].Value, true
}

// Has reports whether name is bound.
func (e *Env) Has(name string) bool {
	_, ok := e.index[name]
	return ok
}

// Len returns the number of bound names.
func (e *Env) Len() int {
	return len(e.entries)
}

// Entries returns the bindings in order.
func (e *Env) Entries() []Entry {
	out := make([]Entry, len(e.entries))
	copy(out, e.entries)
	return out
}

// Names returns the bound names in order.
func (e *Env) Names() []string {
	out := make([]string, len(e.entries))
	for i, entry := range e.entries {
		out[i] = entry.Name
	}
	return out
}

// Map returns the bindings as a plain map.
func (e *Env) Map() map[string]any {
	out := make(map[string]any, len(e.entries))
	for _, entry := range e.entries {
		out[entry.Name] = entry.Value
	}
	return out
}

// Build folds the outputs of blocks[0:index] into the environment inherited by the
// block at index. Only code blocks that succeeded with a keyed structure contribute;
// later blocks override earlier ones on shared names.
func Build(blocks []models.Block, index int) *Env {
	env := New()
	if index > len(blocks) {
		index = len(blocks)
	}
	for _, b := range blocks[:max(index, 0)] {
		value, ok := b.KeyedValue()
		if !ok {
			continue
		}
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			env.Set(k, value[k])
		}
	}
	return env
}
