// Package idgen provides the identifier source for sheets, blocks and run entries.
package idgen

import (
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Generator implements secondary.IDGenerator with random version 4 UUIDs.
// Identifiers only need to be unique within a notebook, so the randomness comes
// from a seeded non-cryptographic source.
type Generator struct {
	mu     sync.Mutex
	source io.Reader
}

// NewGenerator creates a generator seeded from the clock.
func NewGenerator() *Generator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// NewSeededGenerator creates a generator that yields a reproducible sequence.
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{source: rand.New(rand.NewSource(seed))}
}

// NewID returns a new identifier.
func (g *Generator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := uuid.NewRandomFromReader(g.source)
	if err != nil {
		// math/rand never fails to read; fall back to the system source anyway.
		return uuid.NewString()
	}
	return id.String()
}
