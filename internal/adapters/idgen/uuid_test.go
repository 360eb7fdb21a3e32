package idgen

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestGenerator_NewID_IsVersion4(t *testing.T) {
	g := NewGenerator()

	id, err := uuid.Parse(g.NewID())
	if err != nil {
		t.Fatalf("NewID() is not a UUID: %v", err)
	}
	if id.Version() != 4 {
		t.Errorf("version = %d, want 4", id.Version())
	}
	if id.Variant() != uuid.RFC4122 {
		t.Errorf("variant = %v, want RFC4122", id.Variant())
	}
}

func TestGenerator_SeededIsReproducible(t *testing.T) {
	a := NewSeededGenerator(42)
	b := NewSeededGenerator(42)

	for i := 0; i < 5; i++ {
		if x, y := a.NewID(), b.NewID(); x != y {
			t.Fatalf("id %d differs: %s vs %s", i, x, y)
		}
	}
}

func TestGenerator_ConcurrentUnique(t *testing.T) {
	g := NewGenerator()
	const workers, perWorker = 8, 200

	var mu sync.Mutex
	seen := make(map[string]bool, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := g.NewID()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("got %d unique ids, want %d", len(seen), workers*perWorker)
	}
}
