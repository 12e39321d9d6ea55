package store

import (
	"context"
	"sync"

	"github.com/abgdnv/prodboard/internal/catalog"
)

// Memory is an in-process snapshot store: the default backend and the test
// double for everything that consumes a catalog.SnapshotStore.
type Memory struct {
	mu       sync.RWMutex
	products []catalog.Product
}

// NewMemory returns an empty in-memory snapshot store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns a copy of the last saved list, or an empty list when nothing
// has been saved yet.
func (m *Memory) Load(_ context.Context) ([]catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]catalog.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

// Save replaces the stored snapshot.
func (m *Memory) Save(_ context.Context, products []catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = make([]catalog.Product, len(products))
	copy(m.products, products)
	return nil
}
