// Package memory provides an in-memory implementation of the inventory
// persistence interfaces, for tests and throwaway runs.
package memory

import (
	"context"
	"sync"

	"github.com/agrovet/stock-engine/inventory"
)

// Store implements inventory.Catalog, inventory.Ledger and
// inventory.AlertState entirely in memory.
type Store struct {
	mu         sync.RWMutex
	products   []inventory.Product
	entries    []inventory.StockEntry
	thresholds map[int]int
	notified   []int

	// FailSaves makes Save/Append/Save* return the given error, for
	// exercising persistence failure paths in tests.
	FailSaves error
}

func New() *Store {
	return &Store{}
}

// =============================================================================
// CATALOG
// =============================================================================

func (m *Store) Load(_ context.Context) ([]inventory.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]inventory.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *Store) Save(_ context.Context, products []inventory.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.products = make([]inventory.Product, len(products))
	copy(m.products, products)
	return nil
}

// =============================================================================
// LEDGER (append-only)
// =============================================================================

func (m *Store) Append(_ context.Context, entry inventory.StockEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *Store) Entries(_ context.Context) ([]inventory.StockEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]inventory.StockEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// =============================================================================
// ALERT STATE
// =============================================================================

func (m *Store) LoadThresholds(_ context.Context) (map[int]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int]int, len(m.thresholds))
	for k, v := range m.thresholds {
		out[k] = v
	}
	return out, nil
}

func (m *Store) SaveThresholds(_ context.Context, thresholds map[int]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.thresholds = make(map[int]int, len(thresholds))
	for k, v := range thresholds {
		m.thresholds[k] = v
	}
	return nil
}

func (m *Store) LoadNotified(_ context.Context) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]int, len(m.notified))
	copy(out, m.notified)
	return out, nil
}

func (m *Store) SaveNotified(_ context.Context, codes []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.notified = make([]int, len(codes))
	copy(m.notified, codes)
	return nil
}
