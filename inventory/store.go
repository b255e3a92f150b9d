/*
store.go - Persistence interfaces for catalog and alert state

PURPOSE:
  Defines the boundary between the domain and storage. The catalog is
  persisted as a whole (read-modify-write of the full product list, which
  is fine at this data scale); alert state is two small collections that
  survive restarts so the edge detector keeps its baseline.

MISSING-DATA CONTRACT:
  A backend with no data yet (first run, missing file, empty table) MUST
  return an empty result and a nil error. Only actual I/O or decode
  failures are errors, and they should wrap ErrPersistence.

IMPLEMENTATIONS:
  - store/jsonfile: Flat JSON files with atomic temp-file-then-rename writes
  - store/sqlite:   SQLite database (single file, WAL mode)
  - store/memory:   In-memory, for tests and throwaway runs

SEE ALSO:
  - ledger.go: The third persistence interface (append-only journal)
*/
package inventory

import "context"

// Catalog persists the full product list. Save overwrites the previous
// state; there is no partial update at this layer.
type Catalog interface {
	// Load returns all products in stored order. No data yet means
	// an empty slice and a nil error.
	Load(ctx context.Context) ([]Product, error)

	// Save persists the full product list, replacing the previous state.
	// Implementations must not leave a half-written state behind on
	// failure: the previous version staying intact is the worst
	// acceptable outcome.
	Save(ctx context.Context, products []Product) error
}

// AlertState persists the alert engine's configuration and baseline:
// the per-product thresholds and the codes surfaced by the last scan.
type AlertState interface {
	// LoadThresholds returns the per-product threshold map (code -> min
	// quantity). Products absent from the map use the default threshold.
	LoadThresholds(ctx context.Context) (map[int]int, error)

	// SaveThresholds persists the full threshold map.
	SaveThresholds(ctx context.Context, thresholds map[int]int) error

	// LoadNotified returns the product codes reported by the last scan.
	LoadNotified(ctx context.Context) ([]int, error)

	// SaveNotified persists the product codes of the current scan,
	// replacing the previous baseline.
	SaveNotified(ctx context.Context, codes []int) error
}
