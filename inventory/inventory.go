/*
inventory.go - The authoritative product catalog and its one mutator

PURPOSE:
  Inventory holds the in-memory product list and mediates every stock
  change. UpdateStock is the single path that changes a quantity: it
  validates, mutates, journals the change in the Ledger, and persists
  the catalog. Anything else reading products gets copies.

INVARIANTS:
  1. No two products share a code.
  2. quantity >= 0 and available == (quantity > 0) after every mutation.
  3. Every successful UpdateStock appends exactly one ledger entry whose
     previous/new quantities match the pre/post state.

ORDERING:
  Products keep insertion order. Lookups by name/category are
  case-insensitive scans; at catalog scale (hundreds of items) a linear
  scan beats maintaining secondary indexes.

WRITE PATH:
  validate -> mutate in memory -> append ledger entry -> save catalog.
  The ledger entry goes first so a crash between the two steps loses the
  catalog write, not the audit record. A ledger append failure is logged
  and does not fail the stock update (a missing history file on first
  run must not block sales).

SEE ALSO:
  - product.go: The Product value type
  - ledger.go:  StockEntry and the Ledger interface
  - alerts.go:  Consumes Products() to find low stock
*/
package inventory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Inventory is the authoritative in-memory product catalog. All methods
// are safe for concurrent use.
type Inventory struct {
	catalog Catalog
	ledger  Ledger
	log     *zap.Logger

	mu       sync.RWMutex
	products []Product   // insertion order
	index    map[int]int // code -> position in products
}

// NewInventory wires a catalog backend and a ledger. A nil logger is
// replaced with a no-op logger.
func NewInventory(catalog Catalog, ledger Ledger, log *zap.Logger) *Inventory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Inventory{
		catalog:  catalog,
		ledger:   ledger,
		log:      log,
		products: []Product{},
		index:    make(map[int]int),
	}
}

// Load replaces the in-memory state with the catalog backend's contents.
// An empty backend (first run) yields an empty inventory. Records that
// violate invariants or repeat a code are skipped with a warning rather
// than poisoning the whole catalog.
func (inv *Inventory) Load(ctx context.Context) error {
	records, err := inv.catalog.Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	inv.products = make([]Product, 0, len(records))
	inv.index = make(map[int]int, len(records))
	for _, p := range records {
		if err := p.Validate(); err != nil {
			inv.log.Warn("skipping invalid catalog record",
				zap.Int("code", p.Code), zap.Error(err))
			continue
		}
		if _, dup := inv.index[p.Code]; dup {
			inv.log.Warn("skipping duplicate catalog record", zap.Int("code", p.Code))
			continue
		}
		p.Available = p.Quantity > 0
		inv.index[p.Code] = len(inv.products)
		inv.products = append(inv.products, p)
	}
	return nil
}

// Save persists the current in-memory state to the catalog backend.
func (inv *Inventory) Save(ctx context.Context) error {
	inv.mu.RLock()
	snapshot := make([]Product, len(inv.products))
	copy(snapshot, inv.products)
	inv.mu.RUnlock()

	if err := inv.catalog.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}

// Add registers a new product and persists the catalog. The code must
// not already be registered.
func (inv *Inventory) Add(ctx context.Context, p Product) error {
	if err := p.Validate(); err != nil {
		return err
	}

	inv.mu.Lock()
	if _, dup := inv.index[p.Code]; dup {
		inv.mu.Unlock()
		return &DuplicateCodeError{Code: p.Code}
	}
	p.Available = p.Quantity > 0
	inv.index[p.Code] = len(inv.products)
	inv.products = append(inv.products, p)
	inv.mu.Unlock()

	return inv.Save(ctx)
}

// FindByCode returns the product with the given code, or a NotFoundError.
func (inv *Inventory) FindByCode(code int) (Product, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	i, ok := inv.index[code]
	if !ok {
		return Product{}, &NotFoundError{Code: code}
	}
	return inv.products[i], nil
}

// FindByName returns all products whose name matches, ignoring case.
// A miss is an empty slice, never an error.
func (inv *Inventory) FindByName(name string) []Product {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	var out []Product
	for _, p := range inv.products {
		if strings.EqualFold(p.Name, name) {
			out = append(out, p)
		}
	}
	return out
}

// FindByCategory returns all products in the category, ignoring case.
// A miss is an empty slice, never an error.
func (inv *Inventory) FindByCategory(category string) []Product {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	var out []Product
	for _, p := range inv.products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// Products returns a copy of the catalog in insertion order.
func (inv *Inventory) Products() []Product {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]Product, len(inv.products))
	copy(out, inv.products)
	return out
}

// Len returns the number of registered products.
func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.products)
}

// UpdateStock sets a product's quantity, journals the change, and
// persists the catalog. It is the only operation that changes stock.
//
// Failure modes:
//   - unknown code:        NotFoundError, nothing changes
//   - negative quantity:   ValidationError, nothing changes
//   - ledger append fails: logged warning, update proceeds
//   - catalog save fails:  wrapped ErrPersistence; in-memory state keeps
//     the new quantity and the next successful Save flushes it
func (inv *Inventory) UpdateStock(ctx context.Context, code, newQuantity int, reason string) (Product, error) {
	if newQuantity < 0 {
		return Product{}, &ValidationError{Field: "quantity", Message: "cannot be negative"}
	}

	inv.mu.Lock()
	i, ok := inv.index[code]
	if !ok {
		inv.mu.Unlock()
		return Product{}, &NotFoundError{Code: code}
	}

	previous := inv.products[i].Quantity
	if err := inv.products[i].SetQuantity(newQuantity); err != nil {
		inv.mu.Unlock()
		return Product{}, err
	}
	updated := inv.products[i]

	snapshot := make([]Product, len(inv.products))
	copy(snapshot, inv.products)
	inv.mu.Unlock()

	entry := StockEntry{
		ID:               uuid.NewString(),
		ProductCode:      updated.Code,
		ProductName:      updated.Name,
		PreviousQuantity: previous,
		NewQuantity:      newQuantity,
		Reason:           reason,
		RecordedAt:       LedgerNow(),
	}
	if err := inv.ledger.Append(ctx, entry); err != nil {
		inv.log.Warn("stock ledger append failed",
			zap.Int("code", updated.Code), zap.Error(err))
	}

	if err := inv.catalog.Save(ctx, snapshot); err != nil {
		return Product{}, fmt.Errorf("save catalog after stock update: %w", err)
	}

	inv.log.Info("stock updated",
		zap.Int("code", updated.Code),
		zap.String("name", updated.Name),
		zap.Int("previous", previous),
		zap.Int("new", newQuantity),
		zap.String("reason", reason))
	return updated, nil
}

// History returns the full stock change journal in append order.
func (inv *Inventory) History(ctx context.Context) ([]StockEntry, error) {
	entries, err := inv.ledger.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stock history: %w", err)
	}
	return entries, nil
}
