/*
Package jsonfile persists the inventory as flat JSON files.

PURPOSE:
  The historical database of this system is a directory of JSON arrays,
  one file per collection:

    productos.json          product catalog
    historial_stock.json    stock change journal
    stock_thresholds.json   per-product alert thresholds
    stock_alerts.json       codes surfaced by the last alert scan

  Field names and formats are the historical wire format (Spanish keys,
  "dd/mm/yyyy HH:MM:SS" journal timestamps) so existing data files load
  unchanged.

ATOMIC WRITES:
  Every write goes to a temp file in the same directory followed by an
  os.Rename over the target. A crash mid-write leaves the previous file
  intact instead of a truncated one.

MISSING FILES:
  A missing or empty file is an empty collection, not an error: the
  first run has no data. Only real I/O and decode failures surface, and
  they wrap inventory.ErrPersistence.

CONCURRENCY:
  A process-wide mutex serializes file access. Two PROCESSES sharing a
  directory are not protected; that is an accepted limitation of a
  single-user tool.

SEE ALSO:
  - inventory/store.go: Interface contracts
  - store/sqlite:       Database-backed alternative
*/
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/agrovet/stock-engine/inventory"
)

// Historical file names, kept for compatibility with existing data dirs.
const (
	catalogFile    = "productos.json"
	ledgerFile     = "historial_stock.json"
	thresholdsFile = "stock_thresholds.json"
	notifiedFile   = "stock_alerts.json"
)

// Store implements inventory.Catalog, inventory.Ledger and
// inventory.AlertState over a directory of JSON files.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates the data directory if needed and returns a Store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %v: %w", dir, err, inventory.ErrPersistence)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the backing data directory.
func (s *Store) Dir() string { return s.dir }

// =============================================================================
// WIRE RECORDS - The historical flat-file format
// =============================================================================

type productRecord struct {
	Code        int         `json:"code"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Quantity    int         `json:"quantity"`
	Available   bool        `json:"disponibilidad"`
	ExpiryDate  string      `json:"fecha_vencimiento"`
}

type ledgerRecord struct {
	ProductCode      int                  `json:"codigo_producto"`
	ProductName      string               `json:"nombre_producto"`
	PreviousQuantity int                  `json:"stock_anterior"`
	NewQuantity      int                  `json:"nuevo_stock"`
	Reason           string               `json:"motivo"`
	RecordedAt       inventory.LedgerTime `json:"fecha"`
}

func toProductRecord(p inventory.Product) productRecord {
	return productRecord{
		Code:        p.Code,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Price:       json.Number(p.Price.String()),
		Quantity:    p.Quantity,
		Available:   p.Available,
		ExpiryDate:  p.ExpiryDate,
	}
}

func fromProductRecord(rec productRecord) (inventory.Product, error) {
	price := decimal.Zero
	if rec.Price != "" {
		var err error
		price, err = decimal.NewFromString(rec.Price.String())
		if err != nil {
			return inventory.Product{}, fmt.Errorf("product %d: bad price %q: %w",
				rec.Code, rec.Price, inventory.ErrPersistence)
		}
	}
	return inventory.Product{
		Code:        rec.Code,
		Name:        rec.Name,
		Category:    rec.Category,
		Description: rec.Description,
		Price:       price,
		Quantity:    rec.Quantity,
		ExpiryDate:  rec.ExpiryDate,
		Available:   rec.Quantity > 0,
	}, nil
}

// =============================================================================
// CATALOG
// =============================================================================

func (s *Store) Load(_ context.Context) ([]inventory.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []productRecord
	if err := s.readFile(catalogFile, &records); err != nil {
		return nil, err
	}

	products := make([]inventory.Product, 0, len(records))
	for _, rec := range records {
		p, err := fromProductRecord(rec)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *Store) Save(_ context.Context, products []inventory.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]productRecord, len(products))
	for i, p := range products {
		records[i] = toProductRecord(p)
	}
	return s.writeFile(catalogFile, records)
}

// =============================================================================
// LEDGER (append-only; whole-file read-modify-write)
// =============================================================================

func (s *Store) Append(_ context.Context, entry inventory.StockEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []ledgerRecord
	if err := s.readFile(ledgerFile, &records); err != nil {
		return err
	}

	records = append(records, ledgerRecord{
		ProductCode:      entry.ProductCode,
		ProductName:      entry.ProductName,
		PreviousQuantity: entry.PreviousQuantity,
		NewQuantity:      entry.NewQuantity,
		Reason:           entry.Reason,
		RecordedAt:       entry.RecordedAt,
	})
	return s.writeFile(ledgerFile, records)
}

func (s *Store) Entries(_ context.Context) ([]inventory.StockEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []ledgerRecord
	if err := s.readFile(ledgerFile, &records); err != nil {
		return nil, err
	}

	entries := make([]inventory.StockEntry, len(records))
	for i, rec := range records {
		entries[i] = inventory.StockEntry{
			ProductCode:      rec.ProductCode,
			ProductName:      rec.ProductName,
			PreviousQuantity: rec.PreviousQuantity,
			NewQuantity:      rec.NewQuantity,
			Reason:           rec.Reason,
			RecordedAt:       rec.RecordedAt,
		}
	}
	return entries, nil
}

// =============================================================================
// ALERT STATE
// =============================================================================

// Thresholds are stored as {"<code>": minimum} with string keys, and the
// notified baseline as an array of code strings. Both quirks come from
// the historical files.

func (s *Store) LoadThresholds(_ context.Context) (map[int]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw map[string]int
	if err := s.readFile(thresholdsFile, &raw); err != nil {
		return nil, err
	}

	thresholds := make(map[int]int, len(raw))
	for key, min := range raw {
		code, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("thresholds: bad product code %q: %w", key, inventory.ErrPersistence)
		}
		thresholds[code] = min
	}
	return thresholds, nil
}

func (s *Store) SaveThresholds(_ context.Context, thresholds map[int]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := make(map[string]int, len(thresholds))
	for code, min := range thresholds {
		raw[strconv.Itoa(code)] = min
	}
	return s.writeFile(thresholdsFile, raw)
}

func (s *Store) LoadNotified(_ context.Context) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw []string
	if err := s.readFile(notifiedFile, &raw); err != nil {
		return nil, err
	}

	codes := make([]int, 0, len(raw))
	for _, key := range raw {
		code, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("notified baseline: bad product code %q: %w", key, inventory.ErrPersistence)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func (s *Store) SaveNotified(_ context.Context, codes []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := make([]string, len(codes))
	for i, code := range codes {
		raw[i] = strconv.Itoa(code)
	}
	return s.writeFile(notifiedFile, raw)
}

// =============================================================================
// FILE I/O
// =============================================================================

// readFile decodes a JSON file into v. Missing or empty files leave v
// untouched and return nil.
func (s *Store) readFile(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %v: %w", name, err, inventory.ErrPersistence)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %v: %w", name, err, inventory.ErrPersistence)
	}
	return nil
}

// writeFile writes v as indented JSON via a temp file in the same
// directory, then renames over the target so readers never observe a
// partial write.
func (s *Store) writeFile(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %v: %w", name, err, inventory.ErrPersistence)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %v: %w", name, err, inventory.ErrPersistence)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, inventory.ErrPersistence)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %v: %w", name, err, inventory.ErrPersistence)
	}
	return nil
}
