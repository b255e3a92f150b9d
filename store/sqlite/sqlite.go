/*
Package sqlite provides a SQLite-backed implementation of the inventory
persistence interfaces.

PURPOSE:
  Alternative to the flat-file backend for installations that want a
  single database file instead of a data directory. Implements
  inventory.Catalog, inventory.Ledger and inventory.AlertState.

KEY TABLES:
  products:     Catalog; position column preserves insertion order
  stock_ledger: Immutable journal of quantity changes
  thresholds:   Per-product alert minimums
  notified:     Codes surfaced by the last alert scan

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE statement touches stock_ledger anywhere in this
  package. History accumulates; the catalog tables are replaced
  wholesale on Save, matching the whole-collection semantics of the
  flat-file backend.

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging): readers don't
  block the writer and crash recovery is better than rollback journal.

USAGE:
  store, err := sqlite.New("./agrovet.db")
  if err != nil { ... }
  defer store.Close()
  inv := inventory.NewInventory(store, store, log)

MIGRATION:
  Schema is auto-migrated on New(). At this schema size a migration
  tool would be overkill.

SEE ALSO:
  - inventory/store.go:  Interface contracts
  - store/jsonfile:      Flat-file default backend
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/agrovet/stock-engine/inventory"
)

// Store implements all inventory persistence interfaces over SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (creating if needed) the database at path and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		code        INTEGER PRIMARY KEY,
		name        TEXT NOT NULL,
		category    TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		price       TEXT NOT NULL,
		quantity    INTEGER NOT NULL CHECK (quantity >= 0),
		available   INTEGER NOT NULL,
		expiry_date TEXT NOT NULL DEFAULT '',
		position    INTEGER NOT NULL
	);

	-- Immutable journal. INSERT only; rowid preserves append order.
	CREATE TABLE IF NOT EXISTS stock_ledger (
		id                TEXT PRIMARY KEY,
		product_code      INTEGER NOT NULL,
		product_name      TEXT NOT NULL,
		previous_quantity INTEGER NOT NULL,
		new_quantity      INTEGER NOT NULL,
		reason            TEXT NOT NULL DEFAULT '',
		recorded_at       TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_stock_ledger_product
		ON stock_ledger(product_code);

	CREATE TABLE IF NOT EXISTS thresholds (
		code         INTEGER PRIMARY KEY,
		min_quantity INTEGER NOT NULL CHECK (min_quantity >= 0)
	);

	CREATE TABLE IF NOT EXISTS notified (
		code INTEGER PRIMARY KEY
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// wrapErr tags backend failures as recoverable persistence errors.
func wrapErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, inventory.ErrPersistence)
}

// =============================================================================
// CATALOG
// =============================================================================

func (s *Store) Load(ctx context.Context) ([]inventory.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, category, description, price, quantity, available, expiry_date
		FROM products ORDER BY position`)
	if err != nil {
		return nil, wrapErr("load products", err)
	}
	defer rows.Close()

	var products []inventory.Product
	for rows.Next() {
		var p inventory.Product
		var price string
		var available int
		if err := rows.Scan(&p.Code, &p.Name, &p.Category, &p.Description,
			&price, &p.Quantity, &available, &p.ExpiryDate); err != nil {
			return nil, wrapErr("scan product", err)
		}
		if p.Price, err = decimalFromDB(price); err != nil {
			return nil, wrapErr("scan product price", err)
		}
		p.Available = available != 0
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("load products", err)
	}
	return products, nil
}

func (s *Store) Save(ctx context.Context, products []inventory.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("save products", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return wrapErr("save products", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (code, name, category, description, price, quantity, available, expiry_date, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return wrapErr("save products", err)
	}
	defer stmt.Close()

	for i, p := range products {
		available := 0
		if p.Available {
			available = 1
		}
		if _, err := stmt.ExecContext(ctx, p.Code, p.Name, p.Category, p.Description,
			p.Price.String(), p.Quantity, available, p.ExpiryDate, i); err != nil {
			return wrapErr("save products", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return wrapErr("save products", err)
	}
	return nil
}

// =============================================================================
// LEDGER (append-only)
// =============================================================================

func (s *Store) Append(ctx context.Context, entry inventory.StockEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_ledger (id, product_code, product_name, previous_quantity, new_quantity, reason, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ProductCode, entry.ProductName,
		entry.PreviousQuantity, entry.NewQuantity, entry.Reason,
		entry.RecordedAt.String())
	if err != nil {
		return wrapErr("append ledger entry", err)
	}
	return nil
}

func (s *Store) Entries(ctx context.Context) ([]inventory.StockEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_code, product_name, previous_quantity, new_quantity, reason, recorded_at
		FROM stock_ledger ORDER BY rowid`)
	if err != nil {
		return nil, wrapErr("load ledger", err)
	}
	defer rows.Close()

	var entries []inventory.StockEntry
	for rows.Next() {
		var e inventory.StockEntry
		var recordedAt string
		if err := rows.Scan(&e.ID, &e.ProductCode, &e.ProductName,
			&e.PreviousQuantity, &e.NewQuantity, &e.Reason, &recordedAt); err != nil {
			return nil, wrapErr("scan ledger entry", err)
		}
		if e.RecordedAt, err = ledgerTimeFromDB(recordedAt); err != nil {
			return nil, wrapErr("scan ledger timestamp", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("load ledger", err)
	}
	return entries, nil
}

// =============================================================================
// ALERT STATE
// =============================================================================

func (s *Store) LoadThresholds(ctx context.Context) (map[int]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT code, min_quantity FROM thresholds`)
	if err != nil {
		return nil, wrapErr("load thresholds", err)
	}
	defer rows.Close()

	thresholds := make(map[int]int)
	for rows.Next() {
		var code, min int
		if err := rows.Scan(&code, &min); err != nil {
			return nil, wrapErr("scan threshold", err)
		}
		thresholds[code] = min
	}
	return thresholds, rows.Err()
}

func (s *Store) SaveThresholds(ctx context.Context, thresholds map[int]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("save thresholds", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM thresholds`); err != nil {
		return wrapErr("save thresholds", err)
	}
	for code, min := range thresholds {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO thresholds (code, min_quantity) VALUES (?, ?)`, code, min); err != nil {
			return wrapErr("save thresholds", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return wrapErr("save thresholds", err)
	}
	return nil
}

func (s *Store) LoadNotified(ctx context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT code FROM notified ORDER BY code`)
	if err != nil {
		return nil, wrapErr("load notified baseline", err)
	}
	defer rows.Close()

	var codes []int
	for rows.Next() {
		var code int
		if err := rows.Scan(&code); err != nil {
			return nil, wrapErr("scan notified code", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (s *Store) SaveNotified(ctx context.Context, codes []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("save notified baseline", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notified`); err != nil {
		return wrapErr("save notified baseline", err)
	}
	for _, code := range codes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO notified (code) VALUES (?)`, code); err != nil {
			return wrapErr("save notified baseline", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return wrapErr("save notified baseline", err)
	}
	return nil
}
