/*
ledger.go - Append-only stock change journal

PURPOSE:
  The Ledger is the immutable audit trail of stock changes. Every
  successful UpdateStock appends exactly one entry recording who changed
  what, from which quantity to which, and why. The catalog answers "how
  much is there now"; the ledger answers "how did it get there".

CRITICAL INVARIANTS:
  1. APPEND-ONLY: No Update, No Delete. Ever.
  2. IMMUTABLE: Once written, entries are never modified.
  3. ORDERED: Entries() returns original append order; callers wanting
     most-recent-first reverse the slice themselves.

CORRECTIONS:
  A wrong stock update is corrected by a new UpdateStock with an
  explanatory reason, producing a second entry. Both remain in the
  ledger and history is preserved.

SEE ALSO:
  - inventory.go: The only producer of ledger entries
  - store/jsonfile, store/sqlite, store/memory: Implementations
*/
package inventory

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// LEDGER TIME - Timestamps in the journal's wire format
// =============================================================================

// ledgerTimeLayout is the historical journal format: "dd/mm/yyyy HH:MM:SS".
const ledgerTimeLayout = "02/01/2006 15:04:05"

// LedgerTime is a timestamp that marshals in the journal's wire format
// instead of RFC 3339. Sub-second precision is deliberately dropped.
type LedgerTime struct {
	time.Time
}

// NewLedgerTime truncates t to the journal's second precision.
func NewLedgerTime(t time.Time) LedgerTime {
	return LedgerTime{Time: t.Truncate(time.Second)}
}

// LedgerNow returns the current time at journal precision.
func LedgerNow() LedgerTime {
	return NewLedgerTime(time.Now())
}

func (lt LedgerTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + lt.Format(ledgerTimeLayout) + `"`), nil
}

func (lt *LedgerTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("ledger time: expected quoted string, got %s", s)
	}
	t, err := time.ParseInLocation(ledgerTimeLayout, s[1:len(s)-1], time.Local)
	if err != nil {
		return fmt.Errorf("ledger time: %w", err)
	}
	lt.Time = t
	return nil
}

func (lt LedgerTime) String() string {
	return lt.Format(ledgerTimeLayout)
}

// ParseLedgerTime parses a timestamp in the journal's wire format.
func ParseLedgerTime(s string) (LedgerTime, error) {
	t, err := time.ParseInLocation(ledgerTimeLayout, s, time.Local)
	if err != nil {
		return LedgerTime{}, fmt.Errorf("ledger time: %w", err)
	}
	return LedgerTime{Time: t}, nil
}

// =============================================================================
// STOCK ENTRY - One recorded quantity change
// =============================================================================

// StockEntry records a single stock change. The product name is a
// snapshot at mutation time: renaming the product later must not rewrite
// history.
type StockEntry struct {
	ID               string // assigned at append time; not part of the flat-file format
	ProductCode      int
	ProductName      string
	PreviousQuantity int
	NewQuantity      int
	Reason           string
	RecordedAt       LedgerTime
}

// =============================================================================
// LEDGER - Persistence interface
// =============================================================================

// Ledger persists stock entries. Implementations are append-only: the
// interface exposes no way to edit or remove an entry.
type Ledger interface {
	// Append durably adds one entry. This is the ONLY write operation.
	Append(ctx context.Context, entry StockEntry) error

	// Entries returns all entries in original append order.
	Entries(ctx context.Context) ([]StockEntry, error)
}
