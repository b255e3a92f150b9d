/*
Package inventory provides the core stock management engine.

PURPOSE:
  This package contains the domain types and algorithms for a supply-store
  inventory: the product catalog, the append-only stock ledger, and the
  low-stock alert engine. Persistence backends implement the interfaces in
  store.go; the domain itself never touches the filesystem directly.

KEY CONCEPTS IN THIS FILE (product.go):
  - Product: A single stocked item (identity, price, quantity, expiry)
  - Availability: Derived from quantity; never set independently

DESIGN PRINCIPLES:
  1. Invariants over warnings: Negative price/quantity is rejected with a
     ValidationError, never clamped or silently ignored.
  2. Precision: Uses decimal.Decimal for prices to avoid float errors.
  3. Explicit registration: Constructing a Product does NOT register it
     anywhere; only Inventory.Add puts it in the catalog.

USAGE:
  p, err := inventory.NewProduct(100, "Ivermectin 500ml", "Antiparasitic",
      "Cattle dewormer", decimal.NewFromInt(25), 40, "12/05/2027")

SEE ALSO:
  - inventory.go: Catalog holding Products, the only stock mutator
  - ledger.go:    Audit trail of quantity changes
  - alerts.go:    Low-stock threshold detection
*/
package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCT - A single stocked item
// =============================================================================

// Product is a stocked item. Quantity must only change through
// Inventory.UpdateStock so every change lands in the ledger; mutating the
// field directly bypasses the audit trail.
type Product struct {
	Code        int
	Name        string
	Category    string
	Description string
	Price       decimal.Decimal
	Quantity    int
	ExpiryDate  string // free-form, e.g. "12/05/2027" or "N/A"
	Available   bool   // derived: Quantity > 0
}

// NewProduct builds a validated Product. Price and quantity must be
// non-negative; availability is computed from the quantity.
func NewProduct(code int, name, category, description string, price decimal.Decimal, quantity int, expiryDate string) (Product, error) {
	if price.IsNegative() {
		return Product{}, &ValidationError{Field: "price", Message: "cannot be negative"}
	}
	if quantity < 0 {
		return Product{}, &ValidationError{Field: "quantity", Message: "cannot be negative"}
	}
	return Product{
		Code:        code,
		Name:        name,
		Category:    category,
		Description: description,
		Price:       price,
		Quantity:    quantity,
		ExpiryDate:  expiryDate,
		Available:   quantity > 0,
	}, nil
}

// SetQuantity applies a new quantity and recomputes availability.
// Negative quantities are rejected, leaving the product unchanged.
func (p *Product) SetQuantity(quantity int) error {
	if quantity < 0 {
		return &ValidationError{Field: "quantity", Message: "cannot be negative"}
	}
	p.Quantity = quantity
	p.Available = quantity > 0
	return nil
}

// SetPrice applies a new price. Negative prices are rejected.
func (p *Product) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return &ValidationError{Field: "price", Message: "cannot be negative"}
	}
	p.Price = price
	return nil
}

// Validate checks the cross-field invariants. Used when records arrive
// from a storage backend rather than through NewProduct.
func (p Product) Validate() error {
	if p.Price.IsNegative() {
		return &ValidationError{Field: "price", Message: "cannot be negative"}
	}
	if p.Quantity < 0 {
		return &ValidationError{Field: "quantity", Message: "cannot be negative"}
	}
	return nil
}

func (p Product) String() string {
	state := "available"
	if !p.Available {
		state = "out of stock"
	}
	return fmt.Sprintf("%d %s (%s) qty=%d %s", p.Code, p.Name, p.Category, p.Quantity, state)
}
