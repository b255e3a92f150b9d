package sqlite

import (
	"github.com/shopspring/decimal"

	"github.com/agrovet/stock-engine/inventory"
)

func decimalFromDB(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func ledgerTimeFromDB(s string) (inventory.LedgerTime, error) {
	if s == "" {
		return inventory.LedgerTime{}, nil
	}
	return inventory.ParseLedgerTime(s)
}
