// Package till validates cash settlements against the drawer float. The float
// itself is server-owned: an append-only ledger of cash movements summed on
// read (see the cash_movements table), never client-local state, so two
// terminals cannot race each other on it.
package till

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientCash means the customer tendered less than the total due.
	ErrInsufficientCash = errors.New("cash tendered is less than total due")
	// ErrInsufficientFloat means the drawer cannot cover the change owed.
	ErrInsufficientFloat = errors.New("till float cannot cover change")
)

// Settle validates tendered cash against the total due and the available
// float, and returns the change owed. It is pure and re-entrant: the caller
// records the float mutation (float' = float + tendered - change, i.e.
// float + total) only after the order itself persists, inside the same
// transaction, so a failed persistence rolls the float back.
func Settle(total, tendered, float decimal.Decimal) (change decimal.Decimal, err error) {
	if tendered.LessThan(total) {
		return decimal.Zero, ErrInsufficientCash
	}
	change = tendered.Sub(total)
	if change.GreaterThan(float) {
		return decimal.Zero, ErrInsufficientFloat
	}
	return change, nil
}
