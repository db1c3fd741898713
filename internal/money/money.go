// Package money holds the peso presentation boundary. Internal arithmetic
// stays on unrounded decimals; rounding happens here and nowhere else.
package money

import "github.com/shopspring/decimal"

// Symbol is the Philippine peso sign used on receipts and payslips.
const Symbol = "₱"

// Round2 rounds to 2 decimal places (presentation boundary only).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// String renders an amount with exactly 2 decimal places.
func String(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Format renders an amount as peso, e.g. "₱270.00".
func Format(d decimal.Decimal) string {
	return Symbol + d.StringFixed(2)
}

// Parse converts a string amount; invalid input is neutralized to zero so a
// malformed numeric field cannot abort a whole payroll run or list render.
func Parse(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
