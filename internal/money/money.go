// Package money converts between the decimal amounts the JSON API speaks
// and the integer cents the ledger stores.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts that are not positive or carry
// sub-cent precision.
var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

// ToCents converts a decimal amount to integer cents. Amounts must be
// positive and have at most two fractional digits.
func ToCents(d decimal.Decimal) (int64, error) {
	c := d.Mul(hundred)
	if !c.IsInteger() || !c.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return c.IntPart(), nil
}

// FromCents renders cents as a two-decimal amount, e.g. 5000 -> "50.00".
func FromCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
