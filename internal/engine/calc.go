// Package engine is the trade lifecycle and P&L engine: pure calculation,
// validation and state-transition rules. Every mutation a caller wants
// persisted funnels through here first. The engine performs no I/O and
// keeps no state between calls; edit buffers belong to the caller.
package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RoundMoney parses value and fixes it to exactly two fractional digits.
// All monetary parsing goes through here so there is one rounding policy;
// rounding happens once, when a record is finalized, not on every keystroke.
func RoundMoney(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, invalidNumber("value")
	}
	return d.Round(2), nil
}

// ProfitLossAmount returns (exitOrClose - entry) * quantity at two decimal
// places. Zero quantity is not special-cased; the result is simply 0.
func ProfitLossAmount(entry, exitOrClose decimal.Decimal, quantity int64) decimal.Decimal {
	return exitOrClose.Sub(entry).Mul(decimal.NewFromInt(quantity)).Round(2)
}

// ProfitLossPercent returns the P&L as a percentage of the entry cost.
// A zero entry price yields 0 rather than a division failure.
func ProfitLossPercent(entry, exitOrClose decimal.Decimal) decimal.Decimal {
	if entry.IsZero() {
		return decimal.Zero
	}
	return exitOrClose.Sub(entry).Div(entry).Mul(hundred).Round(2)
}

// InvestmentFromEntry derives the investment amount while a price or
// quantity field is being edited. It reports ok only when both inputs parse
// and are positive; otherwise the caller must leave the stored investment
// untouched, so a transient empty field never zeroes it out.
func InvestmentFromEntry(entryPrice, quantity string) (decimal.Decimal, bool) {
	p, err := decimal.NewFromString(strings.TrimSpace(entryPrice))
	if err != nil || !p.IsPositive() {
		return decimal.Decimal{}, false
	}
	q, err := decimal.NewFromString(strings.TrimSpace(quantity))
	if err != nil || !q.IsPositive() {
		return decimal.Decimal{}, false
	}
	return p.Mul(q).Round(2), true
}

// NiftyReturn computes the index return percentage. It reports ok only when
// both levels parse as non-zero numbers; otherwise the field stays blank.
func NiftyReturn(niftyFrom, niftyClose string) (decimal.Decimal, bool) {
	from, err := decimal.NewFromString(strings.TrimSpace(niftyFrom))
	if err != nil || from.IsZero() {
		return decimal.Decimal{}, false
	}
	to, err := decimal.NewFromString(strings.TrimSpace(niftyClose))
	if err != nil || to.IsZero() {
		return decimal.Decimal{}, false
	}
	return to.Sub(from).Div(from).Mul(hundred).Round(2), true
}
