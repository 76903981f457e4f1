// Package money formats minor-unit prices for display. The commerce platform
// reports every price as an integer in minor currency units; display formatting
// is a collaborator concern, so callers pass a Formatter around and fall back to
// the raw number when none is configured.
package money

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Formatter turns a minor-unit amount into a display string.
type Formatter func(minorUnits int64) string

// Format applies f, falling back to the raw numeric value when f is nil.
func Format(f Formatter, minorUnits int64) string {
	if f == nil {
		return strconv.FormatInt(minorUnits, 10)
	}
	return f(minorUnits)
}

// WithSymbol builds a two-decimal formatter prefixed by the given currency
// symbol, e.g. WithSymbol("$")(2500) == "$25.00".
func WithSymbol(symbol string) Formatter {
	return func(minorUnits int64) string {
		return symbol + decimal.New(minorUnits, -2).StringFixed(2)
	}
}
