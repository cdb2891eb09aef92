package domain

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts external monetary input to a decimal. Malformed,
// negative or non-finite input yields zero and ok=false so the caller can
// flag the line instead of letting garbage propagate into totals.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseQuantity converts external quantity input to an int ≥ 1.
// Anything else yields zero and ok=false.
func ParseQuantity(s string) (int, bool) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// FloorToCents truncates a non-negative amount to the currency's minor unit.
// Redemption conversion always rounds in the house's favour.
func FloorToCents(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(2)
}
