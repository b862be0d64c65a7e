package decimal

import (
	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance used when comparing dollar amounts produced by
// chains of decimal arithmetic (divisions are rounded to DivisionPrecision).
var Epsilon = decimal.New(1, -6)

// One is the decimal constant 1.
var One = decimal.NewFromInt(1)

// NearlyEqual reports whether a and b differ by no more than Epsilon.
func NearlyEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}

// IsNegligible reports whether d is within Epsilon of zero.
func IsNegligible(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(Epsilon)
}

// Snap returns zero for amounts within Epsilon of zero and d otherwise.
func Snap(d decimal.Decimal) decimal.Decimal {
	if IsNegligible(d) {
		return decimal.Zero
	}
	return d
}

// NonNegative floors d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Min returns the minimum of two amounts
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the maximum of two amounts
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Sum adds all amounts.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Format formats the amount as dollars with cents
func Format(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
