// Package decimals converts ledger amounts to decimals and computes display percentages
// without going through floating point.
package decimals

import (
	"github.com/Cleverse/go-utilities/utils"
	"github.com/gaze-network/uint128"
	"github.com/shopspring/decimal"
)

const (
	DefaultDivPrecision = 36

	// PercentPlaces is the number of decimal places of every reported percentage.
	PercentPlaces = 2
)

var hundred = decimal.NewFromInt(100)

func init() {
	decimal.DivisionPrecision = DefaultDivPrecision
}

// MustFromString convert string to decimal.Decimal. Panic if error
// string must be a valid number, not NaN, Inf or empty string.
func MustFromString(s string) decimal.Decimal {
	return utils.Must(decimal.NewFromString(s))
}

// ToDecimal converts an amount in base units to a decimal with the given number of decimals,
// e.g. ToDecimal(1500, 3) is 1.5.
func ToDecimal(amount uint128.Uint128, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(amount.Big(), -int32(decimals))
}

// FromUint64 converts a count to a decimal.
func FromUint64(v uint64) decimal.Decimal {
	return ToDecimal(uint128.From64(v), 0)
}

// Percent returns numerator / denominator * 100 rounded to PercentPlaces.
// It's zero when the denominator is zero.
func Percent(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.Div(denominator).Mul(hundred).Round(PercentPlaces)
}

// PercentOf is Percent for counts.
func PercentOf(numerator, denominator uint64) decimal.Decimal {
	return Percent(FromUint64(numerator), FromUint64(denominator))
}

// PercentOfAmount is Percent for amounts in base units.
func PercentOfAmount(numerator, denominator uint128.Uint128) decimal.Decimal {
	return Percent(ToDecimal(numerator, 0), ToDecimal(denominator, 0))
}
