package number

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

// FromUnits renders a fixed point integer with the given number of fractional digits
func FromUnits(v *uint256.Int, decimals int32) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(v.ToBig(), -decimals)
}

// FromWad renders an 18 decimal fixed point integer
func FromWad(v *uint256.Int) decimal.Decimal {
	return FromUnits(v, 18)
}

// ToUnits parses d into a fixed point integer, truncating extra digits
func ToUnits(d decimal.Decimal, decimals int32) (*uint256.Int, error) {
	if d.IsNegative() {
		return nil, errors.New("negative amount")
	}

	v, overflow := uint256.FromBig(d.Shift(decimals).Truncate(0).BigInt())
	if overflow {
		return nil, errors.New("amount overflows 256 bits")
	}

	return v, nil
}

// ToWad parses d at 18 decimals
func ToWad(d decimal.Decimal) (*uint256.Int, error) {
	return ToUnits(d, 18)
}

// MustWad parses a decimal string at 18 decimals, panics on malformed input
func MustWad(s string) *uint256.Int {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	v, err := ToWad(d)
	if err != nil {
		panic(err)
	}

	return v
}
