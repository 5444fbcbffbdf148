// Package wad implements the scaled-integer arithmetic every accounting path relies on.
//
// Amounts and ratios are unsigned 256-bit integers at one of three scales:
// WAD (18 fractional digits), RAY (27 fractional digits) and the 8-digit price
// unit used by oracle feeds. Each multiplication and division comes in a
// round-down and a round-up flavour; callers pick the direction that favours
// the protocol. Intermediate products are computed at 512 bits, so a*b never
// overflows before the division. Division by zero yields zero.
package wad

import (
	"github.com/holiman/uint256"
)

var (
	// WAD 1e18
	WAD = uint256.NewInt(1_000_000_000_000_000_000)
	// RAY 1e27
	RAY = uint256.MustFromDecimal("1000000000000000000000000000")
	// Price 1e8, the conventional oracle feed precision
	Price = uint256.NewInt(100_000_000)

	// WadToRay ratio between the two scales
	WadToRay = uint256.NewInt(1_000_000_000)

	max = new(uint256.Int).SetAllOne()
)

// Max returns the largest representable value, used as the "no debt" health sentinel.
func Max() *uint256.Int {
	return max.Clone()
}

// Zero new zero value
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// New new value from uint64
func New(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// Units returns v * 10^decimals, e.g. Units(10, 18) is ten whole tokens.
func Units(v uint64, decimals uint8) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(v), Pow10(decimals))
}

// Pow10 10^n
func Pow10(n uint8) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(n)))
}

// Percent returns p% at WAD scale.
func Percent(p uint64) *uint256.Int {
	return MulDivDown(uint256.NewInt(p), WAD, uint256.NewInt(100))
}

// MulDivDown floor(a*b/d)
func MulDivDown(a, b, d *uint256.Int) *uint256.Int {
	if d.IsZero() {
		return Zero()
	}

	z, overflow := new(uint256.Int).MulDivOverflow(a, b, d)
	if overflow {
		panic("wad: mul div overflow")
	}

	return z
}

// MulDivUp ceil(a*b/d)
func MulDivUp(a, b, d *uint256.Int) *uint256.Int {
	z := MulDivDown(a, b, d)
	if d.IsZero() {
		return z
	}

	if rem := new(uint256.Int).MulMod(a, b, d); !rem.IsZero() {
		z.AddUint64(z, 1)
	}

	return z
}

// Mul a*b/WAD rounded down
func Mul(a, b *uint256.Int) *uint256.Int {
	return MulDivDown(a, b, WAD)
}

// MulUp a*b/WAD rounded up
func MulUp(a, b *uint256.Int) *uint256.Int {
	return MulDivUp(a, b, WAD)
}

// Div a*WAD/b rounded down
func Div(a, b *uint256.Int) *uint256.Int {
	return MulDivDown(a, WAD, b)
}

// DivUp a*WAD/b rounded up
func DivUp(a, b *uint256.Int) *uint256.Int {
	return MulDivUp(a, WAD, b)
}

// RayMul a*b/RAY rounded down
func RayMul(a, b *uint256.Int) *uint256.Int {
	return MulDivDown(a, b, RAY)
}

// RayMulUp a*b/RAY rounded up
func RayMulUp(a, b *uint256.Int) *uint256.Int {
	return MulDivUp(a, b, RAY)
}

// RayDiv a*RAY/b rounded down
func RayDiv(a, b *uint256.Int) *uint256.Int {
	return MulDivDown(a, RAY, b)
}

// RayDivUp a*RAY/b rounded up
func RayDivUp(a, b *uint256.Int) *uint256.Int {
	return MulDivUp(a, RAY, b)
}

// PriceMul a*price/1e8 rounded down, converts an amount into its quoted value
func PriceMul(a, price *uint256.Int) *uint256.Int {
	return MulDivDown(a, price, Price)
}

// PriceMulUp a*price/1e8 rounded up
func PriceMulUp(a, price *uint256.Int) *uint256.Int {
	return MulDivUp(a, price, Price)
}

// PriceDiv a*1e8/price rounded down, converts a quoted value back into units
func PriceDiv(a, price *uint256.Int) *uint256.Int {
	return MulDivDown(a, Price, price)
}

// PriceDivUp a*1e8/price rounded up
func PriceDivUp(a, price *uint256.Int) *uint256.Int {
	return MulDivUp(a, Price, price)
}

// ToRay widens a WAD value to RAY precision
func ToRay(a *uint256.Int) *uint256.Int {
	return new(uint256.Int).Mul(a, WadToRay)
}

// Add a+b into a fresh value
func Add(a, b *uint256.Int) *uint256.Int {
	return new(uint256.Int).Add(a, b)
}

// Sub a-b into a fresh value, the caller guarantees a >= b
func Sub(a, b *uint256.Int) *uint256.Int {
	return new(uint256.Int).Sub(a, b)
}

// SubFloor a-b, clamped at zero
func SubFloor(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return Zero()
	}

	return new(uint256.Int).Sub(a, b)
}

// Min smaller of a and b
func Min(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return a.Clone()
	}

	return b.Clone()
}

// MaxOf larger of a and b
func MaxOf(a, b *uint256.Int) *uint256.Int {
	if a.Gt(b) {
		return a.Clone()
	}

	return b.Clone()
}

// OrZero returns a clone of v, or zero when v is nil
func OrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return Zero()
	}

	return v.Clone()
}
