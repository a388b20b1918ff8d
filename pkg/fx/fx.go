// Package fx implements the core's fixed-point math: Q64.64 sqrt-price
// conversions and swap-step amount arithmetic. Every operation here is
// integer-only and overflow-checked per §4.1/§9 of the design — no floats,
// no approximations, deterministic bit-for-bit output.
package fx

import (
	"math/big"

	"lukechampine.com/uint128"
)

// MinTick and MaxTick bound the addressable price grid; sqrt_price_from_tick
// at MaxTick is the largest value that still fits in a Q64.64 uint128.
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

// Q64 is 2^64, the fixed-point scale of a Q64.64 value's fractional half.
var Q64 = new(big.Int).Lsh(big.NewInt(1), 64)

// Q128 is 2^128, used to invert a Q64.64 ratio (floor(2^128/ratio)) and as
// the scale for fee-growth accumulators per unit of liquidity.
var Q128 = new(big.Int).Lsh(big.NewInt(1), 128)

// tickFactorsQ64 holds, for each bit b of |tick|, floor(sqrt(1.0001)^(2^b) *
// 2^64) as a Q64.64 fixed-point integer. sqrt_price_from_tick builds
// sqrt(1.0001)^|tick| by multiplying in the factor for every set bit of
// |tick|, mirroring the classic tick-math bit-decomposition: a tick is
// expressed in binary and the sqrt-price is the product of precomputed
// per-bit powers of sqrt(1.0001).
var tickFactorsQ64 = [20]*big.Int{
	mustBig("18447666387855959850"),
	mustBig("18448588748116922571"),
	mustBig("18450433606991734263"),
	mustBig("18454123878217468680"),
	mustBig("18461506635090006701"),
	mustBig("18476281010653910144"),
	mustBig("18505865242158250041"),
	mustBig("18565175891880433522"),
	mustBig("18684368066214940582"),
	mustBig("18925053041275764671"),
	mustBig("19415764168677886926"),
	mustBig("20435687552633177494"),
	mustBig("22639080592224303007"),
	mustBig("27784196929998399742"),
	mustBig("41848122137994986128"),
	mustBig("94936283578220370716"),
	mustBig("488590176327622479860"),
	mustBig("12941056668319229769860"),
	mustBig("9078618265828848800676189"),
	mustBig("4468068147273140139091016147737"),
}

func mustBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("fx: bad tick factor literal " + s)
	}
	return n
}

// SqrtPriceX64 is a Q64.64 fixed-point unsigned 128-bit square-root price:
// price = sqrt_price^2 / 2^128.
type SqrtPriceX64 = uint128.Uint128

func u128FromBig(b *big.Int) uint128.Uint128 {
	return uint128.FromBig(b)
}

// Q64Mul multiplies two Q64.64 values and rescales by 2^64, floor-rounded:
// (a*b) >> 64. Used anywhere a Q64.64 ratio needs applying to another
// Q64.64 value outside the swap-step math in swapmath.go (e.g. the hub
// redemption rate).
func Q64Mul(a, b uint128.Uint128) uint128.Uint128 {
	prod := new(big.Int).Mul(a.Big(), b.Big())
	prod.Rsh(prod, 64)
	return u128FromBig(prod)
}
