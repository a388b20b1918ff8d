package fx

import (
	"math/big"

	"clammhub/pkg/coreerr"
	"lukechampine.com/uint128"
)

// mulDivQ64 computes a*b/denom over a 256-bit intermediate product, rounding
// up or down as requested, per §4.1 "all intermediate products use 256-bit
// arithmetic".
func mulDivQ64(a, b, denom *big.Int, roundUp bool) *big.Int {
	prod := new(big.Int).Mul(a, b)
	q, r := new(big.Int).QuoRem(prod, denom, new(big.Int))
	if roundUp && r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

func ceilDiv(a, denom *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(a, denom, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

func u64ToBig(v uint64) *big.Int { return new(big.Int).SetUint64(v) }

func bigToU64(v *big.Int) (uint64, error) {
	if v.Sign() < 0 || v.BitLen() > 64 {
		return 0, coreerr.ErrAmountOverflow
	}
	return v.Uint64(), nil
}

// NextSqrtPriceFromInput computes the new sqrt-price after consuming amountIn
// on the specified side of the pool at active liquidity L (§4.1). Input
// direction rounds the sqrt-price movement down to protect solvency.
func NextSqrtPriceFromInput(sqrtP SqrtPriceX64, liquidity uint128.Uint128, amountIn uint64, zeroForOne bool) (SqrtPriceX64, error) {
	if liquidity.IsZero() || amountIn == 0 {
		return sqrtP, nil
	}
	p := sqrtP.Big()
	l := liquidity.Big()
	amt := u64ToBig(amountIn)

	if zeroForOne {
		// token0 in: sqrtP' = L*sqrtP*2^64 / (L*2^64 + amount*sqrtP), rounded up
		numerator := new(big.Int).Lsh(l, 64)
		product := new(big.Int).Mul(amt, p)
		denom := new(big.Int).Add(numerator, product)
		if denom.Sign() <= 0 {
			return SqrtPriceX64{}, coreerr.ErrInsufficientLiquidity
		}
		next := mulDivQ64(numerator, p, denom, true)
		return u128FromBig(next), nil
	}
	// token1 in: sqrtP' = sqrtP + amount*2^64/L, rounded down
	delta := mulDivQ64(amt, Q64, l, false)
	next := new(big.Int).Add(p, delta)
	return u128FromBig(next), nil
}

// NextSqrtPriceFromOutput computes the new sqrt-price after producing
// amountOut on the specified side at active liquidity L. Output direction
// rounds the sqrt-price movement to protect solvency (opposite of the input
// case).
func NextSqrtPriceFromOutput(sqrtP SqrtPriceX64, liquidity uint128.Uint128, amountOut uint64, zeroForOne bool) (SqrtPriceX64, error) {
	if liquidity.IsZero() {
		return SqrtPriceX64{}, coreerr.ErrZeroLiquidity
	}
	p := sqrtP.Big()
	l := liquidity.Big()
	amt := u64ToBig(amountOut)

	if zeroForOne {
		// token1 out: sqrtP' = sqrtP - amount*2^64/L, delta rounded up (away from sqrtP)
		delta := mulDivQ64(amt, Q64, l, true)
		next := new(big.Int).Sub(p, delta)
		if next.Sign() <= 0 {
			return SqrtPriceX64{}, coreerr.ErrInsufficientLiquidity
		}
		return u128FromBig(next), nil
	}
	// token0 out: sqrtP' = L*sqrtP*2^64 / (L*2^64 - amount*sqrtP), rounded up
	numerator := new(big.Int).Lsh(l, 64)
	product := new(big.Int).Mul(amt, p)
	denom := new(big.Int).Sub(numerator, product)
	if denom.Sign() <= 0 {
		return SqrtPriceX64{}, coreerr.ErrInsufficientLiquidity
	}
	next := mulDivQ64(numerator, p, denom, true)
	return u128FromBig(next), nil
}

// AmountDelta0 returns the token_0 amount required to move sqrt-price across
// [pa, pb] at liquidity L: L*(1/pa - 1/pb) restored to the Q64.64 scale.
func AmountDelta0(pa, pb SqrtPriceX64, liquidity uint128.Uint128, roundUp bool) (uint64, error) {
	if pa.Cmp(pb) > 0 {
		pa, pb = pb, pa
	}
	a, b, l := pa.Big(), pb.Big(), liquidity.Big()
	if a.Sign() == 0 {
		return 0, coreerr.ErrInvariantViolation
	}
	numerator1 := new(big.Int).Lsh(l, 64)
	numerator2 := new(big.Int).Sub(b, a)

	if roundUp {
		step1 := mulDivQ64(numerator1, numerator2, b, true)
		return bigToU64(ceilDiv(step1, a))
	}
	step1 := mulDivQ64(numerator1, numerator2, b, false)
	return bigToU64(new(big.Int).Quo(step1, a))
}

// AmountDelta1 returns the token_1 amount required to move sqrt-price across
// [pa, pb] at liquidity L: L*(pb-pa) restored to the Q64.64 scale.
func AmountDelta1(pa, pb SqrtPriceX64, liquidity uint128.Uint128, roundUp bool) (uint64, error) {
	if pa.Cmp(pb) > 0 {
		pa, pb = pb, pa
	}
	a, b, l := pa.Big(), pb.Big(), liquidity.Big()
	diff := new(big.Int).Sub(b, a)
	prod := new(big.Int).Mul(l, diff)
	q, r := new(big.Int).QuoRem(prod, Q64, new(big.Int))
	if roundUp && r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return bigToU64(q)
}

// maxBinarySearchIterations resolves the Open Question on exact-output
// termination (§9): bracket the target distance to within one integer step,
// or give up after this many halvings, whichever comes first. A 128-bit
// distance always collapses to a single integer well before this ceiling.
const maxBinarySearchIterations = 128

// SolveInputForOutput finds, by binary search over the distance from pa
// (current) toward pb (the already-clamped step target), the smallest price
// movement whose output meets amountOutWanted, for use when the closed-form
// inversion for exact-output is not applied directly mid-step. If the full
// move to pb still falls short, it returns pb with whatever output that move
// actually produces, i.e. the whole segment is consumed and the remaining
// output is left for later segments. Residual dust rounds in the pool's favor: amountIn is
// always computed with roundUp=true.
func SolveInputForOutput(
	pa, pb SqrtPriceX64,
	liquidity uint128.Uint128,
	amountOutWanted uint64,
	zeroForOne bool,
) (sqrtPriceNext SqrtPriceX64, amountIn, amountOut uint64, err error) {
	totalDist := new(big.Int).Sub(pb.Big(), pa.Big())
	if totalDist.Sign() < 0 {
		totalDist.Neg(totalDist)
	}

	candidateAt := func(d *big.Int) SqrtPriceX64 {
		if zeroForOne {
			return u128FromBig(new(big.Int).Sub(pa.Big(), d))
		}
		return u128FromBig(new(big.Int).Add(pa.Big(), d))
	}

	outputAt := func(d *big.Int) (uint64, error) {
		cand := candidateAt(d)
		if zeroForOne {
			return AmountDelta1(cand, pa, liquidity, false)
		}
		return AmountDelta0(pa, cand, liquidity, false)
	}

	maxOut, err := outputAt(totalDist)
	if err != nil {
		return SqrtPriceX64{}, 0, 0, err
	}

	var best *big.Int
	if maxOut < amountOutWanted {
		best = totalDist // full segment still falls short; caller handles as a non-terminal step
	} else {
		lo, hi := big.NewInt(0), new(big.Int).Set(totalDist)
		for i := 0; i < maxBinarySearchIterations; i++ {
			width := new(big.Int).Sub(hi, lo)
			if width.Cmp(big.NewInt(1)) <= 0 {
				break
			}
			mid := new(big.Int).Add(lo, new(big.Int).Rsh(width, 1))
			out, e := outputAt(mid)
			if e != nil {
				return SqrtPriceX64{}, 0, 0, e
			}
			if out >= amountOutWanted {
				hi = mid
			} else {
				lo = mid
			}
		}
		best = hi
	}

	sqrtPriceNext = candidateAt(best)
	if zeroForOne {
		amountOut, err = AmountDelta1(sqrtPriceNext, pa, liquidity, false)
		if err != nil {
			return SqrtPriceX64{}, 0, 0, err
		}
		amountIn, err = AmountDelta0(sqrtPriceNext, pa, liquidity, true)
	} else {
		amountOut, err = AmountDelta0(pa, sqrtPriceNext, liquidity, false)
		if err != nil {
			return SqrtPriceX64{}, 0, 0, err
		}
		amountIn, err = AmountDelta1(pa, sqrtPriceNext, liquidity, true)
	}
	if err != nil {
		return SqrtPriceX64{}, 0, 0, err
	}
	return sqrtPriceNext, amountIn, amountOut, nil
}
