package fx

import (
	"math/big"
	"testing"

	"clammhub/pkg/coreerr"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestSqrtPriceFromTickZero(t *testing.T) {
	p, err := SqrtPriceFromTick(0)
	require.NoError(t, err)
	require.True(t, p.Equals(u128FromBig(Q64)), "sqrt_price_from_tick(0) must equal 1.0 in Q64.64")
}

func TestSqrtPriceFromTickOutOfRange(t *testing.T) {
	_, err := SqrtPriceFromTick(MaxTick + 1)
	require.ErrorIs(t, err, coreerr.ErrTickIndexOverflow)

	_, err = SqrtPriceFromTick(MinTick - 1)
	require.ErrorIs(t, err, coreerr.ErrTickIndexOverflow)
}

func TestSqrtPriceFromTickMonotonic(t *testing.T) {
	ticks := []int32{-887272, -100000, -1, 0, 1, 100000, 887272}
	var prev SqrtPriceX64
	for i, tk := range ticks {
		p, err := SqrtPriceFromTick(tk)
		require.NoError(t, err)
		if i > 0 {
			require.Equal(t, 1, p.Cmp(prev), "price at tick %d must exceed price at %d", tk, ticks[i-1])
		}
		prev = p
	}
}

func TestSqrtPriceFromTickNegatesToInverse(t *testing.T) {
	pos, err := SqrtPriceFromTick(1000)
	require.NoError(t, err)
	neg, err := SqrtPriceFromTick(-1000)
	require.NoError(t, err)

	// pos * neg should land close to 2^128 (within rounding of the per-bit products)
	prod := new(big.Int).Mul(pos.Big(), neg.Big())
	diff := new(big.Int).Sub(prod, Q128)
	diff.Abs(diff)
	// allow rounding slack proportional to the number of per-bit multiplications
	tolerance := new(big.Int).Lsh(big.NewInt(1), 90)
	require.True(t, diff.Cmp(tolerance) < 0, "pos*neg should approximate 2^128")
}

func TestTickFromSqrtPriceRoundTrip(t *testing.T) {
	for _, tk := range []int32{-887272, -50000, -1, 0, 1, 50000, 887271, 887272} {
		p, err := SqrtPriceFromTick(tk)
		require.NoError(t, err)
		got, err := TickFromSqrtPrice(p)
		require.NoError(t, err)
		require.Equal(t, tk, got)
	}
}

func TestNextSqrtPriceFromInputToken0(t *testing.T) {
	p, _ := SqrtPriceFromTick(0)
	l := uint128.From64(1_000_000_000)
	next, err := NextSqrtPriceFromInput(p, l, 1_000_000, true)
	require.NoError(t, err)
	require.Equal(t, -1, next.Cmp(p), "token0 in must decrease price")
}

func TestNextSqrtPriceFromInputToken1(t *testing.T) {
	p, _ := SqrtPriceFromTick(0)
	l := uint128.From64(1_000_000_000)
	next, err := NextSqrtPriceFromInput(p, l, 1_000_000, false)
	require.NoError(t, err)
	require.Equal(t, 1, next.Cmp(p), "token1 in must increase price")
}

func TestNextSqrtPriceZeroLiquidityIsNoOp(t *testing.T) {
	p, _ := SqrtPriceFromTick(500)
	next, err := NextSqrtPriceFromInput(p, uint128.Zero, 100, true)
	require.NoError(t, err)
	require.Equal(t, p, next)
}

func TestAmountDeltaRoundingDirection(t *testing.T) {
	pa, _ := SqrtPriceFromTick(-1000)
	pb, _ := SqrtPriceFromTick(1000)
	l := uint128.From64(5_000_000_000)

	down0, err := AmountDelta0(pa, pb, l, false)
	require.NoError(t, err)
	up0, err := AmountDelta0(pa, pb, l, true)
	require.NoError(t, err)
	require.GreaterOrEqual(t, up0, down0)

	down1, err := AmountDelta1(pa, pb, l, false)
	require.NoError(t, err)
	up1, err := AmountDelta1(pa, pb, l, true)
	require.NoError(t, err)
	require.GreaterOrEqual(t, up1, down1)
}

func TestAmountDeltaOrderIndependent(t *testing.T) {
	pa, _ := SqrtPriceFromTick(200)
	pb, _ := SqrtPriceFromTick(-200)
	l := uint128.From64(42_000_000)

	fwd, err := AmountDelta0(pa, pb, l, true)
	require.NoError(t, err)
	rev, err := AmountDelta0(pb, pa, l, true)
	require.NoError(t, err)
	require.Equal(t, fwd, rev)
}

func TestSolveInputForOutputZeroForOne(t *testing.T) {
	pa, _ := SqrtPriceFromTick(1000)
	pb, _ := SqrtPriceFromTick(-1000)
	l := uint128.From64(10_000_000_000)

	maxOut, err := AmountDelta1(pb, pa, l, false)
	require.NoError(t, err)
	wanted := maxOut / 4

	next, amountIn, amountOut, err := SolveInputForOutput(pa, pb, l, wanted, true)
	require.NoError(t, err)
	require.GreaterOrEqual(t, amountOut, wanted)
	require.Equal(t, -1, next.Cmp(pa))
	require.Equal(t, 1, next.Cmp(pb))
	require.Greater(t, amountIn, uint64(0))
}

func TestSolveInputForOutputOneForZero(t *testing.T) {
	pa, _ := SqrtPriceFromTick(-1000)
	pb, _ := SqrtPriceFromTick(1000)
	l := uint128.From64(10_000_000_000)

	maxOut, err := AmountDelta0(pa, pb, l, false)
	require.NoError(t, err)
	wanted := maxOut / 4

	next, amountIn, amountOut, err := SolveInputForOutput(pa, pb, l, wanted, false)
	require.NoError(t, err)
	require.GreaterOrEqual(t, amountOut, wanted)
	require.Equal(t, 1, next.Cmp(pa))
	require.Equal(t, -1, next.Cmp(pb))
	require.Greater(t, amountIn, uint64(0))
}

func TestSolveInputForOutputExceedsAvailable(t *testing.T) {
	pa, _ := SqrtPriceFromTick(10)
	pb, _ := SqrtPriceFromTick(-10)
	l := uint128.From64(1_000)

	maxOut, err := AmountDelta1(pb, pa, l, false)
	require.NoError(t, err)

	next, _, amountOut, err := SolveInputForOutput(pa, pb, l, maxOut*10, true)
	require.NoError(t, err)
	require.Equal(t, pb, next)
	require.Equal(t, maxOut, amountOut)
}
