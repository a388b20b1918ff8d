package fx

import (
	"math/big"

	"clammhub/pkg/coreerr"
)

// SqrtPriceFromTick computes 1.0001^(t/2) in Q64.64 via a hardcoded product
// of precomputed factors for each set bit of |t|, inverting when t < 0.
// Deterministic and exact bit-for-bit (§4.1).
func SqrtPriceFromTick(t int32) (SqrtPriceX64, error) {
	if t < MinTick || t > MaxTick {
		return SqrtPriceX64{}, coreerr.ErrTickIndexOverflow
	}

	absTick := t
	if absTick < 0 {
		absTick = -absTick
	}

	ratio := new(big.Int).Set(Q64)
	for b := 0; b < len(tickFactorsQ64); b++ {
		if absTick&(1<<uint(b)) != 0 {
			ratio.Mul(ratio, tickFactorsQ64[b])
			ratio.Rsh(ratio, 64)
		}
	}

	if t < 0 {
		if ratio.Sign() == 0 {
			return SqrtPriceX64{}, coreerr.ErrTickIndexOverflow
		}
		ratio = new(big.Int).Div(Q128, ratio)
	}

	return u128FromBig(ratio), nil
}

// TickFromSqrtPrice returns the greatest tick t with
// sqrt_price_from_tick(t) <= p, via binary search over the addressable grid
// (§4.1 inverse of SqrtPriceFromTick).
func TickFromSqrtPrice(p SqrtPriceX64) (int32, error) {
	lo, hi := MinTick, MaxTick
	loPrice, err := SqrtPriceFromTick(lo)
	if err != nil {
		return 0, err
	}
	if p.Cmp(loPrice) < 0 {
		return 0, coreerr.ErrTickIndexOverflow
	}

	for lo < hi {
		// bias the midpoint high so lo converges to the greatest satisfying tick
		mid := lo + (hi-lo+1)/2
		midPrice, err := SqrtPriceFromTick(mid)
		if err != nil {
			return 0, err
		}
		if midPrice.Cmp(p) <= 0 {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, nil
}
