package pool

import (
	"math/big"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"clammhub/pkg/coreerr"
	"clammhub/pkg/fx"
	"clammhub/pkg/tickstore"
)

// LiquidityResult reports the token amounts an add/remove_liquidity call
// moved.
type LiquidityResult struct {
	Amount0, Amount1 uint64
}

// amountsForLiquidity computes the token_0/token_1 amounts a magnitude of
// liquidity requires (roundUp) or returns (!roundUp) over
// [tickLower, tickUpper), given the pool's current tick and sqrt price
// (§4.2's liquidity-to-amount conversion, the standard CLMM three-case
// split by where tick_cur falls relative to the range).
func amountsForLiquidity(tickLower, tickUpper, tickCur int32, sqrtPriceCur fx.SqrtPriceX64, liquidity uint128.Uint128, roundUp bool) (uint64, uint64, error) {
	sqrtLower, err := fx.SqrtPriceFromTick(tickLower)
	if err != nil {
		return 0, 0, err
	}
	sqrtUpper, err := fx.SqrtPriceFromTick(tickUpper)
	if err != nil {
		return 0, 0, err
	}

	switch {
	case tickCur < tickLower:
		amount0, err := fx.AmountDelta0(sqrtLower, sqrtUpper, liquidity, roundUp)
		return amount0, 0, err
	case tickCur >= tickUpper:
		amount1, err := fx.AmountDelta1(sqrtLower, sqrtUpper, liquidity, roundUp)
		return 0, amount1, err
	default:
		amount0, err := fx.AmountDelta0(sqrtPriceCur, sqrtUpper, liquidity, roundUp)
		if err != nil {
			return 0, 0, err
		}
		amount1, err := fx.AmountDelta1(sqrtLower, sqrtPriceCur, liquidity, roundUp)
		return amount0, amount1, err
	}
}

// addActiveLiquidity folds a signed delta liquidity into liquidity_active,
// failing closed on underflow below zero (§8 invariant: liquidity_active
// never negative).
func addActiveLiquidity(active uint128.Uint128, delta math.Int) (uint128.Uint128, error) {
	sum := new(big.Int).Add(active.Big(), delta.BigInt())
	if sum.Sign() < 0 || sum.BitLen() > 128 {
		return uint128.Uint128{}, coreerr.ErrLiquidityOverflow
	}
	return uint128.FromBig(sum), nil
}

// AddLiquidity implements `add_liquidity` (§6): mints deltaLiquidity into
// [tickLower, tickUpper) for owner, charging whatever token_0/token_1 that
// range requires at the pool's current price, rounded up in the pool's
// favor, and bounded by the caller's slippage maximums.
func (p *Pool) AddLiquidity(owner solana.PublicKey, tickLower, tickUpper int32, deltaLiquidity uint64, amountMax0, amountMax1 uint64) (LiquidityResult, error) {
	if p.Paused {
		return LiquidityResult{}, coreerr.ErrPaused
	}
	if deltaLiquidity == 0 {
		return LiquidityResult{}, coreerr.ErrZeroLiquidity
	}

	delta := math.NewIntFromUint64(deltaLiquidity)
	liquidity := uint128.From64(deltaLiquidity)

	amount0, amount1, err := amountsForLiquidity(tickLower, tickUpper, p.TickCur, p.SqrtPriceCur, liquidity, true)
	if err != nil {
		return LiquidityResult{}, err
	}
	if amount0 > amountMax0 || amount1 > amountMax1 {
		return LiquidityResult{}, coreerr.ErrSlippageExceeded
	}

	if _, err := p.Ticks.UpdatePosition(owner, tickLower, tickUpper, delta, p.TickCur, p.FeeGrowthGlobal0, p.FeeGrowthGlobal1); err != nil {
		return LiquidityResult{}, err
	}

	if p.TickCur >= tickLower && p.TickCur < tickUpper {
		next, err := addActiveLiquidity(p.LiquidityActive, delta)
		if err != nil {
			return LiquidityResult{}, err
		}
		p.LiquidityActive = next
	}

	return LiquidityResult{Amount0: amount0, Amount1: amount1}, nil
}

// RemoveLiquidity implements `remove_liquidity` (§6): burns deltaLiquidity
// from [tickLower, tickUpper), crediting the owner's accrued fees alongside
// the released principal, rounded down against the pool.
func (p *Pool) RemoveLiquidity(owner solana.PublicKey, tickLower, tickUpper int32, deltaLiquidity uint64, amountMin0, amountMin1 uint64) (LiquidityResult, error) {
	if p.Paused {
		return LiquidityResult{}, coreerr.ErrPaused
	}
	if deltaLiquidity == 0 {
		return LiquidityResult{}, coreerr.ErrZeroLiquidity
	}

	key := tickstore.PositionKey{Owner: owner, TickLower: tickLower, TickUpper: tickUpper}
	pos := p.Ticks.GetPosition(key)
	if pos == nil || pos.Liquidity.Cmp(uint128.From64(deltaLiquidity)) < 0 {
		return LiquidityResult{}, coreerr.ErrInsufficientLiquidity
	}

	delta := math.NewIntFromUint64(deltaLiquidity).Neg()
	liquidity := uint128.From64(deltaLiquidity)

	amount0, amount1, err := amountsForLiquidity(tickLower, tickUpper, p.TickCur, p.SqrtPriceCur, liquidity, false)
	if err != nil {
		return LiquidityResult{}, err
	}
	if amount0 < amountMin0 || amount1 < amountMin1 {
		return LiquidityResult{}, coreerr.ErrSlippageExceeded
	}

	if _, err := p.Ticks.UpdatePosition(owner, tickLower, tickUpper, delta, p.TickCur, p.FeeGrowthGlobal0, p.FeeGrowthGlobal1); err != nil {
		return LiquidityResult{}, err
	}

	if p.TickCur >= tickLower && p.TickCur < tickUpper {
		next, err := addActiveLiquidity(p.LiquidityActive, delta)
		if err != nil {
			return LiquidityResult{}, err
		}
		p.LiquidityActive = next
	}

	return LiquidityResult{Amount0: amount0, Amount1: amount1}, nil
}

// Collect implements `collect` (§6): releases a position's accrued,
// uncollected fees without touching its principal liquidity.
func (p *Pool) Collect(owner solana.PublicKey, tickLower, tickUpper int32) (LiquidityResult, error) {
	key := tickstore.PositionKey{Owner: owner, TickLower: tickLower, TickUpper: tickUpper}
	pos := p.Ticks.GetPosition(key)
	if pos == nil {
		return LiquidityResult{}, nil
	}
	owed0, owed1 := tickstore.CollectFees(pos)
	return LiquidityResult{Amount0: owed0, Amount1: owed1}, nil
}
