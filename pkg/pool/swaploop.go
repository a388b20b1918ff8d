package pool

import (
	"lukechampine.com/uint128"

	"github.com/sirupsen/logrus"

	"clammhub/pkg/coreerr"
	"clammhub/pkg/fx"
	"clammhub/pkg/tickstore"
)

// stepInOut returns the token amounts required to move from curSqrt to
// target at liquidity L, input side rounded up (protects the pool) and
// output side rounded down, mirroring Uniswap v3's computeSwapStep.
func stepInOut(curSqrt, target fx.SqrtPriceX64, liquidity uint128.Uint128, zeroForOne bool) (amountIn, amountOut uint64, err error) {
	if zeroForOne {
		amountIn, err = fx.AmountDelta0(target, curSqrt, liquidity, true)
		if err != nil {
			return 0, 0, err
		}
		amountOut, err = fx.AmountDelta1(target, curSqrt, liquidity, false)
		return amountIn, amountOut, err
	}
	amountIn, err = fx.AmountDelta1(curSqrt, target, liquidity, true)
	if err != nil {
		return 0, 0, err
	}
	amountOut, err = fx.AmountDelta0(curSqrt, target, liquidity, false)
	return amountIn, amountOut, err
}

// crossIfInitialized folds an initialized tick's liquidity_net into
// liquidity_active and flips its fee_growth_outside fields. movingLowToHigh
// is true for the one_to_zero (price-increasing) direction.
func crossIfInitialized(store *tickstore.Store, tickIndex int32, liquidity uint128.Uint128, movingLowToHigh bool, feeGrowthGlobal0, feeGrowthGlobal1 uint128.Uint128) (uint128.Uint128, error) {
	t := store.GetTick(tickIndex)
	if t == nil {
		return liquidity, nil
	}
	return tickstore.CrossTick(t, liquidity, movingLowToHigh, feeGrowthGlobal0, feeGrowthGlobal1)
}

// runSwapSteps walks the price across initialized ticks (§4.3), computing
// the fee-free swap principal: amountIn/amountOut here are the amounts
// required purely to move the price, with no fee markup — the dynamic fee
// (§4.7) is applied once, by the caller, as a top-up on top of this
// principal. Terminates early (without error) on hitting the caller's
// sqrt-price limit or the pool's global tick bounds; only errors when not
// even partial progress was possible.
func (p *Pool) runSwapSteps(params SwapParams) (amountIn, amountOut uint64, endSqrt fx.SqrtPriceX64, endTick int32, endLiquidity uint128.Uint128, err error) {
	remaining := params.AmountSpecified
	curSqrt := p.SqrtPriceCur
	curTick := p.TickCur
	curLiquidity := p.LiquidityActive
	movingLowToHigh := !params.ZeroForOne

	for i := 0; remaining > 0 && i < maxSwapSteps; i++ {
		if logrus.GetLevel() >= logrus.TraceLevel {
			logrus.Tracef("swap step %d: tick=%d sqrtPrice=%s liquidity=%s remaining=%d",
				i, curTick, curSqrt.String(), curLiquidity.String(), remaining)
		}

		tickNext, found := p.Ticks.NextInitializedTick(curTick, params.ZeroForOne)
		atBound := !found
		if !found {
			if params.ZeroForOne {
				tickNext = p.TickMinGlobal
			} else {
				tickNext = p.TickMaxGlobal
			}
		}
		sqrtNext, e := fx.SqrtPriceFromTick(tickNext)
		if e != nil {
			return 0, 0, fx.SqrtPriceX64{}, 0, uint128.Uint128{}, e
		}

		target := sqrtNext
		limited := false
		if params.ZeroForOne {
			if params.SqrtPriceLimit.Cmp(target) > 0 {
				target = params.SqrtPriceLimit
				limited = true
			}
		} else {
			if params.SqrtPriceLimit.Cmp(target) < 0 {
				target = params.SqrtPriceLimit
				limited = true
			}
		}

		if curLiquidity.IsZero() {
			curSqrt = target
			if limited {
				nt, e := fx.TickFromSqrtPrice(curSqrt)
				if e != nil {
					return 0, 0, fx.SqrtPriceX64{}, 0, uint128.Uint128{}, e
				}
				curTick = nt
				break
			}
			curLiquidity, e = crossIfInitialized(p.Ticks, tickNext, curLiquidity, movingLowToHigh, p.FeeGrowthGlobal0, p.FeeGrowthGlobal1)
			if e != nil {
				return 0, 0, fx.SqrtPriceX64{}, 0, uint128.Uint128{}, e
			}
			if params.ZeroForOne {
				curTick = tickNext - 1
			} else {
				curTick = tickNext
			}
			if atBound {
				break
			}
			continue
		}

		amountInStep, amountOutStep, e := stepInOut(curSqrt, target, curLiquidity, params.ZeroForOne)
		if e != nil {
			return 0, 0, fx.SqrtPriceX64{}, 0, uint128.Uint128{}, e
		}

		var reached bool
		if params.ExactIn {
			reached = amountInStep <= remaining
		} else {
			reached = amountOutStep <= remaining
		}

		if reached {
			if params.ExactIn {
				remaining -= amountInStep
			} else {
				remaining -= amountOutStep
			}
			amountIn += amountInStep
			amountOut += amountOutStep
			curSqrt = target

			if limited {
				remaining = 0
			} else {
				curLiquidity, e = crossIfInitialized(p.Ticks, tickNext, curLiquidity, movingLowToHigh, p.FeeGrowthGlobal0, p.FeeGrowthGlobal1)
				if e != nil {
					return 0, 0, fx.SqrtPriceX64{}, 0, uint128.Uint128{}, e
				}
				if params.ZeroForOne {
					curTick = tickNext - 1
				} else {
					curTick = tickNext
				}
			}
		} else {
			if params.ExactIn {
				terminal, e := fx.NextSqrtPriceFromInput(curSqrt, curLiquidity, remaining, params.ZeroForOne)
				if e != nil {
					return 0, 0, fx.SqrtPriceX64{}, 0, uint128.Uint128{}, e
				}
				var finalOut uint64
				if params.ZeroForOne {
					finalOut, e = fx.AmountDelta1(terminal, curSqrt, curLiquidity, false)
				} else {
					finalOut, e = fx.AmountDelta0(curSqrt, terminal, curLiquidity, false)
				}
				if e != nil {
					return 0, 0, fx.SqrtPriceX64{}, 0, uint128.Uint128{}, e
				}
				amountIn += remaining
				amountOut += finalOut
				curSqrt = terminal
			} else {
				terminal, actualIn, actualOut, e := fx.SolveInputForOutput(curSqrt, target, curLiquidity, remaining, params.ZeroForOne)
				if e != nil {
					return 0, 0, fx.SqrtPriceX64{}, 0, uint128.Uint128{}, e
				}
				amountIn += actualIn
				amountOut += actualOut
				curSqrt = terminal
			}
			remaining = 0
			nt, e := fx.TickFromSqrtPrice(curSqrt)
			if e != nil {
				return 0, 0, fx.SqrtPriceX64{}, 0, uint128.Uint128{}, e
			}
			curTick = nt
		}

		if atBound {
			break
		}
	}

	if amountIn == 0 && amountOut == 0 {
		return 0, 0, fx.SqrtPriceX64{}, 0, uint128.Uint128{}, coreerr.ErrInsufficientLiquidity
	}

	return amountIn, amountOut, curSqrt, curTick, curLiquidity, nil
}
