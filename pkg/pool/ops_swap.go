package pool

import (
	"errors"
	"math/big"

	"lukechampine.com/uint128"

	"github.com/sirupsen/logrus"

	"clammhub/pkg/coreerr"
	"clammhub/pkg/fee"
	"clammhub/pkg/flow"
	"clammhub/pkg/fx"
	"clammhub/pkg/hub"
	"clammhub/pkg/oracle"
	"clammhub/pkg/safety"

	"github.com/gagliardetto/solana-go"
)

const maxSwapSteps = 512

// SwapParams are the caller-supplied terms of one swap (§6 `swap`).
type SwapParams struct {
	Trader           solana.PublicKey
	AmountSpecified  uint64
	ZeroForOne       bool
	ExactIn          bool
	SqrtPriceLimit   fx.SqrtPriceX64
	MaxFeeBps        uint32
	GTWAPWindowSlots uint64
	Slot             uint64
}

// SwapResult is what the caller is owed/owes after the full post-swap
// pipeline (§4.8) has run.
type SwapResult struct {
	AmountIn, AmountOut uint64
	FeePaid             uint64
	FeeBps              uint32
	StartTick, EndTick  int32
	Split               fee.Split
	DegradeLevel        safety.DegradeLevel
}

// Swap implements `swap` (§6): the step-wise price walk across initialized
// ticks (§4.3), bracketed by the contrarian JIT micro-band (§4.6), with the
// dynamic fee and its split (§4.7) computed once from the swap's pre-fee
// principal, followed by the rest of the post-swap pipeline (§4.8): GTWAP
// update, flow-toxicity observation, floor ratchet, safety observation.
func (p *Pool) Swap(
	params SwapParams,
	safetyCtl *safety.Controller,
	hubOracle *hub.Oracle,
	flowTracker *flow.Tracker,
) (SwapResult, error) {
	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.Debugf("swap entry: pool=%s zeroForOne=%t exactIn=%t amountSpecified=%d tickCur=%d",
			p.ID, params.ZeroForOne, params.ExactIn, params.AmountSpecified, p.TickCur)
	}

	if p.Paused {
		return SwapResult{}, coreerr.ErrPaused
	}
	if err := safetyCtl.CanExecute(safety.OpSwap, params.Slot); err != nil {
		return SwapResult{}, err
	}
	if params.AmountSpecified == 0 {
		return SwapResult{}, coreerr.ErrAmountTooSmall
	}
	if params.ZeroForOne {
		if params.SqrtPriceLimit.Cmp(p.SqrtPriceCur) >= 0 {
			return SwapResult{}, coreerr.ErrInvalidLimit
		}
	} else {
		if params.SqrtPriceLimit.Cmp(p.SqrtPriceCur) <= 0 {
			return SwapResult{}, coreerr.ErrInvalidLimit
		}
	}

	startTick := p.TickCur
	degradeLevel, _, rebatesDisabled, _ := safetyCtl.Snapshot()

	gtwapTick, gtwapHealth := p.Oracle.GetTick(params.Slot, params.GTWAPWindowSlots)
	gtwapHealthy := gtwapHealth == oracle.Healthy

	preSwapLiquidity := p.LiquidityActive
	band, jitPlaced, jitDir := p.tryPlaceJIT(params, gtwapTick, gtwapHealthy, hubOracle, flowTracker)

	amountIn, amountOut, endSqrt, endTick, endLiquidity, err := p.runSwapSteps(params)
	if err != nil {
		logSwapInvariantError(p.ID.String(), err)
		return SwapResult{}, err
	}
	p.SqrtPriceCur = endSqrt
	p.TickCur = endTick
	p.LiquidityActive = endLiquidity

	if jitPlaced {
		p.commitJIT(band, jitDir, params.Slot, startTick, endTick)
	}

	if err := p.Oracle.Update(endTick, params.Slot); err != nil {
		logSwapInvariantError(p.ID.String(), err)
		return SwapResult{}, err
	}

	feeBps, err := fee.Compute(p.FeeConfig, fee.Inputs{
		StartTick:       startTick,
		EndTick:         endTick,
		GTWAPTick:       gtwapTick,
		GTWAPHealthy:    gtwapHealthy,
		BaseFeeBps:      p.BaseFeeBps,
		DegradeLevel:    int(degradeLevel),
		MaxFeeBps:       params.MaxFeeBps,
		RebatesDisabled: rebatesDisabled,
	})
	if err != nil {
		logSwapInvariantError(p.ID.String(), err)
		return SwapResult{}, err
	}

	// principal is the fee-free amount_in in both modes; the fee is a
	// top-up on amount_in regardless of exact-in/exact-out, since amount_out
	// must hold exactly to the trader's terms on the exact-out side.
	principal := amountIn
	totalFeePaid := mulDivBpsUp(principal, feeBps)
	amountIn += totalFeePaid

	hasCreator := p.Creator != (solana.PublicKey{})
	split := fee.Resolve(totalFeePaid, p.SplitConfig, hasCreator)
	p.creditSplit(split, params.ZeroForOne, preSwapLiquidity)

	tickMove := endTick - startTick
	toxic := isToxicFlow(tickMove, amountIn, preSwapLiquidity)
	flowTracker.Observe(toxic, tickMove)

	p.Floor.UpdateAfterSwap(params.Slot, endTick, p.reserveFloorFunc(), p.dampedTickFunc())

	safetyCtl.Observe(safety.Observation{
		OracleFresh: gtwapHealthy,
		HubHealthy:  hubOracle.Status() == hub.Healthy,
		Volatile:    !p.Oracle.CheckManipulation(p.JITConfig.MaxTWAPSlopeTicksPS),
		FeeBps:      feeBps,
	})

	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.Debugf("swap exit: pool=%s amountIn=%d amountOut=%d feePaid=%d feeBps=%d tick=%d->%d",
			p.ID, amountIn, amountOut, totalFeePaid, feeBps, startTick, endTick)
	}

	return SwapResult{
		AmountIn:     amountIn,
		AmountOut:    amountOut,
		FeePaid:      totalFeePaid,
		FeeBps:       feeBps,
		StartTick:    startTick,
		EndTick:      endTick,
		Split:        split,
		DegradeLevel: degradeLevel,
	}, nil
}

// logSwapInvariantError logs at Error level when a swap fails on an
// invariant violation (§7 Invariant class) rather than an ordinary
// input/economic rejection — those are the failures an operator needs to
// page on, not just return to the caller.
func logSwapInvariantError(poolID string, err error) {
	if errors.Is(err, coreerr.ErrInvariantViolation) {
		logrus.Errorf("swap invariant violation: pool=%s err=%v", poolID, err)
	}
}

// creditSplit folds the LP share of the fee into fee_growth_global (on the
// input token's side) at the liquidity present when the swap began, and
// books the remaining shares into the pool's accounted buffers/ledgers —
// this engine holds no live Treasury/Creator token accounts, so those
// shares accumulate as owed balances (§4.7).
func (p *Pool) creditSplit(split fee.Split, zeroForOne bool, liquidityAtStart uint128.Uint128) {
	if !liquidityAtStart.IsZero() && split.LP > 0 {
		delta := feeGrowthDelta(split.LP, liquidityAtStart)
		if zeroForOne {
			p.FeeGrowthGlobal0 = addMod128(p.FeeGrowthGlobal0, delta)
		} else {
			p.FeeGrowthGlobal1 = addMod128(p.FeeGrowthGlobal1, delta)
		}
	}

	if zeroForOne {
		p.Buffer.Fees0 += split.Buffer
		p.Buffer.Tau0 += split.Buffer
		p.Buffer.TreasuryOwed0 += split.Treasury
		p.Buffer.CreatorOwed0 += split.Creator
	} else {
		p.Buffer.Fees1 += split.Buffer
		p.Buffer.Tau1 += split.Buffer
		p.Buffer.TreasuryOwed1 += split.Treasury
		p.Buffer.CreatorOwed1 += split.Creator
	}
	// PoolReserve share is left uncredited to any per-token ledger here —
	// it is the protocol-solvency catch-all and is swept by governance
	// tooling outside the swap hot path.
}

// feeGrowthDelta computes feeAmount*2^128/liquidity, the standard
// fee-growth-accumulator increment (mirrors pkg/tickstore's accruedFees
// inverse).
func feeGrowthDelta(feeAmount uint64, liquidity uint128.Uint128) uint128.Uint128 {
	num := new(big.Int).Lsh(new(big.Int).SetUint64(feeAmount), 128)
	q := new(big.Int).Quo(num, liquidity.Big())
	return uint128.FromBig(q)
}

// addMod128 adds two Q128 fee-growth accumulators, wrapping mod 2^128 per
// the standard accumulator model (pkg/tickstore.subMod128's counterpart).
func addMod128(a, b uint128.Uint128) uint128.Uint128 {
	sum := new(big.Int).Add(a.Big(), b.Big())
	sum.Mod(sum, fx.Q128)
	return uint128.FromBig(sum)
}

func mulDivBpsUp(amount uint64, bps uint32) uint64 {
	num := amount * uint64(bps)
	q := num / 10_000
	if num%10_000 != 0 {
		q++
	}
	return q
}

// isToxicFlow is the flow.Tracker's toxic/calm classifier: a swap that
// moves the price more than one "tox tick" threshold is treated as
// adversarial order flow, contracting flow.Tracker's alpha (§4.6, §8).
func isToxicFlow(tickMove int32, amountIn uint64, liquidity uint128.Uint128) bool {
	if tickMove < 0 {
		tickMove = -tickMove
	}
	return tickMove > 20
}
