package pool

import (
	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"

	"clammhub/pkg/flow"
	"clammhub/pkg/hub"
	"clammhub/pkg/jit"
)

// jitCooldownSlots/jitAskCooldownSlots are the cooldown windows Commit sets
// after a fill; like jit.DefaultConfig's other constants, these are
// governance placeholders, not protocol values.
const (
	jitCooldownSlots    = 2
	jitAskCooldownSlots = 4
	jitSpreadTicks      = 4
	jitRangeTicks       = 20
)

// jitVaultKey is the synthetic position owner the JIT engine places its
// ephemeral band under; it is never a real trader's key, so it never
// collides with an actual liquidity position.
func (p *Pool) jitVaultKey() solana.PublicKey { return p.ID }

// alignToSpacing rounds [lower, upper) out to tick_spacing multiples within
// the pool's global bounds, since the sizing formula's tick arithmetic
// (§4.6) is not itself spacing-aware.
func alignToSpacing(lower, upper, spacing, tickMin, tickMax int32) (int32, int32) {
	lo := floorToSpacing(lower, spacing)
	hi := ceilToSpacing(upper, spacing)
	if hi <= lo {
		hi = lo + spacing
	}
	if lo < tickMin {
		lo = tickMin
	}
	if hi > tickMax {
		hi = tickMax
	}
	if hi <= lo {
		lo = hi - spacing
	}
	return lo, hi
}

func floorToSpacing(t, spacing int32) int32 {
	q := t / spacing
	if t%spacing != 0 && t < 0 {
		q--
	}
	return q * spacing
}

func ceilToSpacing(t, spacing int32) int32 {
	q := t / spacing
	if t%spacing != 0 && t > 0 {
		q++
	}
	return q * spacing
}

// tryPlaceJIT runs the JIT entry guards and, on success, inserts its
// ephemeral band as a real tick-store position so the swap's own step loop
// fills it like any other liquidity (§4.6: "placed and removed atomically
// within a single swap").
func (p *Pool) tryPlaceJIT(
	params SwapParams,
	gtwapTick int32,
	gtwapHealthy bool,
	hubOracle *hub.Oracle,
	flowTracker *flow.Tracker,
) (jit.Band, bool, jit.Direction) {
	dir := jit.DirectionBid
	if !params.ZeroForOne {
		dir = jit.DirectionAsk
	}

	slope := p.Oracle.CheckManipulation(p.JITConfig.MaxTWAPSlopeTicksPS)
	healthBps := p.Buffer.HealthBps(p.TargetTau0, p.TargetTau1)

	dev := p.TickCur - gtwapTick
	if dev < 0 {
		dev = -dev
	}
	p.JIT.RecordDevSample(params.Slot, dev <= p.JITConfig.MaxDevTicks)

	guard := jit.GuardInputs{
		SafetyAllowsJIT: true,
		HubHealthy:      hubOracle.Status() == hub.Healthy,
		GTWAPHealthy:    gtwapHealthy,
		GTWAPSlopeOK:    slope,
		Slot:            params.Slot,
		TickCur:         p.TickCur,
		GTWAPTick:       gtwapTick,
		AmountIn:        params.AmountSpecified,
		PlacingAsk:      dir == jit.DirectionAsk,
		BufferHealthBps: healthBps,
	}

	tau := p.Buffer.Tau0 + p.Buffer.Tau1
	sizing := jit.SizingInputs{
		GTWAPTick:        gtwapTick,
		FloorSafeAskTick: p.Floor.SafeAskTick(),
		TickCur:          p.TickCur,
		Tau:              tau,
		FlowAlphaQ16:     flowTracker.Snapshot().AlphaQ16,
	}

	band, ok := p.JIT.Attempt(guard, sizing, dir, jitSpreadTicks, jitRangeTicks)
	if !ok {
		return jit.Band{}, false, dir
	}

	lower, upper := alignToSpacing(band.Lower, band.Upper, p.TickSpacing, p.TickMinGlobal, p.TickMaxGlobal)
	band.Lower, band.Upper = lower, upper

	delta := math.NewIntFromUint64(band.Size)
	if _, err := p.Ticks.UpdatePosition(p.jitVaultKey(), lower, upper, delta, p.TickCur, p.FeeGrowthGlobal0, p.FeeGrowthGlobal1); err != nil {
		return jit.Band{}, false, dir
	}
	if p.TickCur >= lower && p.TickCur < upper {
		next, err := addActiveLiquidity(p.LiquidityActive, delta)
		if err != nil {
			// undo the position insert; the band can't be safely placed
			p.Ticks.UpdatePosition(p.jitVaultKey(), lower, upper, delta.Neg(), p.TickCur, p.FeeGrowthGlobal0, p.FeeGrowthGlobal1)
			return jit.Band{}, false, dir
		}
		p.LiquidityActive = next
	}

	return band, true, dir
}

// commitJIT removes the ephemeral band placed by tryPlaceJIT, infers
// whether it was actually crossed by the swap that just ran, and folds the
// outcome into the JIT engine's cooldowns/toxicity EMA (§4.6).
func (p *Pool) commitJIT(band jit.Band, dir jit.Direction, slot uint64, startTick, endTick int32) {
	delta := math.NewIntFromUint64(band.Size).Neg()
	wasActive := startTick >= band.Lower && startTick < band.Upper

	if _, err := p.Ticks.UpdatePosition(p.jitVaultKey(), band.Lower, band.Upper, delta, endTick, p.FeeGrowthGlobal0, p.FeeGrowthGlobal1); err == nil && wasActive {
		if next, err := addActiveLiquidity(p.LiquidityActive, delta); err == nil {
			p.LiquidityActive = next
		}
	}

	filled := crossedRange(startTick, endTick, band.Lower, band.Upper)
	out := jit.FillOutcome{
		BidFilled:  dir == jit.DirectionBid && filled,
		AskFilled:  dir == jit.DirectionAsk && filled,
		TickBefore: startTick,
		TickAfter:  endTick,
	}
	p.JIT.Commit(slot, band.Size, dir, jitCooldownSlots, jitAskCooldownSlots, out)
}

// crossedRange reports whether the swap's price path touched [lower, upper).
func crossedRange(startTick, endTick, lower, upper int32) bool {
	if startTick > endTick {
		startTick, endTick = endTick, startTick
	}
	return startTick < upper && endTick >= lower
}
