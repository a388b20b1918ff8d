// Package fee computes the post-swap dynamic fee and its split across
// recipients (§4.7).
package fee

import "clammhub/pkg/coreerr"

// Inputs carries everything Compute reads from the swap and pool state.
type Inputs struct {
	StartTick    int32
	EndTick      int32
	GTWAPTick    int32
	GTWAPHealthy bool
	BaseFeeBps      uint32
	DegradeLevel    int
	MaxFeeBps       uint32 // caller-supplied cap; exceeding it fails the swap
	RebatesDisabled bool
}

// Compute returns the total fee in bps, clamped to [floor, MaxTotalFeeBps]
// and checked against the caller's MaxFeeBps cap. A stale GTWAP disables the
// toward-GTWAP rebate and raises the floor to MinFloorBps (§4.8 degrade
// rule: "GTWAP stale: disable rebates, raise floor impact fee").
func Compute(cfg Config, in Inputs) (uint32, error) {
	displacement := in.EndTick - in.StartTick

	floor := cfg.MinTotalFeeBps
	rebateEnabled := in.GTWAPHealthy && !in.RebatesDisabled
	if !in.GTWAPHealthy && cfg.MinFloorBps > floor {
		floor = cfg.MinFloorBps
	}

	curve := curveBps(cfg, displacement)
	mult := volatilityMultiplierBps(cfg, in.DegradeLevel)
	added := uint32(uint64(curve) * uint64(mult) / 10_000)

	raw := int64(in.BaseFeeBps) + int64(added)

	if rebateEnabled && movesTowardGTWAP(in.StartTick, in.EndTick, in.GTWAPTick) {
		raw -= int64(cfg.RebateMaxBps)
	}

	if raw < int64(floor) {
		raw = int64(floor)
	}
	if raw > int64(cfg.MaxTotalFeeBps) {
		raw = int64(cfg.MaxTotalFeeBps)
	}
	feeBps := uint32(raw)

	if feeBps > in.MaxFeeBps {
		return 0, coreerr.ErrFeeCapExceeded
	}
	return feeBps, nil
}

// movesTowardGTWAP reports whether end_tick is strictly closer to the GTWAP
// anchor than start_tick was.
func movesTowardGTWAP(startTick, endTick, gtwapTick int32) bool {
	distBefore := abs32(startTick - gtwapTick)
	distAfter := abs32(endTick - gtwapTick)
	return distAfter < distBefore
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
