package fee

// Config holds the governance-tunable fee-curve and split parameters. Per
// the curve-coefficient Open Question decision (§4.7/§9), these are an MVP
// placeholder pinned here, not derived from any production feed.
type Config struct {
	MinTotalFeeBps uint32
	MaxTotalFeeBps uint32
	MinFloorBps    uint32 // raised floor used when GTWAP is stale

	// Piecewise-linear curve over |tick displacement| buckets: bps added on
	// top of base_fee_bps at each breakpoint, linearly interpolated between.
	DisplacementBreaks []int32
	DisplacementBps     []uint32

	// Multiplies the curve's added bps by degrade level (index 0 = calm).
	VolatilityMultiplierBps []uint32

	RebateMaxBps uint32 // largest rebate subtracted for a move toward GTWAP
}

func DefaultConfig() Config {
	return Config{
		MinTotalFeeBps:          5,
		MaxTotalFeeBps:          500,
		MinFloorBps:             20,
		DisplacementBreaks:      []int32{0, 60, 600, 3000},
		DisplacementBps:         []uint32{0, 10, 40, 150},
		VolatilityMultiplierBps: []uint32{10_000, 12_500, 16_000, 20_000},
		RebateMaxBps:            15,
	}
}

// curveBps linearly interpolates the displacement curve at |displacement|.
func curveBps(cfg Config, displacement int32) uint32 {
	if displacement < 0 {
		displacement = -displacement
	}
	breaks := cfg.DisplacementBreaks
	vals := cfg.DisplacementBps
	if len(breaks) == 0 {
		return 0
	}
	if displacement <= breaks[0] {
		return vals[0]
	}
	last := len(breaks) - 1
	if displacement >= breaks[last] {
		return vals[last]
	}
	for i := 0; i < last; i++ {
		lo, hi := breaks[i], breaks[i+1]
		if displacement >= lo && displacement <= hi {
			span := hi - lo
			if span == 0 {
				return vals[i]
			}
			frac := uint64(displacement-lo) * 10_000 / uint64(span)
			delta := int64(vals[i+1]) - int64(vals[i])
			return uint32(int64(vals[i]) + delta*int64(frac)/10_000)
		}
	}
	return vals[last]
}

// volatilityMultiplierBps returns the scale factor (in bps of 1.0, so 10_000
// = 1x) applied to the curve's added bps for the given degrade level. Levels
// beyond the configured table clamp to the steepest entry.
func volatilityMultiplierBps(cfg Config, degradeLevel int) uint32 {
	if len(cfg.VolatilityMultiplierBps) == 0 {
		return 10_000
	}
	if degradeLevel < 0 {
		degradeLevel = 0
	}
	if degradeLevel >= len(cfg.VolatilityMultiplierBps) {
		degradeLevel = len(cfg.VolatilityMultiplierBps) - 1
	}
	return cfg.VolatilityMultiplierBps[degradeLevel]
}
