package jit

// SizingInputs carries the per-swap context the sizing formula (§4.6) reads
// from the pool, floor, oracle, and flow-signal packages.
type SizingInputs struct {
	GTWAPTick        int32
	FloorSafeAskTick int32
	TickCur          int32
	Tau              uint64 // buffer.tau_0 + buffer.tau_1, in raw units
	FlowAlphaQ16     uint16
}

// Sizing is the resolved band size and reference tick for one JIT placement.
type Sizing struct {
	AnchorTick int32
	Rc         int32
	BaseSize   uint64
	Alpha      uint16
	Size       uint64
}

// Resolve computes anchor_tick, R_c, base_size, α and size exactly per the
// §4.6 sizing block, then applies the virtual concentration multiplier and
// the graduated-drain allowance on top.
func (s *State) Resolve(in SizingInputs, slot uint64) Sizing {
	anchor := in.GTWAPTick
	if in.FloorSafeAskTick > anchor {
		anchor = in.FloorSafeAskTick
	}

	rc := clampTick(anchor, in.TickCur-s.cfg.DevClamp, in.TickCur+s.cfg.DevClamp)

	baseSize := in.Tau * s.cfg.BaseBpsOfTau / 10_000
	if baseSize > s.cfg.PerSwapCap {
		baseSize = s.cfg.PerSwapCap
	}

	alphaLocal := uint32(65535) - uint32(s.toxicityQ16)
	if alphaLocal < uint32(s.cfg.ToxMinQ16) {
		alphaLocal = uint32(s.cfg.ToxMinQ16)
	}
	alpha := uint16((alphaLocal * uint32(in.FlowAlphaQ16)) >> 16)

	size := (baseSize * uint64(alpha)) >> 16

	mult := concentrationMultiplier(rc, in.TickCur)
	size = size * mult

	drain := s.drainMultiplierTenths(slot)
	size = size * drain / 10

	if size > s.cfg.PerSwapCap {
		size = s.cfg.PerSwapCap
	}

	return Sizing{AnchorTick: anchor, Rc: rc, BaseSize: baseSize, Alpha: alpha, Size: size}
}

func clampTick(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// concentrationMultiplier scales size by distance between the current tick
// and the band midpoint: tighter bands get a steeper virtual boost (§4.6).
func concentrationMultiplier(rc, tickCur int32) uint64 {
	d := rc - tickCur
	if d < 0 {
		d = -d
	}
	switch {
	case d <= 10:
		return 10
	case d <= 50:
		return 5
	case d <= 100:
		return 2
	default:
		return 1
	}
}

// drainMultiplierTenths returns the graduated-drain allowance (as tenths of
// 1.0) based on rolling consumption over the trailing window.
func (s *State) drainMultiplierTenths(slot uint64) uint64 {
	consumed := s.rollingConsumption(slot)
	cap90 := s.cfg.PerSlotCap * 90 / 100
	cap75 := s.cfg.PerSlotCap * 75 / 100
	cap50 := s.cfg.PerSlotCap * 50 / 100
	switch {
	case consumed >= cap90:
		return s.cfg.DrainThreshold90Mult
	case consumed >= cap75:
		return s.cfg.DrainThreshold75Mult
	case consumed >= cap50:
		return s.cfg.DrainThreshold50Mult
	default:
		return 10
	}
}

// Direction picks which side of the book the JIT band sits on: it is placed
// contrarian to the taker's inferred direction.
type Direction int

const (
	DirectionAmbiguous Direction = iota
	DirectionBid                // taker is selling token0 in; JIT bids
	DirectionAsk                // taker is buying token0 out; JIT asks
)

// Band is one placed liquidity range.
type Band struct {
	Lower, Upper int32
	Size         uint64
	Symmetric    bool
}

// Place computes the band geometry for a resolved sizing and direction.
// Ambiguous direction falls back to a capped, wider-spread symmetric band.
func Place(sz Sizing, dir Direction, spread, rangeTicks int32, slot uint64) Band {
	if dir == DirectionAmbiguous {
		symSpread := spread * 2
		symSize := sz.Size / 4
		return Band{
			Lower:     sz.Rc - symSpread - rangeTicks,
			Upper:     sz.Rc + symSpread + rangeTicks,
			Size:      symSize,
			Symmetric: true,
		}
	}
	if dir == DirectionBid {
		return Band{
			Lower: sz.Rc - spread - rangeTicks,
			Upper: sz.Rc - spread,
			Size:  sz.Size,
		}
	}
	edgeOffset := int32(slot & 1)
	return Band{
		Lower: sz.Rc + spread + edgeOffset,
		Upper: sz.Rc + spread + edgeOffset + rangeTicks,
		Size:  sz.Size,
	}
}
