// Package jit implements the per-swap JIT engine (§4.6): a contrarian
// micro-band of liquidity funded from the pool's tau buffers, placed and
// removed atomically within a single swap.
package jit

// Config holds the governance-tunable JIT parameters. Like the fee curve
// (pkg/fee), the spec names these as configuration rather than fixed
// constants, so defaults here are an MVP placeholder, not a protocol value.
type Config struct {
	MaxDevTicks          int32
	DMinSlots            uint64
	QMinForJIT           uint64
	MaxTWAPSlopeTicksPS  int32
	PerSwapCap           uint64
	PerSlotCap           uint64
	BaseBpsOfTau         uint64
	DevClamp             int32
	ToxMinQ16            uint16
	ToxTickQ16           uint16
	ToxBaseQ16IfHit      uint16
	ToxicityUpShift      uint
	ToxicityDownShift    uint
	RollingWindowSlots   uint64
	DrainThreshold50Mult uint64 // numerator over 10, e.g. 5 = 0.5x
	DrainThreshold75Mult uint64
	DrainThreshold90Mult uint64
	BufferHealthFloorBps uint64 // circuit breaker: buffer health < 30% halts JIT
	MaxFillsPerSlot      uint32
	MaxTickCrossingsSlot uint32
}

func DefaultConfig() Config {
	return Config{
		MaxDevTicks:          50,
		DMinSlots:            3,
		QMinForJIT:           1_000_000,
		MaxTWAPSlopeTicksPS:  20,
		PerSwapCap:           50_000_000,
		PerSlotCap:           150_000_000,
		BaseBpsOfTau:         25,
		DevClamp:             200,
		ToxMinQ16:            6_554, // 10%
		ToxTickQ16:           50,
		ToxBaseQ16IfHit:      3_277, // 5%
		ToxicityUpShift:      2,
		ToxicityDownShift:    5,
		RollingWindowSlots:   150,
		DrainThreshold50Mult: 5,
		DrainThreshold75Mult: 2,
		DrainThreshold90Mult: 1,
		BufferHealthFloorBps: 3_000, // 30%
		MaxFillsPerSlot:      4,
		MaxTickCrossingsSlot: 8,
	}
}

type consumptionSample struct {
	slot   uint64
	amount uint64
}

// State is one pool's JIT engine state.
type State struct {
	cfg Config

	toxicityQ16          uint16
	cooldownUntilSlot    uint64
	askCooldownUntilSlot uint64

	consecutiveDevSlots uint64
	devTrackedSlot      uint64

	curSlot               uint64
	fillsThisSlot         uint32
	tickCrossingsThisSlot uint32

	consumption []consumptionSample
}

func New(cfg Config) *State {
	return &State{cfg: cfg}
}

func (s *State) ToxicityQ16() uint16 { return s.toxicityQ16 }

// Clone deep-copies the JIT state for transaction-scoped rollback.
func (s *State) Clone() *State {
	out := *s
	out.consumption = make([]consumptionSample, len(s.consumption))
	copy(out.consumption, s.consumption)
	return &out
}

// BeginSlot resets the per-slot fill/tick-crossing counters when a new slot
// is observed; repeated calls within the same slot are no-ops.
func (s *State) BeginSlot(slot uint64) {
	if slot == s.curSlot {
		return
	}
	s.curSlot = slot
	s.fillsThisSlot = 0
	s.tickCrossingsThisSlot = 0
}

// RecordDevSample tracks consecutive slots where |tick_cur - GTWAP_tick| has
// stayed within MaxDevTicks, required for guard 3 (§4.6).
func (s *State) RecordDevSample(slot uint64, withinBound bool) {
	if !withinBound {
		s.consecutiveDevSlots = 0
		s.devTrackedSlot = slot
		return
	}
	if slot == s.devTrackedSlot {
		return
	}
	s.consecutiveDevSlots++
	s.devTrackedSlot = slot
}

// recordConsumption appends a fill and prunes samples outside the rolling
// window, used by the graduated-drain allowance check.
func (s *State) recordConsumption(slot, amount uint64) {
	s.consumption = append(s.consumption, consumptionSample{slot: slot, amount: amount})
	cutoff := uint64(0)
	if slot > s.cfg.RollingWindowSlots {
		cutoff = slot - s.cfg.RollingWindowSlots
	}
	kept := s.consumption[:0]
	for _, c := range s.consumption {
		if c.slot >= cutoff {
			kept = append(kept, c)
		}
	}
	s.consumption = kept
}

func (s *State) rollingConsumption(slot uint64) uint64 {
	cutoff := uint64(0)
	if slot > s.cfg.RollingWindowSlots {
		cutoff = slot - s.cfg.RollingWindowSlots
	}
	var total uint64
	for _, c := range s.consumption {
		if c.slot >= cutoff {
			total += c.amount
		}
	}
	return total
}
