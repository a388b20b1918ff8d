package jit

// GuardInputs bundles everything the entry guards (§4.6) need from the
// caller's world: safety controller, hub/oracle health, and this swap's
// parameters. The JIT engine holds none of this state itself.
type GuardInputs struct {
	SafetyAllowsJIT bool
	HubHealthy      bool
	GTWAPHealthy    bool
	GTWAPSlopeOK    bool

	Slot        uint64
	TickCur     int32
	GTWAPTick   int32
	AmountIn    uint64
	PlacingAsk  bool
	BufferHealthBps uint64
}

// EntryAllowed runs every guard in §4.6 in order; the first failure sends
// the swap through with no JIT and no JIT state change.
func (s *State) EntryAllowed(in GuardInputs) bool {
	if !in.SafetyAllowsJIT {
		return false
	}
	if !in.HubHealthy || !in.GTWAPHealthy {
		return false
	}
	if in.BufferHealthBps < s.cfg.BufferHealthFloorBps {
		return false
	}

	dev := in.TickCur - in.GTWAPTick
	if dev < 0 {
		dev = -dev
	}
	if dev > s.cfg.MaxDevTicks {
		return false
	}
	if s.consecutiveDevSlots < s.cfg.DMinSlots {
		return false
	}

	if in.Slot < s.cooldownUntilSlot {
		return false
	}
	if in.PlacingAsk && in.Slot < s.askCooldownUntilSlot {
		return false
	}

	effectiveQMin := s.cfg.QMinForJIT
	if s.fillsThisSlot > 0 {
		effectiveQMin *= 2
	}
	if in.AmountIn < effectiveQMin {
		return false
	}

	if !in.GTWAPSlopeOK {
		return false
	}

	if s.fillsThisSlot >= s.cfg.MaxFillsPerSlot {
		return false
	}
	if s.tickCrossingsThisSlot >= s.cfg.MaxTickCrossingsSlot {
		return false
	}

	return true
}
