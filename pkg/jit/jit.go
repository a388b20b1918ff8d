package jit

// Attempt runs the full entry-guard chain and, if every guard passes,
// resolves a band placement. It does not mutate cooldown/consumption state
// itself — the caller (pkg/pool) commits that only once the band has
// actually been placed and executed inside the swap, keeping the
// place→execute→remove sequence atomic within the pool's own transaction
// boundary (§4.6 invariant).
func (s *State) Attempt(guard GuardInputs, sizing SizingInputs, dir Direction, spread, rangeTicks int32) (Band, bool) {
	s.BeginSlot(guard.Slot)
	if !s.EntryAllowed(guard) {
		return Band{}, false
	}
	sz := s.Resolve(sizing, guard.Slot)
	if sz.Size == 0 {
		return Band{}, false
	}
	if dir == DirectionAsk && sz.Rc+spread < sizing.FloorSafeAskTick {
		return Band{}, false
	}
	band := Place(sz, dir, spread, rangeTicks, guard.Slot)
	if band.Upper < sizing.FloorSafeAskTick && (dir == DirectionAsk || dir == DirectionAmbiguous) {
		return Band{}, false
	}
	return band, true
}

// Commit records that a resolved band was actually placed and filled: it
// consumes the rolling-window budget, sets the cooldowns, and folds the
// fill outcome into the local toxicity EMA. Returns the observation to
// submit to the shared flow.Tracker.
func (s *State) Commit(slot uint64, placedSize uint64, dir Direction, cooldownSlots, askCooldownSlots uint64, out FillOutcome) (obsQ16 uint16, toxic bool) {
	s.recordConsumption(slot, placedSize)
	s.cooldownUntilSlot = slot + cooldownSlots
	if dir == DirectionAsk {
		s.askCooldownUntilSlot = slot + askCooldownSlots
	}
	return s.Observe(out)
}
