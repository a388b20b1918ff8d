// Package floor implements the monotonic floor-price ratchet (§4.5): a
// floor tick that only ever rises, recomputed from pool reserves and the
// GTWAP tick no more often than once per cooldown window.
package floor

// Floor holds one pool's ratchet state. floor_tick never decreases for the
// pool's lifetime (§8 invariant).
type Floor struct {
	floorTick      int32
	lastRatchetSlot uint64
	bufferTicks    int32
	cooldownSlots  uint64
}

func New(initialFloorTick, bufferTicks int32, cooldownSlots uint64) *Floor {
	return &Floor{
		floorTick:     initialFloorTick,
		bufferTicks:   bufferTicks,
		cooldownSlots: cooldownSlots,
	}
}

// Clone copies the ratchet state for transaction-scoped rollback.
func (f *Floor) Clone() *Floor {
	out := *f
	return &out
}

func (f *Floor) FloorTick() int32 { return f.floorTick }

func (f *Floor) LastRatchetSlot() uint64 { return f.lastRatchetSlot }

// SafeAskTick is the lowest tick a protocol-owned ask may be placed at.
func (f *Floor) SafeAskTick() int32 { return f.floorTick + f.bufferTicks }

// ReserveFloorFunc computes a candidate floor tick from the pool's current
// reserves; it is supplied by the caller (pkg/pool) since reserves are
// pool-owned state this package doesn't hold.
type ReserveFloorFunc func() int32

// DampedTickFunc computes a damped function of the current tick, used as
// the other half of the ratchet candidate (min of reserve-based floor and
// a damped current-tick function, per §4.5).
type DampedTickFunc func(tickCur int32) int32

// UpdateAfterSwap recomputes the ratchet candidate and raises floor_tick if
// the cooldown has elapsed and the candidate exceeds the current floor.
// Returns true if the floor moved.
func (f *Floor) UpdateAfterSwap(slot uint64, tickCur int32, reserveFloor ReserveFloorFunc, damped DampedTickFunc) bool {
	if slot < f.lastRatchetSlot+f.cooldownSlots {
		return false
	}

	candidate := reserveFloor()
	if d := damped(tickCur); d < candidate {
		candidate = d
	}

	f.lastRatchetSlot = slot
	if candidate > f.floorTick {
		f.floorTick = candidate
		return true
	}
	return false
}

// Ready reports whether the floor has ratcheted at least once past its
// initial value, the readiness gate transition_phase checks (§9 Open
// Question: "last_ratchet_slot > 0 && floor_tick > tick_min_global").
func (f *Floor) Ready(tickMinGlobal int32) bool {
	return f.lastRatchetSlot > 0 && f.floorTick > tickMinGlobal
}
