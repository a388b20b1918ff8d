// Package oracle implements the per-pool GTWAP ring buffer (§4.4): a
// cumulative-tick accumulator sampled at most once per slot, queried by
// interpolating between the two observations that bracket a target window.
package oracle

import "clammhub/pkg/coreerr"

// Health reports whether a GTWAP read is backed by enough history to trust.
// Staleness is a status the caller degrades on, never an error (§4.4, §4.8).
type Health int

const (
	Healthy Health = iota
	Stale
)

// Observation is one ring-buffer entry: cumulative_tick_slots[i] =
// cumulative_tick_slots[i-1] + tick[i-1]*(slot[i]-slot[i-1]).
type Observation struct {
	Slot                uint64
	Tick                int32
	CumulativeTickSlots int64
}

// GTWAP is the oracle state owned by one pool.
type GTWAP struct {
	observations    []Observation
	index           int
	cardinality     int
	cardinalityNext int
}

// New seeds the ring buffer with a single observation at pool creation and
// preallocates storage for up to cardinalityNext entries.
func New(initialTick int32, initSlot uint64, cardinalityNext int) *GTWAP {
	if cardinalityNext < 1 {
		cardinalityNext = 1
	}
	obs := make([]Observation, cardinalityNext)
	obs[0] = Observation{Slot: initSlot, Tick: initialTick}
	return &GTWAP{
		observations:    obs,
		index:           0,
		cardinality:     1,
		cardinalityNext: cardinalityNext,
	}
}

// Grow extends the buffer's target capacity; future updates fill the new
// slots as the ring advances, per Update's cardinality-growth rule.
func (g *GTWAP) Grow(cardinalityNext int) {
	if cardinalityNext <= g.cardinalityNext {
		return
	}
	for len(g.observations) < cardinalityNext {
		g.observations = append(g.observations, Observation{})
	}
	g.cardinalityNext = cardinalityNext
}

// Update appends a new observation for slot, or overwrites the head in
// place if slot matches the most recent write (§4.4: "repeated same-slot
// updates overwrite the tail").
func (g *GTWAP) Update(tick int32, slot uint64) error {
	last := g.observations[g.index]
	if slot == last.Slot {
		g.observations[g.index] = Observation{Slot: slot, Tick: tick, CumulativeTickSlots: last.CumulativeTickSlots}
		return nil
	}
	if slot < last.Slot {
		return coreerr.ErrInvariantViolation
	}

	cardinalityUpdated := g.cardinality
	if g.cardinalityNext > g.cardinality && g.index == g.cardinality-1 {
		cardinalityUpdated = g.cardinality + 1
	}
	nextIndex := (g.index + 1) % cardinalityUpdated

	deltaSlot := int64(slot - last.Slot)
	cumulative := last.CumulativeTickSlots + int64(last.Tick)*deltaSlot

	g.observations[nextIndex] = Observation{Slot: slot, Tick: tick, CumulativeTickSlots: cumulative}
	g.index = nextIndex
	g.cardinality = cardinalityUpdated
	return nil
}

// Clone deep-copies the ring buffer for transaction-scoped rollback.
func (g *GTWAP) Clone() *GTWAP {
	out := &GTWAP{
		observations:    make([]Observation, len(g.observations)),
		index:           g.index,
		cardinality:     g.cardinality,
		cardinalityNext: g.cardinalityNext,
	}
	copy(out.observations, g.observations)
	return out
}

func (g *GTWAP) oldestIndex() int {
	if g.cardinality < g.cardinalityNext {
		return 0
	}
	return (g.index + 1) % g.cardinality
}

// ordered returns all valid observations in chronological order, oldest
// first.
func (g *GTWAP) ordered() []Observation {
	n := g.cardinality
	out := make([]Observation, n)
	oldest := g.oldestIndex()
	for i := 0; i < n; i++ {
		out[i] = g.observations[(oldest+i)%n]
	}
	return out
}

// GetTick returns the geometric TWAP tick over [nowSlot-windowSlots, nowSlot]
// by interpolating cumulative_tick_slots between the two observations
// bracketing the window's start. Returns Stale (not an error) when warmup
// is incomplete or history doesn't reach back far enough.
func (g *GTWAP) GetTick(nowSlot, windowSlots uint64) (int32, Health) {
	obs := g.ordered()
	newest := obs[len(obs)-1]

	if len(obs) < 2 || nowSlot < windowSlots {
		return newest.Tick, Stale
	}

	target := nowSlot - windowSlots
	oldest := obs[0]
	if target < oldest.Slot {
		return newest.Tick, Stale
	}

	idx := len(obs) - 2
	for i := 0; i < len(obs)-1; i++ {
		if obs[i].Slot <= target && target <= obs[i+1].Slot {
			idx = i
			break
		}
	}
	cumAtTarget := interpolate(obs[idx], target)

	span := nowSlot - target
	if span == 0 {
		return newest.Tick, Stale
	}
	avg := (newest.CumulativeTickSlots - cumAtTarget) / int64(span)
	return int32(avg), Healthy
}

// interpolate estimates cumulative_tick_slots at targetSlot, assuming the
// tick held steady at `before.Tick` since `before.Slot` (the same
// step-function model the accumulator itself uses).
func interpolate(before Observation, target uint64) int64 {
	if target <= before.Slot {
		return before.CumulativeTickSlots
	}
	deltaSlot := int64(target - before.Slot)
	return before.CumulativeTickSlots + int64(before.Tick)*deltaSlot
}

// CheckManipulation rejects (returns false) when the slope between the two
// most recent observations exceeds maxSlopeTicksPerSlot.
func (g *GTWAP) CheckManipulation(maxSlopeTicksPerSlot int32) bool {
	obs := g.ordered()
	if len(obs) < 2 {
		return true
	}
	newest := obs[len(obs)-1]
	prior := obs[len(obs)-2]

	deltaSlot := int64(newest.Slot - prior.Slot)
	if deltaSlot <= 0 {
		return true
	}
	deltaTick := int64(newest.Tick) - int64(prior.Tick)
	if deltaTick < 0 {
		deltaTick = -deltaTick
	}
	return deltaTick <= int64(maxSlopeTicksPerSlot)*deltaSlot
}
