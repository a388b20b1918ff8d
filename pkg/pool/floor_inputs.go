package pool

import "clammhub/pkg/floor"

// reserveFloorFunc supplies the floor ratchet's reserve-backed candidate:
// scaled linearly between tick_min_global (no backing at all) and the
// current tick (fully backed) by the buffer's health fraction. The spec
// leaves the exact reserve-accounting formula to the implementation
// (§4.5); this is the simplest monotone function of buffer health that
// satisfies "floor candidate derived from pool reserves."
func (p *Pool) reserveFloorFunc() floor.ReserveFloorFunc {
	return func() int32 {
		healthBps := p.Buffer.HealthBps(p.TargetTau0, p.TargetTau1)
		span := int64(p.TickCur - p.TickMinGlobal)
		return p.TickMinGlobal + int32(span*int64(healthBps)/10_000)
	}
}

// dampedTickFunc supplies the ratchet's damped current-tick candidate: the
// floor is pulled only halfway toward tick_cur per update, so a single
// sharp price move can't ratchet the floor all the way up in one step.
func (p *Pool) dampedTickFunc() floor.DampedTickFunc {
	return func(tickCur int32) int32 {
		prev := p.Floor.FloorTick()
		return prev + (tickCur-prev)/2
	}
}
