package pool

import "clammhub/pkg/coreerr"

// TransitionPhase implements `transition_phase` (§6): price_discovery can
// only advance to steady_state once the floor ratchet has fired at least
// once past its initial value (§9 readiness gate).
func (p *Pool) TransitionPhase() error {
	if p.Phase != PriceDiscovery {
		return coreerr.ErrInvalidPhase
	}
	if !p.Floor.Ready(p.TickMinGlobal) {
		return coreerr.ErrFloorNotReady
	}
	p.Phase = SteadyState
	return nil
}
