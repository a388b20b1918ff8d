// Package hub implements the HubOracle health state machine and hub
// redemption (§4.9): the universal base token every other pair routes
// through.
package hub

// Status is HubOracle's health state machine: Healthy → Stale → Depegged →
// Healthy, exactly the edges named in §4.9 (no Healthy→Depegged shortcut,
// no Stale→Healthy shortcut other than through a fresh-age recheck).
type Status int

const (
	Healthy Status = iota
	Stale
	Depegged
)

// Config holds the oracle's governance-tunable thresholds.
type Config struct {
	StaleAgeSlots         uint64
	DepegThresholdBps     uint64
	RequiredConfirmations uint32
	ClearRequiredObs      uint32
	MintPerSlotCap        uint64
	RedeemPerSlotCap      uint64
	BufferBps             uint64 // redemption haircut, applied on top of rate_q64
}

func DefaultConfig() Config {
	return Config{
		StaleAgeSlots:         150,
		DepegThresholdBps:     100,
		RequiredConfirmations: 3,
		ClearRequiredObs:      5,
		MintPerSlotCap:        1_000_000_000,
		RedeemPerSlotCap:      1_000_000_000,
		BufferBps:             50,
	}
}

// Oracle is the process-wide HubOracle state.
type Oracle struct {
	cfg Config

	status         Status
	lastUpdateSlot uint64

	confirmationsRemaining uint32
	cleanObsCount          uint32
}

func New(cfg Config, initSlot uint64) *Oracle {
	return &Oracle{
		cfg:                    cfg,
		status:                 Healthy,
		lastUpdateSlot:         initSlot,
		confirmationsRemaining: cfg.RequiredConfirmations,
	}
}

func (o *Oracle) Status() Status { return o.status }

// RefreshStatus recomputes the Healthy/Stale age check. It never touches
// Depegged — leaving that state requires the clean-observation sequence in
// Observe, per §4.9's explicit "Depegged → Healthy only after
// clear_required_obs consecutive clean observations".
func (o *Oracle) RefreshStatus(nowSlot uint64) {
	if o.status == Depegged {
		return
	}
	if nowSlot-o.lastUpdateSlot > o.cfg.StaleAgeSlots {
		o.status = Stale
	} else {
		o.status = Healthy
	}
}

// Observe reports one price-deviation sample at slot: deviationBps is the
// absolute deviation (in bps) of the observed hub rate from peg. It always
// refreshes last_update_slot (the oracle just received new data). While
// Stale, enough consecutive beyond-threshold observations trip the oracle
// to Depegged; while Depegged, enough consecutive clean observations clear
// it back to Healthy.
func (o *Oracle) Observe(slot uint64, deviationBps uint64) {
	o.lastUpdateSlot = slot
	beyondThreshold := deviationBps > o.cfg.DepegThresholdBps

	switch o.status {
	case Stale:
		if beyondThreshold {
			if o.confirmationsRemaining > 0 {
				o.confirmationsRemaining--
			}
			if o.confirmationsRemaining == 0 {
				o.status = Depegged
				o.cleanObsCount = 0
			}
		} else {
			o.confirmationsRemaining = o.cfg.RequiredConfirmations
			o.status = Healthy
		}
	case Depegged:
		if beyondThreshold {
			o.cleanObsCount = 0
			return
		}
		o.cleanObsCount++
		if o.cleanObsCount >= o.cfg.ClearRequiredObs {
			o.status = Healthy
			o.confirmationsRemaining = o.cfg.RequiredConfirmations
			o.cleanObsCount = 0
		}
	case Healthy:
		// Fresh data keeps it Healthy regardless of deviation; only an
		// aged-out RefreshStatus call can demote Healthy to Stale.
	}
}
