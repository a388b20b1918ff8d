// Package safety implements the process-wide SafetyController (§4.8,
// §3): a global pause flag, degrade levels, per-operation rate limits,
// and the oracle-health snapshot every pool's post-swap pipeline reports
// into and reads back from.
package safety

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"clammhub/pkg/coreerr"
)

type Op int

const (
	OpSwap Op = iota
	OpJIT
	OpRedemption
)

type DegradeLevel int

const (
	DegradeNone DegradeLevel = iota
	DegradeOracleStale
	DegradeVolatile
	DegradeHubDepegged
)

// Observation is what a pool's post-swap pipeline reports after each swap
// (§4.8 step 6): oracle freshness, fee-bps distribution, volatility.
type Observation struct {
	OracleFresh bool
	HubHealthy  bool
	Volatile    bool
	FeeBps      uint32
}

type snapshot struct {
	paused          bool
	degradeLevel    DegradeLevel
	rebatesDisabled bool
	exitHubPaused   bool
}

// Config sizes the per-operation rate limiters, in allowed calls per slot.
type Config struct {
	SwapPerSlot       int
	JITPerSlot        int
	RedemptionPerSlot int
}

func DefaultConfig() Config {
	return Config{SwapPerSlot: 64, JITPerSlot: 16, RedemptionPerSlot: 8}
}

// Controller is process-wide: every pool shares one instance, reading and
// submitting observations through atomic snapshot replace (§5).
type Controller struct {
	state    atomic.Pointer[snapshot]
	limiters map[Op]*opLimiter
}

func New(cfg Config) *Controller {
	c := &Controller{
		limiters: map[Op]*opLimiter{
			OpSwap:       newOpLimiter(cfg.SwapPerSlot),
			OpJIT:        newOpLimiter(cfg.JITPerSlot),
			OpRedemption: newOpLimiter(cfg.RedemptionPerSlot),
		},
	}
	c.state.Store(&snapshot{})
	return c
}

func (c *Controller) Snapshot() (degrade DegradeLevel, paused, rebatesDisabled, exitHubPaused bool) {
	s := c.state.Load()
	return s.degradeLevel, s.paused, s.rebatesDisabled, s.exitHubPaused
}

func (c *Controller) Pause()   { c.setPaused(true) }
func (c *Controller) Unpause() { c.setPaused(false) }

func (c *Controller) setPaused(v bool) {
	for {
		cur := c.state.Load()
		next := *cur
		next.paused = v
		if c.state.CompareAndSwap(cur, &next) {
			return
		}
	}
}

// CanExecute is §4.8's `can_execute(op, slot)`: a global pause or an
// exhausted per-(op,slot) rate bucket both fail the caller.
func (c *Controller) CanExecute(op Op, slot uint64) error {
	s := c.state.Load()
	if s.paused {
		return coreerr.ErrPaused
	}
	if op == OpRedemption && s.exitHubPaused {
		return coreerr.ErrHubNotHealthy
	}
	lim, ok := c.limiters[op]
	if !ok || !lim.allow(slot) {
		return coreerr.ErrRateLimited
	}
	return nil
}

// Observe folds one swap's post-swap safety observation into the shared
// degrade state (§4.8 degrade rules).
func (c *Controller) Observe(o Observation) {
	for {
		cur := c.state.Load()
		next := *cur

		switch {
		case !o.HubHealthy:
			next.degradeLevel = DegradeHubDepegged
			next.exitHubPaused = true
			next.rebatesDisabled = true
		case !o.OracleFresh:
			next.degradeLevel = DegradeOracleStale
			next.rebatesDisabled = true
			next.exitHubPaused = false
		case o.Volatile:
			next.degradeLevel = DegradeVolatile
			next.rebatesDisabled = false
			next.exitHubPaused = false
		default:
			next.degradeLevel = DegradeNone
			next.rebatesDisabled = false
			next.exitHubPaused = false
		}

		if c.state.CompareAndSwap(cur, &next) {
			if next.degradeLevel != cur.degradeLevel {
				logrus.Warnf("safety degrade transition: %d -> %d (oracleFresh=%t hubHealthy=%t volatile=%t)",
					cur.degradeLevel, next.degradeLevel, o.OracleFresh, o.HubHealthy, o.Volatile)
			}
			return
		}
	}
}
