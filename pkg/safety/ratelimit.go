package safety

import (
	"time"

	"golang.org/x/time/rate"
)

// slotDuration is the nominal wall-clock length of one slot, used only to
// turn a slot number into a synthetic time.Time so rate.Limiter's refill
// math becomes a pure function of slot rather than of wall-clock reads.
// Per §5: "rate-limiter counters use per-slot buckets keyed by (op, slot)
// ... overflow caps at the maximum and is detected deterministically."
const slotDuration = 400 * time.Millisecond

var slotEpoch = time.Unix(0, 0)

func slotTime(slot uint64) time.Time {
	return slotEpoch.Add(time.Duration(slot) * slotDuration)
}

// opLimiter wraps a rate.Limiter refilling at exactly perSlot tokens every
// slot, queried with a synthetic slot-derived timestamp instead of time.Now.
type opLimiter struct {
	limiter *rate.Limiter
}

func newOpLimiter(perSlot int) *opLimiter {
	if perSlot <= 0 {
		perSlot = 1
	}
	r := rate.Limit(float64(perSlot) / slotDuration.Seconds())
	return &opLimiter{limiter: rate.NewLimiter(r, perSlot)}
}

func (l *opLimiter) allow(slot uint64) bool {
	return l.limiter.AllowN(slotTime(slot), 1)
}
