package jit

// FillOutcome describes what happened to a placed band by the end of the
// swap, the input to the post-fill toxicity update (§4.6).
type FillOutcome struct {
	BidFilled bool
	AskFilled bool
	TickBefore int32
	TickAfter  int32
}

// Observe folds one fill outcome into the local toxicity EMA and reports the
// observation so the caller can submit it to the shared flow.Tracker.
func (s *State) Observe(out FillOutcome) (obsQ16 uint16, toxic bool) {
	dt := out.TickAfter - out.TickBefore
	adverse := (out.AskFilled && dt > 0) || (out.BidFilled && dt < 0)
	hit := out.BidFilled || out.AskFilled

	switch {
	case adverse:
		absDt := dt
		if absDt < 0 {
			absDt = -absDt
		}
		v := uint32(absDt) * uint32(s.cfg.ToxTickQ16)
		if v > 65535 {
			v = 65535
		}
		obsQ16 = uint16(v)
	case hit:
		obsQ16 = s.cfg.ToxBaseQ16IfHit
	default:
		obsQ16 = 0
	}

	shift := s.cfg.ToxicityDownShift
	if obsQ16 > s.toxicityQ16 {
		shift = s.cfg.ToxicityUpShift
	}
	diff := int32(obsQ16) - int32(s.toxicityQ16)
	s.toxicityQ16 = uint16(int32(s.toxicityQ16) + (diff >> shift))

	if hit {
		s.fillsThisSlot++
	}

	return obsQ16, adverse
}
