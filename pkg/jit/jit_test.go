package jit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func baseGuard() GuardInputs {
	return GuardInputs{
		SafetyAllowsJIT: true,
		HubHealthy:      true,
		GTWAPHealthy:    true,
		GTWAPSlopeOK:    true,
		Slot:            100,
		TickCur:         0,
		GTWAPTick:       0,
		AmountIn:        10_000_000,
		BufferHealthBps: 10_000,
	}
}

func warmUp(s *State, untilSlot uint64) {
	for slot := uint64(1); slot <= untilSlot; slot++ {
		s.RecordDevSample(slot, true)
	}
}

func TestEntryDeniedWithoutGuardWarmup(t *testing.T) {
	s := New(DefaultConfig())
	allowed := s.EntryAllowed(baseGuard())
	require.False(t, allowed)
}

func TestEntryAllowedAfterWarmupAndAboveThreshold(t *testing.T) {
	s := New(DefaultConfig())
	warmUp(s, 3)
	require.True(t, s.EntryAllowed(baseGuard()))
}

func TestEntryDeniedWhenSafetyBlocks(t *testing.T) {
	s := New(DefaultConfig())
	warmUp(s, 3)
	g := baseGuard()
	g.SafetyAllowsJIT = false
	require.False(t, s.EntryAllowed(g))
}

func TestEntryDeniedBelowBufferHealthFloor(t *testing.T) {
	s := New(DefaultConfig())
	warmUp(s, 3)
	g := baseGuard()
	g.BufferHealthBps = 1_000
	require.False(t, s.EntryAllowed(g))
}

func TestEntryDeniedBeyondMaxDeviation(t *testing.T) {
	s := New(DefaultConfig())
	warmUp(s, 3)
	g := baseGuard()
	g.TickCur = 1000
	require.False(t, s.EntryAllowed(g))
}

func TestQMinDoublesAfterFirstFillThisSlot(t *testing.T) {
	s := New(DefaultConfig())
	warmUp(s, 3)
	g := baseGuard()
	g.AmountIn = DefaultConfig().QMinForJIT + 1
	require.True(t, s.EntryAllowed(g))

	s.BeginSlot(g.Slot)
	s.fillsThisSlot = 1
	require.False(t, s.EntryAllowed(g))
}

func TestResolveSizingAppliesConcentrationMultiplier(t *testing.T) {
	s := New(DefaultConfig())
	in := SizingInputs{
		GTWAPTick:        0,
		FloorSafeAskTick: -1000,
		TickCur:          5,
		Tau:              1_000_000_000,
		FlowAlphaQ16:     65535,
	}
	sz := s.Resolve(in, 1)
	require.Equal(t, int32(0), sz.Rc) // anchor (0) already within [tick_cur-DevClamp, tick_cur+DevClamp]
	require.Greater(t, sz.Size, uint64(0))
}

func TestResolveSizingGraduatedDrainReducesAllowance(t *testing.T) {
	s := New(DefaultConfig())
	in := SizingInputs{TickCur: 0, FloorSafeAskTick: -1000, Tau: 1_000_000_000, FlowAlphaQ16: 65535}

	full := s.Resolve(in, 1)
	s.recordConsumption(1, s.cfg.PerSlotCap*95/100)
	drained := s.Resolve(in, 1)

	require.Less(t, drained.Size, full.Size)
}

func TestPlaceBidIsBelowRcOnContrarianSide(t *testing.T) {
	sz := Sizing{Rc: 1000, Size: 500}
	band := Place(sz, DirectionBid, 10, 20, 4)
	require.Less(t, band.Upper, sz.Rc)
	require.Equal(t, sz.Size, band.Size)
}

func TestPlaceAskRespectsEdgeOffsetParity(t *testing.T) {
	sz := Sizing{Rc: 1000, Size: 500}
	bandEven := Place(sz, DirectionAsk, 10, 20, 4)
	bandOdd := Place(sz, DirectionAsk, 10, 20, 5)
	require.NotEqual(t, bandEven.Lower, bandOdd.Lower)
}

func TestPlaceAmbiguousUsesSymmetricCappedSize(t *testing.T) {
	sz := Sizing{Rc: 1000, Size: 4000}
	band := Place(sz, DirectionAmbiguous, 10, 20, 4)
	require.True(t, band.Symmetric)
	require.Equal(t, uint64(1000), band.Size)
	require.Less(t, band.Lower, sz.Rc)
	require.Greater(t, band.Upper, sz.Rc)
}

func TestObserveAdverseFillRaisesToxicity(t *testing.T) {
	s := New(DefaultConfig())
	obs, toxic := s.Observe(FillOutcome{AskFilled: true, TickBefore: 0, TickAfter: 50})
	require.True(t, toxic)
	require.Greater(t, obs, uint16(0))
	require.Greater(t, s.toxicityQ16, uint16(0))
}

func TestObserveNonAdverseHitUsesBaseToxicity(t *testing.T) {
	s := New(DefaultConfig())
	obs, toxic := s.Observe(FillOutcome{BidFilled: true, TickBefore: 0, TickAfter: 50})
	require.False(t, toxic)
	require.Equal(t, s.cfg.ToxBaseQ16IfHit, obs)
}

func TestObserveNoHitRecordsZero(t *testing.T) {
	s := New(DefaultConfig())
	obs, toxic := s.Observe(FillOutcome{TickBefore: 0, TickAfter: 0})
	require.False(t, toxic)
	require.Equal(t, uint16(0), obs)
}

func TestAttemptDeniesAskBelowFloorSafeAskTick(t *testing.T) {
	s := New(DefaultConfig())
	warmUp(s, 3)
	g := baseGuard()
	sizing := SizingInputs{GTWAPTick: 0, FloorSafeAskTick: 500, TickCur: 0, Tau: 1_000_000_000, FlowAlphaQ16: 65535}
	_, ok := s.Attempt(g, sizing, DirectionAsk, 10, 20)
	require.False(t, ok)
}

func TestAttemptSucceedsForBidDirection(t *testing.T) {
	s := New(DefaultConfig())
	warmUp(s, 3)
	g := baseGuard()
	sizing := SizingInputs{GTWAPTick: 0, FloorSafeAskTick: -1000, TickCur: 0, Tau: 1_000_000_000, FlowAlphaQ16: 65535}
	band, ok := s.Attempt(g, sizing, DirectionBid, 10, 20)
	require.True(t, ok)
	require.Greater(t, band.Size, uint64(0))
}

func TestCommitSetsCooldownsAndConsumesBudget(t *testing.T) {
	s := New(DefaultConfig())
	s.Commit(100, 1000, DirectionAsk, 5, 7, FillOutcome{AskFilled: true, TickBefore: 0, TickAfter: 10})
	require.Equal(t, uint64(105), s.cooldownUntilSlot)
	require.Equal(t, uint64(107), s.askCooldownUntilSlot)
	require.Equal(t, uint64(1000), s.rollingConsumption(100))
}
