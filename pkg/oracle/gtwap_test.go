package oracle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGTWAPSameSlotOverwritesHead(t *testing.T) {
	g := New(100, 1000, 8)
	err := g.Update(200, 1000)
	require.NoError(t, err)
	obs := g.ordered()
	require.Len(t, obs, 1)
	require.Equal(t, int32(200), obs[0].Tick)
}

func TestGTWAPRejectsSlotGoingBackward(t *testing.T) {
	g := New(100, 1000, 8)
	require.NoError(t, g.Update(100, 1001))
	err := g.Update(100, 999)
	require.Error(t, err)
}

func TestGTWAPGrowsCardinalityThenWraps(t *testing.T) {
	g := New(0, 0, 3)
	for i := uint64(1); i <= 6; i++ {
		require.NoError(t, g.Update(int32(i), i))
	}
	require.Equal(t, 3, g.cardinality)
	obs := g.ordered()
	require.Len(t, obs, 3)
	// oldest observation after wraparound should be slot 4, not the original slot 0
	require.Equal(t, uint64(4), obs[0].Slot)
	require.Equal(t, uint64(6), obs[2].Slot)
}

func TestGTWAPStaleBeforeWarmup(t *testing.T) {
	g := New(0, 0, 16)
	require.NoError(t, g.Update(10, 1))
	_, health := g.GetTick(1, 100)
	require.Equal(t, Stale, health)
}

func TestGTWAPInterpolatesConstantTick(t *testing.T) {
	g := New(50, 0, 16)
	require.NoError(t, g.Update(50, 10))
	require.NoError(t, g.Update(50, 20))
	require.NoError(t, g.Update(50, 30))

	tick, health := g.GetTick(30, 20)
	require.Equal(t, Healthy, health)
	require.Equal(t, int32(50), tick)
}

func TestGTWAPInterpolatesStepChange(t *testing.T) {
	g := New(0, 0, 16)
	require.NoError(t, g.Update(0, 0))
	require.NoError(t, g.Update(100, 10)) // tick jumps to 100 and holds until slot 20
	require.NoError(t, g.Update(100, 20))

	tick, health := g.GetTick(20, 20)
	require.Equal(t, Healthy, health)
	// half the window (slots 0-10) averaged tick 0, the other half tick 100
	require.Equal(t, int32(50), tick)
}

func TestCheckManipulationRejectsSteepSlope(t *testing.T) {
	g := New(0, 0, 8)
	require.NoError(t, g.Update(1000, 1))
	require.True(t, g.CheckManipulation(2000))
	require.False(t, g.CheckManipulation(10))
}
