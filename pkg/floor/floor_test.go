package floor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFloorNeverDecreases(t *testing.T) {
	f := New(-1000, 50, 10)
	moved := f.UpdateAfterSwap(10, 0, func() int32 { return -2000 }, func(int32) int32 { return -3000 })
	require.False(t, moved)
	require.Equal(t, int32(-1000), f.FloorTick())
}

func TestFloorRaisesWhenCandidateHigher(t *testing.T) {
	f := New(-1000, 50, 10)
	moved := f.UpdateAfterSwap(10, 0, func() int32 { return -500 }, func(int32) int32 { return -400 })
	require.True(t, moved)
	require.Equal(t, int32(-500), f.FloorTick())
}

func TestFloorRespectsCooldown(t *testing.T) {
	f := New(-1000, 50, 100)
	moved := f.UpdateAfterSwap(50, 0, func() int32 { return 0 }, func(int32) int32 { return 0 })
	require.False(t, moved)
	require.Equal(t, int32(-1000), f.FloorTick())
}

func TestSafeAskTick(t *testing.T) {
	f := New(-1000, 50, 10)
	require.Equal(t, int32(-950), f.SafeAskTick())
}

func TestReadyGate(t *testing.T) {
	f := New(-887270, 50, 10)
	require.False(t, f.Ready(-887270))
	f.UpdateAfterSwap(10, 0, func() int32 { return -887000 }, func(int32) int32 { return -887000 })
	require.True(t, f.Ready(-887270))
}
