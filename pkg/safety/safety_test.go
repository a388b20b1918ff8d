package safety

import (
	"testing"

	"clammhub/pkg/coreerr"
	"github.com/stretchr/testify/require"
)

func TestCanExecuteAllowsWithinBudget(t *testing.T) {
	c := New(Config{SwapPerSlot: 2, JITPerSlot: 2, RedemptionPerSlot: 2})
	require.NoError(t, c.CanExecute(OpSwap, 10))
	require.NoError(t, c.CanExecute(OpSwap, 10))
}

func TestCanExecuteRateLimitsWithinSameSlot(t *testing.T) {
	c := New(Config{SwapPerSlot: 1, JITPerSlot: 1, RedemptionPerSlot: 1})
	require.NoError(t, c.CanExecute(OpSwap, 10))
	err := c.CanExecute(OpSwap, 10)
	require.ErrorIs(t, err, coreerr.ErrRateLimited)
}

func TestCanExecuteRefillsOnNextSlot(t *testing.T) {
	c := New(Config{SwapPerSlot: 1, JITPerSlot: 1, RedemptionPerSlot: 1})
	require.NoError(t, c.CanExecute(OpSwap, 10))
	require.Error(t, c.CanExecute(OpSwap, 10))
	require.NoError(t, c.CanExecute(OpSwap, 11))
}

func TestCanExecuteBlockedWhenPaused(t *testing.T) {
	c := New(DefaultConfig())
	c.Pause()
	err := c.CanExecute(OpSwap, 1)
	require.ErrorIs(t, err, coreerr.ErrPaused)
}

func TestUnpauseRestoresExecution(t *testing.T) {
	c := New(DefaultConfig())
	c.Pause()
	c.Unpause()
	require.NoError(t, c.CanExecute(OpSwap, 1))
}

func TestObserveHubUnhealthyPausesRedemptionOnly(t *testing.T) {
	c := New(DefaultConfig())
	c.Observe(Observation{OracleFresh: true, HubHealthy: false})

	degrade, paused, _, exitHubPaused := c.Snapshot()
	require.Equal(t, DegradeHubDepegged, degrade)
	require.False(t, paused)
	require.True(t, exitHubPaused)

	require.NoError(t, c.CanExecute(OpSwap, 1))
	require.ErrorIs(t, c.CanExecute(OpRedemption, 1), coreerr.ErrHubNotHealthy)
}

func TestObserveOracleStaleDisablesRebatesOnly(t *testing.T) {
	c := New(DefaultConfig())
	c.Observe(Observation{OracleFresh: false, HubHealthy: true})
	degrade, _, rebatesDisabled, exitHubPaused := c.Snapshot()
	require.Equal(t, DegradeOracleStale, degrade)
	require.True(t, rebatesDisabled)
	require.False(t, exitHubPaused)
}

func TestObserveRecoversToNoneWhenCalm(t *testing.T) {
	c := New(DefaultConfig())
	c.Observe(Observation{OracleFresh: false, HubHealthy: true})
	c.Observe(Observation{OracleFresh: true, HubHealthy: true, Volatile: false})
	degrade, _, rebatesDisabled, _ := c.Snapshot()
	require.Equal(t, DegradeNone, degrade)
	require.False(t, rebatesDisabled)
}
