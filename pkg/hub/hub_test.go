package hub

import (
	"math/big"
	"testing"

	"lukechampine.com/uint128"

	"clammhub/pkg/coreerr"
	"github.com/stretchr/testify/require"
)

func TestOracleStartsHealthy(t *testing.T) {
	o := New(DefaultConfig(), 0)
	require.Equal(t, Healthy, o.Status())
}

func TestRefreshStatusGoesStaleAfterAge(t *testing.T) {
	cfg := DefaultConfig()
	o := New(cfg, 0)
	o.RefreshStatus(cfg.StaleAgeSlots + 1)
	require.Equal(t, Stale, o.Status())
}

func TestRefreshStatusStaysHealthyWithinAge(t *testing.T) {
	cfg := DefaultConfig()
	o := New(cfg, 0)
	o.RefreshStatus(cfg.StaleAgeSlots)
	require.Equal(t, Healthy, o.Status())
}

func TestStaleToDepeggedAfterRequiredConfirmations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequiredConfirmations = 2
	o := New(cfg, 0)
	o.RefreshStatus(cfg.StaleAgeSlots + 1)
	require.Equal(t, Stale, o.Status())

	o.Observe(200, cfg.DepegThresholdBps+1)
	require.Equal(t, Stale, o.Status())
	o.Observe(201, cfg.DepegThresholdBps+1)
	require.Equal(t, Depegged, o.Status())
}

func TestStaleRecoversToHealthyOnCleanObservation(t *testing.T) {
	cfg := DefaultConfig()
	o := New(cfg, 0)
	o.RefreshStatus(cfg.StaleAgeSlots + 1)
	require.Equal(t, Stale, o.Status())

	o.Observe(200, 0)
	require.Equal(t, Healthy, o.Status())
}

func TestDepeggedToHealthyAfterClearRequiredObs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequiredConfirmations = 1
	cfg.ClearRequiredObs = 2
	o := New(cfg, 0)
	o.RefreshStatus(cfg.StaleAgeSlots + 1)
	o.Observe(200, cfg.DepegThresholdBps+1)
	require.Equal(t, Depegged, o.Status())

	o.Observe(201, 0)
	require.Equal(t, Depegged, o.Status())
	o.Observe(202, 0)
	require.Equal(t, Healthy, o.Status())
}

func TestDepeggedResetsCleanStreakOnDirtyObservation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequiredConfirmations = 1
	cfg.ClearRequiredObs = 2
	o := New(cfg, 0)
	o.RefreshStatus(cfg.StaleAgeSlots + 1)
	o.Observe(200, cfg.DepegThresholdBps+1)
	require.Equal(t, Depegged, o.Status())

	o.Observe(201, 0)
	o.Observe(202, cfg.DepegThresholdBps+1)
	require.Equal(t, Depegged, o.Status())
	o.Observe(203, 0)
	require.Equal(t, Depegged, o.Status(), "clean streak should have reset")
}

func TestEnterHubMintsOneToOneWithinCap(t *testing.T) {
	cfg := DefaultConfig()
	o := New(cfg, 0)
	r := NewRedemption(o, cfg)
	minted, err := r.EnterHub(1_000, 5)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), minted)
}

func TestEnterHubRejectsOverMintCapInSameSlot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MintPerSlotCap = 1_000
	o := New(cfg, 0)
	r := NewRedemption(o, cfg)
	_, err := r.EnterHub(600, 5)
	require.NoError(t, err)
	_, err = r.EnterHub(600, 5)
	require.ErrorIs(t, err, coreerr.ErrRateLimited)
}

func TestEnterHubCapResetsOnNewSlot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MintPerSlotCap = 1_000
	o := New(cfg, 0)
	r := NewRedemption(o, cfg)
	_, err := r.EnterHub(900, 5)
	require.NoError(t, err)
	_, err = r.EnterHub(900, 6)
	require.NoError(t, err)
}

func TestExitHubRejectsWhenOracleNotHealthy(t *testing.T) {
	cfg := DefaultConfig()
	o := New(cfg, 0)
	o.RefreshStatus(cfg.StaleAgeSlots + 1)
	r := NewRedemption(o, cfg)

	rateQ64 := uint128.FromBig(new(big.Int).Lsh(big.NewInt(1), 64))
	_, err := r.ExitHub(1_000, rateQ64, 10)
	require.ErrorIs(t, err, coreerr.ErrHubNotHealthy)
}

func TestExitHubAppliesConservativeHaircut(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferBps = 1_000 // 10%
	o := New(cfg, 0)
	r := NewRedemption(o, cfg)

	rateQ64 := uint128.FromBig(new(big.Int).Lsh(big.NewInt(1), 64)) // rate 1:1
	out, err := r.ExitHub(10_000, rateQ64, 10)
	require.NoError(t, err)
	// floor-rounded through two Q64.64 stages lands one unit below the exact
	// 90% haircut (8999, not 9000) — rounding always favors the pool.
	require.Equal(t, uint64(8_999), out)
}

func TestExitHubRespectsRedeemCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RedeemPerSlotCap = 500
	o := New(cfg, 0)
	r := NewRedemption(o, cfg)

	rateQ64 := uint128.FromBig(new(big.Int).Lsh(big.NewInt(1), 64))
	_, err := r.ExitHub(400, rateQ64, 10)
	require.NoError(t, err)
	_, err = r.ExitHub(400, rateQ64, 10)
	require.ErrorIs(t, err, coreerr.ErrRateLimited)
}
