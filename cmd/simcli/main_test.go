package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *engine {
	t.Helper()
	eng, err := newEngine(0, 60)
	require.NoError(t, err)
	_, err = eng.seedLiquidity(500_000_000)
	require.NoError(t, err)
	return eng
}

func TestSeedLiquidityActivatesLiquidity(t *testing.T) {
	eng := newTestEngine(t)
	require.False(t, eng.txn.Pool().LiquidityActive.IsZero())
}

func TestSimulateSwapMovesPriceAndChargesFee(t *testing.T) {
	eng := newTestEngine(t)
	res, err := eng.simulateSwap(1, true, 1_000_000)
	require.NoError(t, err)
	require.Greater(t, res.AmountOut, uint64(0))
	require.Greater(t, res.FeePaid, uint64(0))
	require.LessOrEqual(t, res.EndTick, res.StartTick)
}

func TestHandleHealthReportsOK(t *testing.T) {
	eng := newTestEngine(t)
	w := httptest.NewRecorder()
	eng.handleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHandleEnterHubMintsRequestedAmount(t *testing.T) {
	eng := newTestEngine(t)
	w := httptest.NewRecorder()
	eng.handleEnterHub(w, httptest.NewRequest(http.MethodPost, "/hub/enter?amount=1000", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHandleEnterHubRejectsMissingAmount(t *testing.T) {
	eng := newTestEngine(t)
	w := httptest.NewRecorder()
	eng.handleEnterHub(w, httptest.NewRequest(http.MethodPost, "/hub/enter", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleExitHubRedeemsAgainstIdentityRate(t *testing.T) {
	eng := newTestEngine(t)
	w := httptest.NewRecorder()
	eng.handleExitHub(w, httptest.NewRequest(http.MethodPost, "/hub/exit?amount=1000", nil))
	require.Equal(t, http.StatusOK, w.Code)
}
