package flow

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewStartsAtFullAlpha(t *testing.T) {
	tr := New()
	s := tr.Snapshot()
	require.Equal(t, MaxAlphaQ16, s.AlphaQ16)
	require.Equal(t, int32(0), s.SpreadAdjustmentTicks)
}

func TestObserveToxicContractsAlpha(t *testing.T) {
	tr := New()
	tr.Observe(true, 5)
	s := tr.Snapshot()
	require.Less(t, s.AlphaQ16, MaxAlphaQ16)
	require.Equal(t, int32(5), s.SpreadAdjustmentTicks)
}

func TestObserveCalmRecoversAlpha(t *testing.T) {
	tr := New()
	tr.Observe(true, 10)
	contracted := tr.Snapshot().AlphaQ16
	for i := 0; i < 50; i++ {
		tr.Observe(false, 0)
	}
	recovered := tr.Snapshot().AlphaQ16
	require.Greater(t, recovered, contracted)
}

func TestObserveSpreadAdjustmentDecaysWhenCalmer(t *testing.T) {
	tr := New()
	tr.Observe(true, 100)
	require.Equal(t, int32(100), tr.Snapshot().SpreadAdjustmentTicks)
	tr.Observe(true, 10)
	require.Less(t, tr.Snapshot().SpreadAdjustmentTicks, int32(100))
}

func TestObserveConcurrentUpdatesDontLoseWrites(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Observe(true, 1)
		}()
	}
	wg.Wait()
	require.Less(t, tr.Snapshot().AlphaQ16, MaxAlphaQ16)
}
