package wire

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"clammhub/pkg/fee"
	"clammhub/pkg/fx"
	"clammhub/pkg/jit"
	"clammhub/pkg/pool"
)

func buildTestPool(t *testing.T) *pool.Pool {
	t.Helper()
	sqrtP, err := fx.SqrtPriceFromTick(120)
	require.NoError(t, err)
	cfg := pool.Config{
		TickSpacing:           60,
		TickMinGlobal:         -887_220,
		TickMaxGlobal:         887_220,
		BaseFeeBps:            30,
		OracleCardinalityNext: 16,
		FloorBufferTicks:      10,
		FloorCooldownSlots:    1,
		TargetTau0:            1_000_000,
		TargetTau1:            1_000_000,
		FeeConfig:             fee.DefaultConfig(),
		SplitConfig:           fee.DefaultSplitConfig(),
		JITConfig:             jit.DefaultConfig(),
	}
	p, err := pool.Initialize(solana.PublicKey{9}, solana.PublicKey{}, solana.PublicKey{1}, solana.PublicKey{7}, cfg, sqrtP, 0)
	require.NoError(t, err)
	p.Paused = true
	p.Phase = pool.SteadyState
	p.LiquidityActive = uint128.From64(42_000)
	p.Buffer.Fees0, p.Buffer.Tau0 = 500, 500
	p.Buffer.TreasuryOwed1, p.Buffer.CreatorOwed1 = 12, 3
	return p
}

func TestHeaderRoundTripsThroughEncodeDecode(t *testing.T) {
	p := buildTestPool(t)
	h := FromPool(p)

	data, err := Encode(h)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, h, decoded)
}

func TestDecodeRejectsShortData(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestApplyToRestoresScalarFields(t *testing.T) {
	p := buildTestPool(t)
	h := FromPool(p)

	data, err := Encode(h)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)

	fresh := &pool.Pool{}
	decoded.ApplyTo(fresh)

	require.Equal(t, p.ID, fresh.ID)
	require.Equal(t, p.Token0, fresh.Token0)
	require.Equal(t, p.Token1, fresh.Token1)
	require.Equal(t, p.Creator, fresh.Creator)
	require.Equal(t, p.SqrtPriceCur, fresh.SqrtPriceCur)
	require.Equal(t, p.TickCur, fresh.TickCur)
	require.True(t, p.LiquidityActive.Equals(fresh.LiquidityActive))
	require.Equal(t, p.Phase, fresh.Phase)
	require.Equal(t, p.Paused, fresh.Paused)
	require.Equal(t, p.Buffer, fresh.Buffer)
	require.Equal(t, p.TargetTau0, fresh.TargetTau0)
	require.Equal(t, p.TargetTau1, fresh.TargetTau1)
}
