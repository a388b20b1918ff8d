package tickstore

import (
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// PositionKey identifies a position by owner and the tick range it covers.
type PositionKey struct {
	Owner     solana.PublicKey
	TickLower int32
	TickUpper int32
}

// Position tracks one owner's liquidity within [TickLower, TickUpper) and the
// fees it has accrued but not yet collected.
type Position struct {
	Liquidity             uint128.Uint128
	FeeGrowthInside0Last  uint128.Uint128
	FeeGrowthInside1Last  uint128.Uint128
	TokensOwed0           uint64
	TokensOwed1           uint64
}

func (p *Position) empty() bool {
	return p.Liquidity.IsZero() && p.TokensOwed0 == 0 && p.TokensOwed1 == 0
}
