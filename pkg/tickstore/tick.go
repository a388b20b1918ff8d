// Package tickstore implements the per-pool tick/position ledger and its
// bitmap index (§4.2): sparse tick storage, liquidity crossing, and position
// fee accounting.
package tickstore

import (
	"cosmossdk.io/math"
	"lukechampine.com/uint128"
)

// Tick holds the liquidity and fee-growth state attached to one price point.
// A tick with LiquidityGross == 0 is logically uninitialized and is removed
// from the store entirely; its bitmap bit is cleared in the same step.
type Tick struct {
	Index             int32
	LiquidityNet      math.Int // signed; sign flips the direction crossing applies
	LiquidityGross    uint128.Uint128
	FeeGrowthOutside0 uint128.Uint128
	FeeGrowthOutside1 uint128.Uint128
}

func newTick(index int32) *Tick {
	return &Tick{
		Index:          index,
		LiquidityNet:   math.ZeroInt(),
		LiquidityGross: uint128.Zero,
	}
}

func (t *Tick) initialized() bool {
	return !t.LiquidityGross.IsZero()
}
