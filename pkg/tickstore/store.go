package tickstore

import (
	"math/big"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"clammhub/pkg/coreerr"
	"clammhub/pkg/fx"
)

// Store is the per-pool tick ledger and its bitmap index. It owns no
// concurrency control of its own: the owning pool's transaction lock
// (pkg/pool) serializes all access.
type Store struct {
	tickSpacing    int32
	tickMinGlobal  int32
	tickMaxGlobal  int32
	ticks          map[int32]*Tick
	bitmap         *bitmap
	positions      map[PositionKey]*Position
}

func New(tickSpacing, tickMinGlobal, tickMaxGlobal int32) *Store {
	return &Store{
		tickSpacing:   tickSpacing,
		tickMinGlobal: tickMinGlobal,
		tickMaxGlobal: tickMaxGlobal,
		ticks:         make(map[int32]*Tick),
		bitmap:        newBitmap(),
		positions:     make(map[PositionKey]*Position),
	}
}

// Clone deep-copies the store so a failed operation can be rolled back by
// discarding the clone and keeping the original (§7 transaction-scoped
// working copy).
func (s *Store) Clone() *Store {
	out := &Store{
		tickSpacing:   s.tickSpacing,
		tickMinGlobal: s.tickMinGlobal,
		tickMaxGlobal: s.tickMaxGlobal,
		ticks:         make(map[int32]*Tick, len(s.ticks)),
		bitmap:        s.bitmap.clone(),
		positions:     make(map[PositionKey]*Position, len(s.positions)),
	}
	for k, v := range s.ticks {
		tCopy := *v
		out.ticks[k] = &tCopy
	}
	for k, v := range s.positions {
		pCopy := *v
		out.positions[k] = &pCopy
	}
	return out
}

func (s *Store) alignedAndBounded(tick int32) bool {
	return tick%s.tickSpacing == 0 && tick >= s.tickMinGlobal && tick <= s.tickMaxGlobal
}

// GetTick returns the tick at index, or nil if uninitialized.
func (s *Store) GetTick(index int32) *Tick {
	return s.ticks[index]
}

func (s *Store) GetPosition(key PositionKey) *Position {
	return s.positions[key]
}

// NextInitializedTick finds the next initialized tick at or below `from`
// (lte) or strictly above it (!lte), `from` being a real tick, bounded
// by the store's global range. lte selects the decreasing (one_to_zero's
// reverse / zero_to_one's forward) direction.
func (s *Store) NextInitializedTick(from int32, lte bool) (int32, bool) {
	compressedFrom := compress(from, s.tickSpacing)
	minArray := floorDiv(compress(s.tickMinGlobal, s.tickSpacing), TicksPerArray)
	maxArray := floorDiv(compress(s.tickMaxGlobal, s.tickSpacing), TicksPerArray)

	compressed, ok := s.bitmap.nextInitialized(compressedFrom, lte, minArray, maxArray)
	if !ok {
		return 0, false
	}
	return compressed * s.tickSpacing, true
}

// UpdatePosition applies Δliquidity to the position keyed by
// (owner, tickLower, tickUpper), adjusting both boundary ticks' gross/net
// liquidity and flipping bitmap bits on 0<->positive transitions (§4.2).
func (s *Store) UpdatePosition(
	owner solana.PublicKey,
	tickLower, tickUpper int32,
	deltaLiquidity math.Int,
	tickCur int32,
	feeGrowthGlobal0, feeGrowthGlobal1 uint128.Uint128,
) (*Position, error) {
	if tickLower >= tickUpper || !s.alignedAndBounded(tickLower) || !s.alignedAndBounded(tickUpper) {
		return nil, coreerr.ErrInvalidTickRange
	}

	if err := s.updateTick(tickLower, deltaLiquidity, false); err != nil {
		return nil, err
	}
	if err := s.updateTick(tickUpper, deltaLiquidity, true); err != nil {
		// roll back the lower-tick mutation so the store never persists a
		// half-applied position update
		s.updateTick(tickLower, deltaLiquidity.Neg(), false)
		return nil, err
	}

	key := PositionKey{Owner: owner, TickLower: tickLower, TickUpper: tickUpper}
	pos, ok := s.positions[key]
	if !ok {
		pos = &Position{Liquidity: uint128.Zero}
		s.positions[key] = pos
	}

	feeGrowthInside0, feeGrowthInside1 := s.feeGrowthInside(tickLower, tickUpper, tickCur, feeGrowthGlobal0, feeGrowthGlobal1)

	owed0 := accruedFees(pos.Liquidity, feeGrowthInside0, pos.FeeGrowthInside0Last)
	owed1 := accruedFees(pos.Liquidity, feeGrowthInside1, pos.FeeGrowthInside1Last)
	pos.TokensOwed0 += owed0
	pos.TokensOwed1 += owed1
	pos.FeeGrowthInside0Last = feeGrowthInside0
	pos.FeeGrowthInside1Last = feeGrowthInside1

	newLiquidity, err := addSignedToU128(pos.Liquidity, deltaLiquidity)
	if err != nil {
		return nil, err
	}
	pos.Liquidity = newLiquidity

	if pos.empty() {
		delete(s.positions, key)
		return &Position{}, nil
	}
	return pos, nil
}

// updateTick adjusts one boundary tick's liquidity_gross/liquidity_net and
// flips its bitmap bit when liquidity_gross crosses zero. upper indicates
// whether this is the position's upper bound: delta is added to
// liquidity_net at the upper bound and subtracted at the lower bound, the
// sign convention CrossTick relies on.
func (s *Store) updateTick(index int32, delta math.Int, upper bool) error {
	t := s.ticks[index]
	wasInitialized := t != nil && t.initialized()
	if t == nil {
		t = newTick(index)
	}

	newGross, err := addSignedToU128(t.LiquidityGross, delta)
	if err != nil {
		return err
	}

	netDelta := delta
	if !upper {
		netDelta = delta.Neg()
	}
	newNet := t.LiquidityNet.Add(netDelta)

	if newGross.Cmp(uint128.FromBig(new(big.Int).Abs(newNet.BigInt()))) < 0 {
		return coreerr.ErrLiquidityOverflow
	}

	t.LiquidityGross = newGross
	t.LiquidityNet = newNet

	nowInitialized := t.initialized()
	if nowInitialized {
		s.ticks[index] = t
	} else {
		delete(s.ticks, index)
	}
	if wasInitialized != nowInitialized {
		s.bitmap.flip(index, s.tickSpacing)
	}
	return nil
}

// CrossTick is invoked by the swap engine when it crosses an initialized
// tick: it adjusts liquidity_active by liquidity_net (subtracting when
// moving low->high, adding when moving high->low) and flips the tick's
// fee_growth_outside fields against the current globals.
func CrossTick(t *Tick, liquidityActive uint128.Uint128, movingLowToHigh bool, feeGrowthGlobal0, feeGrowthGlobal1 uint128.Uint128) (uint128.Uint128, error) {
	net := t.LiquidityNet
	if movingLowToHigh {
		net = net.Neg()
	}
	next, err := addSignedToU128(liquidityActive, net)
	if err != nil {
		return uint128.Uint128{}, err
	}

	t.FeeGrowthOutside0 = subMod128(feeGrowthGlobal0, t.FeeGrowthOutside0)
	t.FeeGrowthOutside1 = subMod128(feeGrowthGlobal1, t.FeeGrowthOutside1)

	return next, nil
}

// CollectFees zeros a position's accrued fee balances and returns the
// amounts released to the caller's wallet accounts.
func CollectFees(pos *Position) (owed0, owed1 uint64) {
	owed0, owed1 = pos.TokensOwed0, pos.TokensOwed1
	pos.TokensOwed0, pos.TokensOwed1 = 0, 0
	return
}

func (s *Store) feeGrowthInside(tickLower, tickUpper, tickCur int32, feeGrowthGlobal0, feeGrowthGlobal1 uint128.Uint128) (uint128.Uint128, uint128.Uint128) {
	lower := s.ticks[tickLower]
	upper := s.ticks[tickUpper]

	var lowerOutside0, lowerOutside1, upperOutside0, upperOutside1 uint128.Uint128
	if lower != nil {
		lowerOutside0, lowerOutside1 = lower.FeeGrowthOutside0, lower.FeeGrowthOutside1
	}
	if upper != nil {
		upperOutside0, upperOutside1 = upper.FeeGrowthOutside0, upper.FeeGrowthOutside1
	}

	var below0, below1 uint128.Uint128
	if tickCur >= tickLower {
		below0, below1 = lowerOutside0, lowerOutside1
	} else {
		below0 = subMod128(feeGrowthGlobal0, lowerOutside0)
		below1 = subMod128(feeGrowthGlobal1, lowerOutside1)
	}

	var above0, above1 uint128.Uint128
	if tickCur < tickUpper {
		above0, above1 = upperOutside0, upperOutside1
	} else {
		above0 = subMod128(feeGrowthGlobal0, upperOutside0)
		above1 = subMod128(feeGrowthGlobal1, upperOutside1)
	}

	inside0 := subMod128(subMod128(feeGrowthGlobal0, below0), above0)
	inside1 := subMod128(subMod128(feeGrowthGlobal1, below1), above1)
	return inside0, inside1
}

// accruedFees computes liquidity * (feeGrowthInsideNow - feeGrowthInsideLast)
// / 2^128, wrapping mod 2^128 per the standard fee-growth accumulator model.
func accruedFees(liquidity, feeGrowthInsideNow, feeGrowthInsideLast uint128.Uint128) uint64 {
	if liquidity.IsZero() {
		return 0
	}
	delta := subMod128(feeGrowthInsideNow, feeGrowthInsideLast)
	prod := new(big.Int).Mul(liquidity.Big(), delta.Big())
	owed := new(big.Int).Rsh(prod, 128)
	if owed.BitLen() > 64 {
		return ^uint64(0) // clamp; a realistic pool's fee growth never approaches this
	}
	return owed.Uint64()
}

func subMod128(a, b uint128.Uint128) uint128.Uint128 {
	d := new(big.Int).Sub(a.Big(), b.Big())
	d.Mod(d, fx.Q128)
	return uint128.FromBig(d)
}

// addSignedToU128 adds a signed delta to an unsigned Q-scale accumulator,
// failing with LiquidityOverflow on overflow or underflow below zero.
func addSignedToU128(base uint128.Uint128, delta math.Int) (uint128.Uint128, error) {
	sum := new(big.Int).Add(base.Big(), delta.BigInt())
	if sum.Sign() < 0 || sum.BitLen() > 128 {
		return uint128.Uint128{}, coreerr.ErrLiquidityOverflow
	}
	return uint128.FromBig(sum), nil
}
