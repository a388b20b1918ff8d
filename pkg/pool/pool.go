// Package pool implements the Pool entity and its six pool-level external
// operations (§6; enter_hub/exit_hub live in pkg/hub): the owning unit for a tick store, GTWAP, floor ratchet,
// JIT state, and fee buffer, mutated only under its own transaction lock
// (pkg/pool/txn.go).
package pool

import (
	"bytes"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"clammhub/pkg/coreerr"
	"clammhub/pkg/fee"
	"clammhub/pkg/floor"
	"clammhub/pkg/fx"
	"clammhub/pkg/jit"
	"clammhub/pkg/oracle"
	"clammhub/pkg/tickstore"
)

type Phase int

const (
	PriceDiscovery Phase = iota
	SteadyState
)

// Buffer is the per-pool fee reservoir (τ) funding JIT and floor
// maintenance, plus the running fee totals owed to recipients the engine
// does not hold live token accounts for.
type Buffer struct {
	Fees0, Fees1 uint64
	Tau0, Tau1   uint64

	TreasuryOwed0, TreasuryOwed1 uint64
	CreatorOwed0, CreatorOwed1   uint64
}

// HealthBps reports the buffer's health as a bps fraction of its target
// (tau), the circuit-breaker input JIT's entry guards read (§4.6: "budgets
// and circuit breaker (buffer health < 30%) honored").
func (b Buffer) HealthBps(targetTau0, targetTau1 uint64) uint64 {
	if targetTau0 == 0 && targetTau1 == 0 {
		return 10_000
	}
	num := b.Tau0 + b.Tau1
	den := targetTau0 + targetTau1
	if den == 0 {
		return 10_000
	}
	bps := num * 10_000 / den
	if bps > 10_000 {
		bps = 10_000
	}
	return bps
}

// Config bundles every governance-tunable parameter initialize_pool needs
// to construct a Pool's sub-state.
type Config struct {
	TickSpacing           int32
	TickMinGlobal         int32
	TickMaxGlobal         int32
	BaseFeeBps            uint32
	OracleCardinalityNext int
	FloorBufferTicks      int32
	FloorCooldownSlots    uint64
	TargetTau0, TargetTau1 uint64
	FeeConfig             fee.Config
	SplitConfig           fee.SplitConfig
	JITConfig             jit.Config
}

// Pool is one token-pair's owned, mutable state.
type Pool struct {
	ID      solana.PublicKey
	Token0  solana.PublicKey
	Token1  solana.PublicKey
	Creator solana.PublicKey

	SqrtPriceCur                       fx.SqrtPriceX64
	TickCur                            int32
	LiquidityActive                    uint128.Uint128
	FeeGrowthGlobal0, FeeGrowthGlobal1 uint128.Uint128

	TickSpacing   int32
	BaseFeeBps    uint32
	Phase         Phase
	Paused        bool
	TickMinGlobal int32
	TickMaxGlobal int32

	Buffer Buffer
	Ticks  *tickstore.Store
	Oracle *oracle.GTWAP
	Floor  *floor.Floor
	JIT    *jit.State

	FeeConfig   fee.Config
	SplitConfig fee.SplitConfig
	JITConfig   jit.Config

	TargetTau0, TargetTau1 uint64
}

// Initialize implements `initialize_pool` (§6): token_0 must precede
// token_1 by identifier ordering, and exactly one side must be HUB — that
// pairing is enforced by the caller supplying token0/token1 already ordered
// and HUB-paired; this constructor only checks the ordering invariant.
func Initialize(id, token0, token1, creator solana.PublicKey, cfg Config, initialSqrtPrice fx.SqrtPriceX64, initSlot uint64) (*Pool, error) {
	if bytes.Compare(token0[:], token1[:]) >= 0 {
		return nil, coreerr.ErrUnsupportedPair
	}
	if cfg.TickSpacing <= 0 || cfg.TickMinGlobal%cfg.TickSpacing != 0 || cfg.TickMaxGlobal%cfg.TickSpacing != 0 {
		return nil, coreerr.ErrInvalidTickRange
	}
	tickCur, err := fx.TickFromSqrtPrice(initialSqrtPrice)
	if err != nil {
		return nil, err
	}

	return &Pool{
		ID:               id,
		Token0:           token0,
		Token1:           token1,
		Creator:          creator,
		SqrtPriceCur:     initialSqrtPrice,
		TickCur:          tickCur,
		LiquidityActive:  uint128.Zero,
		FeeGrowthGlobal0: uint128.Zero,
		FeeGrowthGlobal1: uint128.Zero,
		TickSpacing:      cfg.TickSpacing,
		BaseFeeBps:       cfg.BaseFeeBps,
		Phase:            PriceDiscovery,
		TickMinGlobal:    cfg.TickMinGlobal,
		TickMaxGlobal:    cfg.TickMaxGlobal,
		Ticks:            tickstore.New(cfg.TickSpacing, cfg.TickMinGlobal, cfg.TickMaxGlobal),
		Oracle:           oracle.New(tickCur, initSlot, cfg.OracleCardinalityNext),
		Floor:            floor.New(cfg.TickMinGlobal, cfg.FloorBufferTicks, cfg.FloorCooldownSlots),
		JIT:              jit.New(cfg.JITConfig),
		FeeConfig:        cfg.FeeConfig,
		SplitConfig:      cfg.SplitConfig,
		JITConfig:        cfg.JITConfig,
		TargetTau0:       cfg.TargetTau0,
		TargetTau1:       cfg.TargetTau1,
	}, nil
}

// Clone deep-copies every piece of mutable sub-state so a failed operation
// can be rolled back to the pre-operation snapshot (§7).
func (p *Pool) Clone() *Pool {
	out := *p
	out.Ticks = p.Ticks.Clone()
	out.Oracle = p.Oracle.Clone()
	out.Floor = p.Floor.Clone()
	out.JIT = p.JIT.Clone()
	return &out
}

// restoreFrom overwrites p's mutable fields with snapshot's, used to commit
// a successful clone back into the live pool (txn.go).
func (p *Pool) restoreFrom(snapshot *Pool) {
	*p = *snapshot
}
