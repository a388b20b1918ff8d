// Package wire encodes a Pool's scalar header fields for host persistence,
// the way the teacher's whirlpool/raydium pool types decode an
// account-fetched byte slice into a struct (whirlpoolPool.go's Decode) —
// generalized here into a round-trip encode/decode pair, since this engine
// owns the record instead of mirroring one fetched read-only off-chain.
// The tick store, oracle ring buffer, floor record, and JIT state are each
// persisted separately (pkg/store's keys.go), so Header only carries Pool's
// scalar fields plus the buffer's scalar totals, not its owned sub-state.
package wire

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"clammhub/pkg/pool"
)

// headerLen is the fixed encoded size of Header: 4 pubkeys (128) + sqrt
// price (16) + tick_cur (4) + liquidity_active (16) + two fee growth
// accumulators (32) + tick_spacing (4) + base_fee_bps (4) + phase (1) +
// paused (1) + tick_min/max_global (8) + buffer's 8 uint64 fields (64) +
// target_tau0/1 (16).
const headerLen = 128 + 16 + 4 + 16 + 32 + 4 + 4 + 1 + 1 + 8 + 64 + 16

// Header is the wire form of a Pool's top-level record.
type Header struct {
	ID      solana.PublicKey
	Token0  solana.PublicKey
	Token1  solana.PublicKey
	Creator solana.PublicKey

	SqrtPriceCur                       uint128.Uint128
	TickCur                            int32
	LiquidityActive                    uint128.Uint128
	FeeGrowthGlobal0, FeeGrowthGlobal1 uint128.Uint128

	TickSpacing   int32
	BaseFeeBps    uint32
	Phase         uint8
	Paused        bool
	TickMinGlobal int32
	TickMaxGlobal int32

	Fees0, Fees1                 uint64
	Tau0, Tau1                   uint64
	TreasuryOwed0, TreasuryOwed1 uint64
	CreatorOwed0, CreatorOwed1   uint64

	TargetTau0, TargetTau1 uint64
}

// FromPool snapshots a Pool's persisted scalar fields into a Header.
func FromPool(p *pool.Pool) Header {
	return Header{
		ID:                p.ID,
		Token0:            p.Token0,
		Token1:            p.Token1,
		Creator:           p.Creator,
		SqrtPriceCur:      p.SqrtPriceCur,
		TickCur:           p.TickCur,
		LiquidityActive:   p.LiquidityActive,
		FeeGrowthGlobal0:  p.FeeGrowthGlobal0,
		FeeGrowthGlobal1:  p.FeeGrowthGlobal1,
		TickSpacing:       p.TickSpacing,
		BaseFeeBps:        p.BaseFeeBps,
		Phase:             uint8(p.Phase),
		Paused:            p.Paused,
		TickMinGlobal:     p.TickMinGlobal,
		TickMaxGlobal:     p.TickMaxGlobal,
		Fees0:             p.Buffer.Fees0,
		Fees1:             p.Buffer.Fees1,
		Tau0:              p.Buffer.Tau0,
		Tau1:              p.Buffer.Tau1,
		TreasuryOwed0:     p.Buffer.TreasuryOwed0,
		TreasuryOwed1:     p.Buffer.TreasuryOwed1,
		CreatorOwed0:      p.Buffer.CreatorOwed0,
		CreatorOwed1:      p.Buffer.CreatorOwed1,
		TargetTau0:        p.TargetTau0,
		TargetTau1:        p.TargetTau1,
	}
}

// Encode serializes h with gagliardetto/binary's little-endian binary
// encoder, the same library the teacher's pool types decode account data
// with.
func Encode(h Header) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)

	fields := []any{
		h.ID, h.Token0, h.Token1, h.Creator,
		h.SqrtPriceCur, h.TickCur, h.LiquidityActive,
		h.FeeGrowthGlobal0, h.FeeGrowthGlobal1,
		h.TickSpacing, h.BaseFeeBps, h.Phase, h.Paused,
		h.TickMinGlobal, h.TickMaxGlobal,
		h.Fees0, h.Fees1, h.Tau0, h.Tau1,
		h.TreasuryOwed0, h.TreasuryOwed1, h.CreatorOwed0, h.CreatorOwed1,
		h.TargetTau0, h.TargetTau1,
	}
	for _, f := range fields {
		if err := enc.Encode(f); err != nil {
			return nil, fmt.Errorf("wire: encode header: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Decode parses a Header out of data produced by Encode.
func Decode(data []byte) (Header, error) {
	if len(data) < headerLen {
		return Header{}, fmt.Errorf("wire: short header: want at least %d bytes, got %d", headerLen, len(data))
	}

	dec := bin.NewBinDecoder(data)
	var h Header
	targets := []any{
		&h.ID, &h.Token0, &h.Token1, &h.Creator,
		&h.SqrtPriceCur, &h.TickCur, &h.LiquidityActive,
		&h.FeeGrowthGlobal0, &h.FeeGrowthGlobal1,
		&h.TickSpacing, &h.BaseFeeBps, &h.Phase, &h.Paused,
		&h.TickMinGlobal, &h.TickMaxGlobal,
		&h.Fees0, &h.Fees1, &h.Tau0, &h.Tau1,
		&h.TreasuryOwed0, &h.TreasuryOwed1, &h.CreatorOwed0, &h.CreatorOwed1,
		&h.TargetTau0, &h.TargetTau1,
	}
	for _, t := range targets {
		if err := dec.Decode(t); err != nil {
			return Header{}, fmt.Errorf("wire: decode header: %w", err)
		}
	}
	return h, nil
}

// ApplyTo writes h's fields onto an already-constructed Pool. It does not
// touch Ticks/Oracle/Floor/JIT or FeeConfig/SplitConfig/JITConfig — those
// are rebuilt from their own separately persisted records and from
// governance config, not from Header.
func (h Header) ApplyTo(p *pool.Pool) {
	p.ID, p.Token0, p.Token1, p.Creator = h.ID, h.Token0, h.Token1, h.Creator
	p.SqrtPriceCur = h.SqrtPriceCur
	p.TickCur = h.TickCur
	p.LiquidityActive = h.LiquidityActive
	p.FeeGrowthGlobal0, p.FeeGrowthGlobal1 = h.FeeGrowthGlobal0, h.FeeGrowthGlobal1
	p.TickSpacing = h.TickSpacing
	p.BaseFeeBps = h.BaseFeeBps
	p.Phase = pool.Phase(h.Phase)
	p.Paused = h.Paused
	p.TickMinGlobal, p.TickMaxGlobal = h.TickMinGlobal, h.TickMaxGlobal
	p.Buffer = pool.Buffer{
		Fees0: h.Fees0, Fees1: h.Fees1,
		Tau0: h.Tau0, Tau1: h.Tau1,
		TreasuryOwed0: h.TreasuryOwed0, TreasuryOwed1: h.TreasuryOwed1,
		CreatorOwed0: h.CreatorOwed0, CreatorOwed1: h.CreatorOwed1,
	}
	p.TargetTau0, p.TargetTau1 = h.TargetTau0, h.TargetTau1
}
