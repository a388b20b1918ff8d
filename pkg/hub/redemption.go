package hub

import (
	"math/big"

	"lukechampine.com/uint128"

	"clammhub/pkg/coreerr"
	"clammhub/pkg/fx"
)

// Redemption tracks the per-slot mint/redeem budgets against one Oracle.
type Redemption struct {
	oracle *Oracle
	cfg    Config

	mintSlot     uint64
	mintThisSlot uint64

	redeemSlot     uint64
	redeemThisSlot uint64
}

func NewRedemption(oracle *Oracle, cfg Config) *Redemption {
	return &Redemption{oracle: oracle, cfg: cfg}
}

// EnterHub mints HUB 1:1 against underlying, subject to mint_per_slot_cap.
// No oracle dependency (§4.9).
func (r *Redemption) EnterHub(amountUnderlying, slot uint64) (uint64, error) {
	if slot != r.mintSlot {
		r.mintSlot = slot
		r.mintThisSlot = 0
	}
	if r.mintThisSlot+amountUnderlying > r.cfg.MintPerSlotCap {
		return 0, coreerr.ErrRateLimited
	}
	r.mintThisSlot += amountUnderlying
	return amountUnderlying, nil
}

// ExitHub redeems amount_hub at rate_conservative = rate_q64 * (1 -
// buffer_bps/10_000), requiring HubOracle.Healthy and staying within
// redeem_per_slot_cap.
func (r *Redemption) ExitHub(amountHub uint64, rateQ64 uint128.Uint128, slot uint64) (uint64, error) {
	if r.oracle.Status() != Healthy {
		return 0, coreerr.ErrHubNotHealthy
	}
	if slot != r.redeemSlot {
		r.redeemSlot = slot
		r.redeemThisSlot = 0
	}
	if r.redeemThisSlot+amountHub > r.cfg.RedeemPerSlotCap {
		return 0, coreerr.ErrRateLimited
	}

	rateConservative := fx.Q64Mul(rateQ64, haircutQ64(r.cfg.BufferBps))
	amountUnderlying, err := mulQ64ToU64(amountHub, rateConservative)
	if err != nil {
		return 0, err
	}

	r.redeemThisSlot += amountHub
	return amountUnderlying, nil
}

// haircutQ64 encodes (1 - bufferBps/10_000) as a Q64.64 fixed-point value.
func haircutQ64(bufferBps uint64) uint128.Uint128 {
	num := new(big.Int).SetUint64(10_000 - bufferBps)
	num.Lsh(num, 64)
	num.Quo(num, big.NewInt(10_000))
	return uint128.FromBig(num)
}

// mulQ64ToU64 computes floor(amount * qvalue / 2^64) and checks it still
// fits a uint64, returning ErrAmountOverflow otherwise.
func mulQ64ToU64(amount uint64, qvalue uint128.Uint128) (uint64, error) {
	prod := new(big.Int).Mul(new(big.Int).SetUint64(amount), qvalue.Big())
	prod.Rsh(prod, 64)
	if prod.Sign() < 0 || prod.BitLen() > 64 {
		return 0, coreerr.ErrAmountOverflow
	}
	return prod.Uint64(), nil
}
