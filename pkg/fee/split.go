package fee

// SplitConfig weights the fee split in bps of the total fee; weights must
// sum to 10_000 when a creator recipient exists.
type SplitConfig struct {
	LPBps         uint32
	PoolReserveBps uint32
	BufferBps     uint32
	TreasuryBps   uint32
	CreatorBps    uint32
}

func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		LPBps:          6_000,
		PoolReserveBps: 1_500,
		BufferBps:      1_500,
		TreasuryBps:    800,
		CreatorBps:     200,
	}
}

// Split is the resolved per-recipient share of one swap's fee_paid.
type Split struct {
	LP          uint64
	PoolReserve uint64
	Buffer      uint64
	Treasury    uint64
	Creator     uint64
}

// Resolve splits feePaid across recipients. When hasCreator is false the
// creator's weight folds into PoolReserve instead of being dropped. Integer
// division remainders are assigned to PoolReserve — the rounding tie-break
// favors protocol solvency over any individual recipient (§4.7).
func Resolve(feePaid uint64, cfg SplitConfig, hasCreator bool) Split {
	poolReserveBps := cfg.PoolReserveBps
	creatorBps := cfg.CreatorBps
	if !hasCreator {
		poolReserveBps += creatorBps
		creatorBps = 0
	}

	lp := feePaid * uint64(cfg.LPBps) / 10_000
	buf := feePaid * uint64(cfg.BufferBps) / 10_000
	treasury := feePaid * uint64(cfg.TreasuryBps) / 10_000
	creator := feePaid * uint64(creatorBps) / 10_000
	poolReserve := feePaid * uint64(poolReserveBps) / 10_000

	distributed := lp + buf + treasury + creator + poolReserve
	poolReserve += feePaid - distributed

	return Split{
		LP:          lp,
		PoolReserve: poolReserve,
		Buffer:      buf,
		Treasury:    treasury,
		Creator:     creator,
	}
}
