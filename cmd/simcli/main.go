// Command simcli drives the pool engine locally: it initializes one pool,
// runs a periodic simulated swap loop against it, and serves the results
// over HTTP/WebSocket. It replaces cmd/quote-service's live-RPC polling
// loop (main.go's flag parsing, .env load, startup banner, signal-driven
// graceful shutdown, and cache.go's ticker-driven periodic refresh) with a
// local, account-model-free driver — there is no upstream Solana node to
// poll, so the "refresh" loop is the engine simulating its own swaps.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"clammhub/pkg/config"
	"clammhub/pkg/events"
	"clammhub/pkg/fee"
	"clammhub/pkg/flow"
	"clammhub/pkg/fx"
	"clammhub/pkg/hub"
	"clammhub/pkg/jit"
	"clammhub/pkg/pool"
	"clammhub/pkg/safety"
)

// identityRateQ64 is a 1:1 HUB redemption rate (fx.Q64 is exactly 1.0 in
// Q64.64), used by handleExitHub since simcli has no live redemption-rate
// oracle feed of its own.
var identityRateQ64 = uint128.FromBig(fx.Q64)

var (
	port         = flag.Int("port", 8080, "HTTP/WebSocket server port")
	swapInterval = flag.Int("swap-interval", 2, "seconds between simulated swaps")
	swapAmount   = flag.Uint64("swap-amount", 1_000_000, "exact-in amount per simulated swap")
	initialTick  = flag.Int("initial-tick", 0, "pool's starting tick")
	tickSpacing  = flag.Int("tick-spacing", 60, "pool tick spacing")
	seedLP       = flag.Uint64("seed-liquidity", 500_000_000, "liquidity minted into the seed full-range position")
)

func main() {
	if err := config.LoadEnv(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}
	flag.Parse()

	*port = config.GetInt("SIMCLI_PORT", *port)
	*swapInterval = config.GetInt("SIMCLI_SWAP_INTERVAL_SECONDS", *swapInterval)
	*swapAmount = config.GetUint64("SIMCLI_SWAP_AMOUNT", *swapAmount)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, err := newEngine(int32(*initialTick), int32(*tickSpacing))
	if err != nil {
		log.Fatalf("failed to initialize pool: %v", err)
	}

	if _, err := eng.seedLiquidity(*seedLP); err != nil {
		log.Fatalf("failed to seed liquidity: %v", err)
	}

	log.Printf("clammhub simcli starting")
	log.Printf("pool id: %s", eng.txn.Pool().ID)
	log.Printf("initial tick: %d, tick spacing: %d", *initialTick, *tickSpacing)
	log.Printf("swap interval: %ds, swap amount: %d", *swapInterval, *swapAmount)

	go eng.runSwapLoop(ctx, time.Duration(*swapInterval)*time.Second, *swapAmount)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", eng.handleHealth)
	mux.HandleFunc("/pool", eng.handlePool)
	mux.HandleFunc("/hub/enter", eng.handleEnterHub)
	mux.HandleFunc("/hub/exit", eng.handleExitHub)
	mux.Handle("/events", eng.hub)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: mux,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown error: %v", err)
		}
		cancel()
	}()

	log.Printf("listening on http://localhost:%d", *port)
	log.Printf("  GET  /health")
	log.Printf("  GET  /pool")
	log.Printf("  POST /hub/enter?amount=<underlying>")
	log.Printf("  POST /hub/exit?amount=<hub>")
	log.Printf("  GET  /events (websocket)")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
	log.Println("server stopped")
}

// engine bundles one pool with the process-wide shared dependencies its
// Swap operation takes as parameters (§9: safety/hub/flow are not
// pool-owned state).
type engine struct {
	txn         *pool.Txn
	safetyCtl   *safety.Controller
	hubOracle   *hub.Oracle
	redemption  *hub.Redemption
	flowTracker *flow.Tracker
	hub         *events.Hub
	slot        atomic.Uint64

	minSqrtPrice, maxSqrtPrice fx.SqrtPriceX64
}

func newEngine(initialTick, tickSpacing int32) (*engine, error) {
	sqrtP, err := fx.SqrtPriceFromTick(initialTick)
	if err != nil {
		return nil, err
	}

	cfg := pool.Config{
		TickSpacing:           tickSpacing,
		TickMinGlobal:         fx.MinTick - (fx.MinTick % tickSpacing),
		TickMaxGlobal:         fx.MaxTick - (fx.MaxTick % tickSpacing),
		BaseFeeBps:            uint32(config.GetInt("SIMCLI_BASE_FEE_BPS", 30)),
		OracleCardinalityNext: config.GetInt("SIMCLI_ORACLE_CARDINALITY", 64),
		FloorBufferTicks:      int32(config.GetInt("SIMCLI_FLOOR_BUFFER_TICKS", 10)),
		FloorCooldownSlots:    config.GetUint64("SIMCLI_FLOOR_COOLDOWN_SLOTS", 5),
		TargetTau0:            config.GetUint64("SIMCLI_TARGET_TAU0", 10_000_000),
		TargetTau1:            config.GetUint64("SIMCLI_TARGET_TAU1", 10_000_000),
		FeeConfig:             fee.DefaultConfig(),
		SplitConfig:           fee.DefaultSplitConfig(),
		JITConfig:             jit.DefaultConfig(),
	}

	poolID := solana.NewWallet().PublicKey()
	token0, token1 := orderedPair(solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	creator := solana.NewWallet().PublicKey()

	p, err := pool.Initialize(poolID, token0, token1, creator, cfg, sqrtP, 0)
	if err != nil {
		return nil, err
	}

	minSqrt, err := fx.SqrtPriceFromTick(cfg.TickMinGlobal)
	if err != nil {
		return nil, err
	}
	maxSqrt, err := fx.SqrtPriceFromTick(cfg.TickMaxGlobal)
	if err != nil {
		return nil, err
	}

	hubOracle := hub.New(hub.DefaultConfig(), 0)
	return &engine{
		txn:          pool.NewTxn(p),
		safetyCtl:    safety.New(safety.DefaultConfig()),
		hubOracle:    hubOracle,
		redemption:   hub.NewRedemption(hubOracle, hub.DefaultConfig()),
		flowTracker:  flow.New(),
		hub:          events.NewHub(),
		minSqrtPrice: minSqrt,
		maxSqrtPrice: maxSqrt,
	}, nil
}

// orderedPair returns a, b in the identifier ordering Initialize requires.
func orderedPair(a, b solana.PublicKey) (solana.PublicKey, solana.PublicKey) {
	if bytes.Compare(a[:], b[:]) < 0 {
		return a, b
	}
	return b, a
}

func (e *engine) seedLiquidity(amount uint64) (pool.LiquidityResult, error) {
	var res pool.LiquidityResult
	owner := solana.NewWallet().PublicKey()
	err := e.txn.Execute(func(p *pool.Pool) error {
		var err error
		res, err = p.AddLiquidity(owner, p.TickMinGlobal, p.TickMaxGlobal, amount, amount*2, amount*2)
		return err
	})
	return res, err
}

// runSwapLoop alternates swap direction every tick, the way
// cache.go's StartPeriodicRefresh re-ran its quote set on a ticker.
func (e *engine) runSwapLoop(ctx context.Context, interval time.Duration, amount uint64) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	zeroForOne := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			slot := e.slot.Add(1)
			res, err := e.simulateSwap(slot, zeroForOne, amount)
			if err != nil {
				log.Printf("swap failed: %v", err)
				zeroForOne = !zeroForOne
				continue
			}
			log.Printf("swap slot=%d in=%d out=%d feeBps=%d tick=%d->%d",
				slot, res.AmountIn, res.AmountOut, res.FeeBps, res.StartTick, res.EndTick)
			e.hub.Publish(events.Event{
				Kind:      events.KindSwap,
				PoolID:    e.txn.Pool().ID.String(),
				Slot:      slot,
				Timestamp: time.Now().Unix(),
				Payload: events.SwapPayload{
					ZeroForOne: zeroForOne,
					AmountIn:   res.AmountIn,
					AmountOut:  res.AmountOut,
					FeeBps:     res.FeeBps,
					StartTick:  res.StartTick,
					EndTick:    res.EndTick,
				},
			})
			zeroForOne = !zeroForOne
		}
	}
}

func (e *engine) simulateSwap(slot uint64, zeroForOne bool, amount uint64) (pool.SwapResult, error) {
	var res pool.SwapResult
	err := e.txn.Execute(func(p *pool.Pool) error {
		limit := e.minSqrtPrice
		if !zeroForOne {
			limit = e.maxSqrtPrice
		}
		var err error
		res, err = p.Swap(pool.SwapParams{
			AmountSpecified:  amount,
			ZeroForOne:       zeroForOne,
			ExactIn:          true,
			SqrtPriceLimit:   limit,
			MaxFeeBps:        10_000,
			GTWAPWindowSlots: 50,
			Slot:             slot,
		}, e.safetyCtl, e.hubOracle, e.flowTracker)
		return err
	})
	return res, err
}

func (e *engine) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"subscribers": e.hub.SubscriberCount(),
	})
}

func (e *engine) handlePool(w http.ResponseWriter, r *http.Request) {
	p := e.txn.Pool()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"pool_id":          p.ID.String(),
		"tick_cur":         p.TickCur,
		"liquidity_active": p.LiquidityActive.String(),
		"phase":            p.Phase,
		"paused":           p.Paused,
	})
}

// handleEnterHub and handleExitHub dispatch `enter_hub`/`exit_hub` (§6):
// neither operation touches a pool's tick store, so they are not Pool
// methods and call hub.Redemption directly, here at the CLI's top-level
// dispatch instead of through pool.Txn.
func (e *engine) handleEnterHub(w http.ResponseWriter, r *http.Request) {
	amount, err := parseAmountParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	minted, err := e.redemption.EnterHub(amount, e.slot.Load())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"minted_hub": minted})
}

func (e *engine) handleExitHub(w http.ResponseWriter, r *http.Request) {
	amount, err := parseAmountParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	redeemed, err := e.redemption.ExitHub(amount, identityRateQ64, e.slot.Load())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"redeemed_underlying": redeemed})
}

func parseAmountParam(r *http.Request) (uint64, error) {
	raw := r.URL.Query().Get("amount")
	if raw == "" {
		return 0, fmt.Errorf("missing amount parameter")
	}
	amount, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount parameter: %w", err)
	}
	return amount, nil
}
