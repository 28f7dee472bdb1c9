// Package trader implements the autonomous trading agents. Each trader runs
// its own loop: sleep a randomized interval, pick a random stock, decide,
// act on its own portfolio, and report the outcome to the shared counters.
package trader

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mhabib/tradefloor/internal/journal"
	"github.com/mhabib/tradefloor/internal/market"
	"github.com/mhabib/tradefloor/internal/portfolio"
	"github.com/mhabib/tradefloor/internal/stats"
)

// ErrNotIdle is returned by Start when the trader already ran.
var ErrNotIdle = errors.New("trader is not idle")

// State is the trader lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateTrading
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTrading:
		return "trading"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type atomicState struct{ v atomic.Int32 }

func (a *atomicState) Load() State   { return State(a.v.Load()) }
func (a *atomicState) Store(s State) { a.v.Store(int32(s)) }
func (a *atomicState) CompareAndSwap(old, next State) bool {
	return a.v.CompareAndSwap(int32(old), int32(next))
}

// Config holds trader loop settings.
type Config struct {
	// MinWait and MaxWait bound the randomized sleep between decisions.
	MinWait time.Duration
	MaxWait time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MinWait: 3 * time.Second,
		MaxWait: 8 * time.Second,
	}
}

// Trader is one autonomous trading agent. It owns its portfolio exclusively
// and shares the registry and counters with every other agent.
type Trader struct {
	name     string
	cfg      Config
	pf       *portfolio.Portfolio
	registry *market.Registry
	counter  *stats.TradeCounter
	events   *journal.EventBuffer // optional, nil disables the event stream
	rng      *rand.Rand
	risk     float64
	logger   *slog.Logger

	state atomicState

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a trader with initialCash. The trader's risk tolerance is
// drawn once from [0.3, 0.7) using its own random source; the same source
// later drives its decision loop, so it must not be shared with other agents.
func New(
	name string,
	initialCash float64,
	registry *market.Registry,
	counter *stats.TradeCounter,
	cfg Config,
	rng *rand.Rand,
	events *journal.EventBuffer,
	logger *slog.Logger,
) (*Trader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinWait <= 0 {
		cfg.MinWait = DefaultConfig().MinWait
	}
	if cfg.MaxWait < cfg.MinWait {
		cfg.MaxWait = cfg.MinWait
	}

	pf, err := portfolio.New(name, initialCash)
	if err != nil {
		return nil, err
	}

	t := &Trader{
		name:     name,
		cfg:      cfg,
		pf:       pf,
		registry: registry,
		counter:  counter,
		events:   events,
		rng:      rng,
		risk:     0.3 + rng.Float64()*0.4,
		logger:   logger.With("trader", name),
	}

	t.logger.Info("trader joined",
		"cash", initialCash,
		"risk_tolerance", t.risk,
	)
	return t, nil
}

// Name returns the trader's name.
func (t *Trader) Name() string { return t.name }

// Portfolio returns the trader's portfolio for read-only queries.
func (t *Trader) Portfolio() *portfolio.Portfolio { return t.pf }

// RiskTolerance returns the fixed risk tolerance drawn at creation.
func (t *Trader) RiskTolerance() float64 { return t.risk }

// State returns the current lifecycle state.
func (t *Trader) State() State { return t.state.Load() }

// Start begins the trading loop. Fails with ErrNotIdle if the trader has
// already been started or stopped.
func (t *Trader) Start(ctx context.Context) error {
	if !t.state.CompareAndSwap(StateIdle, StateTrading) {
		return ErrNotIdle
	}

	t.ctx, t.cancel = context.WithCancel(ctx)

	t.wg.Add(1)
	go t.run()

	t.logger.Info("trader started")
	return nil
}

// Stop ends the trading loop, waking any blocked sleep, and waits until the
// loop exits or ctx expires. A timeout is best-effort stop, not a failure.
func (t *Trader) Stop(ctx context.Context) error {
	t.state.Store(StateStopped)
	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("trader stopped")
		return nil
	case <-ctx.Done():
		t.logger.Warn("trader stop timed out")
		return ctx.Err()
	}
}

// run is the trading loop. It exits as soon as it observes either its own
// stop signal or the market closed, and never starts a new trade attempt
// after observing either.
func (t *Trader) run() {
	defer t.wg.Done()
	defer t.state.Store(StateStopped)

	for {
		timer := time.NewTimer(t.nextWait())
		select {
		case <-t.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if !t.registry.IsOpen() {
			t.logger.Info("market closed, trader exiting")
			return
		}

		t.tradeOnce()
	}
}

// nextWait draws a sleep uniformly from [MinWait, MaxWait].
func (t *Trader) nextWait() time.Duration {
	spread := int64(t.cfg.MaxWait - t.cfg.MinWait)
	if spread <= 0 {
		return t.cfg.MinWait
	}
	return t.cfg.MinWait + time.Duration(t.rng.Int63n(spread+1))
}

// tradeOnce picks a random stock, decides, and applies the action.
func (t *Trader) tradeOnce() {
	s, err := t.registry.RandomPick(t.rng)
	if err != nil {
		t.logger.Debug("nothing to trade", "err", err)
		return
	}

	symbol := s.Symbol()
	price := s.Price()
	pct := s.PercentChange()

	action := decide(t.rng, pct, price, t.pf.CashBalance(), t.pf.QuantityOf(symbol), t.risk)

	switch action {
	case ActionBuy:
		t.attemptBuy(symbol, price, pct)
	case ActionSell:
		t.attemptSell(symbol, price)
	default:
		t.logger.Debug("hold", "symbol", symbol, "price", price)
	}
}

// attemptBuy sizes and executes a buy. A buy that cannot afford even one
// share counts as a failed trade.
func (t *Trader) attemptBuy(symbol string, price, pct float64) {
	qty := buyQuantity(t.pf.CashBalance(), price, t.risk, pct)
	if qty == 0 {
		t.recordOutcome(symbol, journal.SideBuy, 0, price, false)
		return
	}

	ok, err := t.pf.Buy(symbol, qty, price)
	if err != nil {
		t.logger.Error("buy rejected", "symbol", symbol, "quantity", qty, "err", err)
		return
	}
	t.recordOutcome(symbol, journal.SideBuy, qty, price, ok)
}

// attemptSell sizes and executes a sell. A sell with no current holding
// counts as a failed trade.
func (t *Trader) attemptSell(symbol string, price float64) {
	holding := t.pf.QuantityOf(symbol)
	if holding == 0 {
		t.recordOutcome(symbol, journal.SideSell, 0, price, false)
		return
	}

	qty := sellQuantity(t.rng, holding)
	ok, err := t.pf.Sell(symbol, qty, price)
	if err != nil {
		t.logger.Error("sell rejected", "symbol", symbol, "quantity", qty, "err", err)
		return
	}
	t.recordOutcome(symbol, journal.SideSell, qty, price, ok)
}

// recordOutcome reports a trade attempt to the shared counters and, when
// event streaming is enabled, to the journal buffer.
func (t *Trader) recordOutcome(symbol string, side journal.Side, qty int, price float64, ok bool) {
	if ok {
		t.counter.RecordSuccess()
	} else {
		t.counter.RecordFailure()
	}

	if t.events != nil {
		t.events.Publish(journal.NewTradeEvent(t.name, symbol, side, qty, price, ok))
	}

	t.logger.Debug("trade attempt",
		"symbol", symbol,
		"side", side,
		"quantity", qty,
		"price", price,
		"success", ok,
		"cash", t.pf.CashBalance(),
	)
}
