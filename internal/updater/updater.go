// Package updater runs the background agent that evolves stock prices over
// time, standing in for market forces.
package updater

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mhabib/tradefloor/internal/market"
)

// ErrNotIdle is returned by Start when the updater already ran.
var ErrNotIdle = errors.New("updater is not idle")

// ErrNotRunning is returned by TriggerVolatility when the updater is not in
// its running state.
var ErrNotRunning = errors.New("updater is not running")

// State is the updater lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// atomicState is a typed wrapper over atomic.Int32 for State.
type atomicState struct{ v atomic.Int32 }

func (a *atomicState) Load() State   { return State(a.v.Load()) }
func (a *atomicState) Store(s State) { a.v.Store(int32(s)) }
func (a *atomicState) CompareAndSwap(old, next State) bool {
	return a.v.CompareAndSwap(int32(old), int32(next))
}

// minPrice is the floor applied after a delta so a price can never reach zero.
const minPrice = 0.01

// Config holds updater configuration.
type Config struct {
	// Interval is the sleep between price updates on the main loop.
	Interval time.Duration
	// VolatilityInterval is the shorter sleep used by a volatility burst.
	VolatilityInterval time.Duration
	// MaxChangePct bounds the largest price move, in percent.
	MaxChangePct float64
	// HeadlineProbability is the chance a price move emits a market headline.
	HeadlineProbability float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:            10 * time.Second,
		VolatilityInterval:  2 * time.Second,
		MaxChangePct:        5.0,
		HeadlineProbability: 0.1,
	}
}

// Updater perturbs registered stock prices while the market is open.
//
// Lifecycle: Idle -> Running -> Stopped (terminal). The main loop exits on
// its own when it observes the market closed; Stop additionally wakes any
// blocked sleep so shutdown never waits out a full interval.
type Updater struct {
	cfg      Config
	registry *market.Registry
	newRand  func() *rand.Rand
	logger   *slog.Logger

	state atomicState

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an Updater. newRand must return an independent random source
// on every call and be safe for concurrent use; the main loop and each
// volatility burst draw from their own source.
func New(cfg Config, registry *market.Registry, newRand func() *rand.Rand, logger *slog.Logger) *Updater {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.VolatilityInterval <= 0 {
		cfg.VolatilityInterval = DefaultConfig().VolatilityInterval
	}
	if cfg.MaxChangePct <= 0 {
		cfg.MaxChangePct = DefaultConfig().MaxChangePct
	}

	return &Updater{
		cfg:      cfg,
		registry: registry,
		newRand:  newRand,
		logger:   logger,
	}
}

// State returns the current lifecycle state.
func (u *Updater) State() State { return u.state.Load() }

// Start begins the update loop. It fails with ErrNotIdle if the updater has
// already been started or stopped.
func (u *Updater) Start(ctx context.Context) error {
	if !u.state.CompareAndSwap(StateIdle, StateRunning) {
		return ErrNotIdle
	}

	u.ctx, u.cancel = context.WithCancel(ctx)

	u.wg.Add(1)
	go u.run()

	u.logger.Info("price updater started",
		"interval", u.cfg.Interval,
		"max_change_pct", u.cfg.MaxChangePct,
	)
	return nil
}

// Stop ends the update loop and any volatility burst, waiting until they
// exit or ctx expires. A timeout is best-effort stop, not a failure.
func (u *Updater) Stop(ctx context.Context) error {
	u.state.Store(StateStopped)
	if u.cancel != nil {
		u.cancel()
	}

	done := make(chan struct{})
	go func() {
		u.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		u.logger.Info("price updater stopped")
		return nil
	case <-ctx.Done():
		u.logger.Warn("price updater stop timed out")
		return ctx.Err()
	}
}

// TriggerVolatility starts a time-bounded burst that updates prices on the
// shorter volatility interval, concurrent with and independent of the main
// loop. The burst self-terminates after duration regardless of the main
// loop's state.
func (u *Updater) TriggerVolatility(duration time.Duration) error {
	if u.State() != StateRunning {
		return ErrNotRunning
	}

	rng := u.newRand()

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()

		u.logger.Info("volatility burst started",
			"duration", duration,
			"interval", u.cfg.VolatilityInterval,
		)

		deadline := time.NewTimer(duration)
		defer deadline.Stop()
		ticker := time.NewTicker(u.cfg.VolatilityInterval)
		defer ticker.Stop()

		for {
			select {
			case <-u.ctx.Done():
				return
			case <-deadline.C:
				u.logger.Info("volatility burst ended")
				return
			case <-ticker.C:
				if u.registry.IsOpen() {
					u.updateRandomPrice(rng)
				}
			}
		}
	}()

	return nil
}

// run is the main update loop.
func (u *Updater) run() {
	defer u.wg.Done()
	defer u.state.Store(StateStopped)

	rng := u.newRand()

	ticker := time.NewTicker(u.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-u.ctx.Done():
			return
		case <-ticker.C:
			if !u.registry.IsOpen() {
				u.logger.Info("market closed, price updater exiting")
				return
			}
			u.updateRandomPrice(rng)
		}
	}
}

// updateRandomPrice applies one delta draw to a uniformly-chosen stock.
func (u *Updater) updateRandomPrice(rng *rand.Rand) {
	s, err := u.registry.RandomPick(rng)
	if err != nil {
		u.logger.Debug("no stocks to update")
		return
	}

	current := s.Price()
	delta := priceDelta(rng, u.cfg.MaxChangePct/100)

	newPrice := current * (1 + delta)
	if newPrice < minPrice {
		newPrice = minPrice
	}

	if err := s.SetPrice(newPrice); err != nil {
		u.logger.Error("price update rejected", "symbol", s.Symbol(), "err", err)
		return
	}

	u.logger.Debug("price updated",
		"symbol", s.Symbol(),
		"old", current,
		"new", newPrice,
		"change_pct", s.PercentChange(),
	)

	if rng.Float64() < u.cfg.HeadlineProbability {
		u.emitHeadline(rng, s.Symbol(), delta)
	}
}

// priceDelta draws a relative price change from a weighted mixture:
// 70% small moves within ±1%, 20% medium within ±3%, 10% large within
// ±maxChange (as a fraction, e.g. 0.05 for 5%).
func priceDelta(rng *rand.Rand, maxChange float64) float64 {
	var changeRange float64
	switch p := rng.Float64(); {
	case p < 0.7:
		changeRange = 0.01
	case p < 0.9:
		changeRange = 0.03
	default:
		changeRange = maxChange
	}
	return (rng.Float64() - 0.5) * 2 * changeRange
}

var headlines = []string{
	"earnings report released",
	"analyst upgrade",
	"industry partnership announced",
	"regulatory approval received",
	"major contract signed",
}

// emitHeadline logs a simulated news event for a price move.
func (u *Updater) emitHeadline(rng *rand.Rand, symbol string, delta float64) {
	sentiment := "bullish"
	if delta < 0 {
		sentiment = "bearish"
	}
	u.logger.Info("market headline",
		"symbol", symbol,
		"headline", headlines[rng.Intn(len(headlines))],
		"sentiment", sentiment,
	)
}
