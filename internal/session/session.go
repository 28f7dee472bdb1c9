// Package session assembles a full simulation run: the market registry,
// the price updater, the trading agents, shared statistics, and the
// optional trade journal.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/mhabib/tradefloor/internal/config"
	"github.com/mhabib/tradefloor/internal/database"
	"github.com/mhabib/tradefloor/internal/journal"
	"github.com/mhabib/tradefloor/internal/market"
	"github.com/mhabib/tradefloor/internal/report"
	"github.com/mhabib/tradefloor/internal/stats"
	"github.com/mhabib/tradefloor/internal/stock"
	"github.com/mhabib/tradefloor/internal/trader"
	"github.com/mhabib/tradefloor/internal/updater"
)

// eventBufferCapacity is the journal buffer's starting capacity; the buffer
// grows on demand so this only tunes early resizes.
const eventBufferCapacity = 256

// Session owns every component of one simulation run.
type Session struct {
	cfg    *config.SimulatorConfig
	logger *slog.Logger
	runID  uuid.UUID

	registry *market.Registry
	counter  *stats.TradeCounter
	updater  *updater.Updater
	traders  []*trader.Trader

	events *journal.EventBuffer
	writer *journal.Writer
	pool   *pgxpool.Pool
}

// randFactory returns a generator of independent rand sources. With a fixed
// base seed the sequence of sources is reproducible; each call still gets a
// distinct stream so agents never share one.
func randFactory(baseSeed int64) func() *rand.Rand {
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}
	var n atomic.Int64
	return func() *rand.Rand {
		return rand.New(rand.NewSource(baseSeed + n.Add(1)))
	}
}

// New builds a session from config. Nothing starts running until Start.
func New(cfg *config.SimulatorConfig, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		cfg:      cfg,
		logger:   logger,
		runID:    uuid.New(),
		registry: market.NewRegistry(),
		counter:  stats.NewTradeCounter(),
	}

	s.counter.SetMilestoneFunc(func(total int64) {
		logger.Info("trade milestone reached", "total_trades", total)
	})

	for _, sc := range cfg.Stocks {
		st, err := stock.New(sc.Symbol, sc.Name, sc.InitialPrice)
		if err != nil {
			return nil, fmt.Errorf("list stock %s: %w", sc.Symbol, err)
		}
		if err := s.registry.Register(st); err != nil {
			return nil, fmt.Errorf("list stock %s: %w", sc.Symbol, err)
		}
	}

	newRand := randFactory(cfg.Seed)

	s.updater = updater.New(updater.Config{
		Interval:            cfg.Updater.Interval,
		VolatilityInterval:  cfg.Updater.VolatilityInterval,
		MaxChangePct:        cfg.Updater.MaxChangePct,
		HeadlineProbability: cfg.Updater.HeadlineProbability,
	}, s.registry, newRand, logger)

	if cfg.Journal.Enabled {
		s.events = journal.NewEventBuffer(eventBufferCapacity)
	}

	for _, tc := range cfg.Traders {
		tr, err := trader.New(tc.Name, tc.InitialCash, s.registry, s.counter, trader.Config{
			MinWait: cfg.Trading.MinWait,
			MaxWait: cfg.Trading.MaxWait,
		}, newRand(), s.events, logger)
		if err != nil {
			return nil, fmt.Errorf("seat trader %s: %w", tc.Name, err)
		}
		s.traders = append(s.traders, tr)
	}

	return s, nil
}

// RunID identifies this run in logs and journal rows.
func (s *Session) RunID() uuid.UUID { return s.runID }

// Start opens the market and starts the updater, every trader, and the
// journal writer when enabled. A database failure aborts the start; the
// journal is required once configured so runs are never silently unjournaled.
func (s *Session) Start(ctx context.Context) error {
	if s.cfg.Journal.Enabled {
		pool, err := database.Connect(ctx, s.cfg.Journal.Database)
		if err != nil {
			return fmt.Errorf("connect journal database: %w", err)
		}
		s.pool = pool

		s.writer = journal.NewWriter(journal.WriterConfig{
			RunID:         s.runID,
			BatchSize:     s.cfg.Journal.BatchSize,
			FlushInterval: s.cfg.Journal.FlushInterval,
		}, s.events, pool, s.logger)
		if err := s.writer.Start(ctx); err != nil {
			pool.Close()
			return fmt.Errorf("start journal writer: %w", err)
		}
	}

	s.registry.Open()
	s.logger.Info("market opened",
		"run_id", s.runID,
		"stocks", s.registry.Len(),
		"traders", len(s.traders),
	)

	if err := s.updater.Start(ctx); err != nil {
		return fmt.Errorf("start price updater: %w", err)
	}
	for _, tr := range s.traders {
		if err := tr.Start(ctx); err != nil {
			return fmt.Errorf("start trader %s: %w", tr.Name(), err)
		}
	}
	return nil
}

// Close closes the market and stops every component. Traders stop
// concurrently under the configured timeout; a slow trader is reported
// but does not block the rest of shutdown.
func (s *Session) Close(ctx context.Context) error {
	s.registry.Close()
	s.logger.Info("market closed", "run_id", s.runID)

	var firstErr error

	updCtx, cancel := context.WithTimeout(ctx, s.cfg.Shutdown.UpdaterTimeout)
	if err := s.updater.Stop(updCtx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("stop price updater: %w", err)
	}
	cancel()

	trCtx, cancel := context.WithTimeout(ctx, s.cfg.Shutdown.TraderTimeout)
	stops := make([]func(context.Context) error, 0, len(s.traders))
	for _, tr := range s.traders {
		tr := tr
		stops = append(stops, func(ctx context.Context) error {
			if err := tr.Stop(ctx); err != nil {
				return fmt.Errorf("stop trader %s: %w", tr.Name(), err)
			}
			return nil
		})
	}
	if err := stopConcurrently(trCtx, stops); err != nil && firstErr == nil {
		firstErr = err
	}
	cancel()

	if s.events != nil {
		s.events.Close()
	}
	if s.writer != nil {
		if err := s.writer.Stop(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop journal writer: %w", err)
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}

	return firstErr
}

// stopConcurrently runs every stop under ctx and returns the first error.
// A plain group, not errgroup.WithContext: stops are best-effort and
// independent, so one trader's failure or timeout must not cancel the rest.
func stopConcurrently(ctx context.Context, stops []func(context.Context) error) error {
	var g errgroup.Group
	for _, stop := range stops {
		stop := stop
		g.Go(func() error { return stop(ctx) })
	}
	return g.Wait()
}

// TriggerVolatility starts a volatility burst using the configured duration.
func (s *Session) TriggerVolatility() error {
	return s.updater.TriggerVolatility(s.cfg.Updater.VolatilityDuration)
}

// Quotes returns a snapshot of every listed stock.
func (s *Session) Quotes() []stock.Quote { return s.registry.Quotes() }

// StatsSummary returns a snapshot of the shared trade counters.
func (s *Session) StatsSummary() stats.Summary { return s.counter.Summary() }

// TraderRows returns every trader's performance at current prices.
func (s *Session) TraderRows() []report.TraderRow {
	prices := s.registry.PriceSnapshot()

	rows := make([]report.TraderRow, 0, len(s.traders))
	for _, tr := range s.traders {
		pf := tr.Portfolio()
		rows = append(rows, report.TraderRow{
			Name:          tr.Name(),
			Cash:          pf.CashBalance(),
			Holdings:      pf.Holdings(),
			TotalValue:    pf.TotalValue(prices),
			RiskTolerance: tr.RiskTolerance(),
		})
	}
	return rows
}

// Status is the machine-readable run status served over HTTP.
type Status struct {
	RunID      uuid.UUID     `json:"run_id"`
	MarketOpen bool          `json:"market_open"`
	Stocks     int           `json:"stocks"`
	Traders    int           `json:"traders"`
	Trades     stats.Summary `json:"trades"`
}

// Status returns the current run status.
func (s *Session) Status() Status {
	return Status{
		RunID:      s.runID,
		MarketOpen: s.registry.IsOpen(),
		Stocks:     s.registry.Len(),
		Traders:    len(s.traders),
		Trades:     s.counter.Summary(),
	}
}
