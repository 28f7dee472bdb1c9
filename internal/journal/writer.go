package journal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WriterConfig holds journal writer settings.
type WriterConfig struct {
	// RunID tags every persisted event with the session run.
	RunID uuid.UUID
	// BatchSize caps the rows per insert batch.
	BatchSize int
	// FlushInterval is how often queued events are written out.
	FlushInterval time.Duration
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     200,
		FlushInterval: time.Second,
	}
}

// WriterMetrics counts writer activity.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}

// Writer drains trade events from an EventBuffer and batch-inserts them into
// the trade_events table. Persistence is best effort: insert failures are
// logged and counted, never surfaced to the trading path.
type Writer struct {
	cfg    WriterConfig
	input  *EventBuffer
	db     *pgxpool.Pool
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	metrics WriterMetrics
}

// NewWriter creates a journal writer.
func NewWriter(cfg WriterConfig, input *EventBuffer, db *pgxpool.Pool, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultWriterConfig().BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultWriterConfig().FlushInterval
	}
	return &Writer{
		cfg:    cfg,
		input:  input,
		db:     db,
		logger: logger,
	}
}

// Start begins the flush loop.
func (w *Writer) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.run()

	w.logger.Info("trade journal started",
		"run_id", w.cfg.RunID,
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop shuts down the writer, flushing whatever remains queued.
func (w *Writer) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("trade journal stop timed out")
		return ctx.Err()
	}

	// Final flush with a fresh context; w.ctx is already cancelled.
	w.flush(context.Background())
	w.logger.Info("trade journal stopped")
	return nil
}

// Stats returns current metrics.
func (w *Writer) Stats() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

func (w *Writer) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.flush(w.ctx)
		}
	}
}

// flush writes all queued events in batches of at most BatchSize.
func (w *Writer) flush(ctx context.Context) {
	for {
		events := w.input.Drain(w.cfg.BatchSize)
		if len(events) == 0 {
			return
		}

		start := time.Now()
		conflicts, err := w.batchInsert(ctx, events)
		if err != nil {
			w.logger.Error("journal insert failed", "err", err, "count", len(events))
			w.mu.Lock()
			w.metrics.Errors++
			w.mu.Unlock()
			return
		}

		w.mu.Lock()
		w.metrics.Inserts += int64(len(events) - conflicts)
		w.metrics.Conflicts += int64(conflicts)
		w.metrics.Flushes++
		w.mu.Unlock()

		w.logger.Debug("flushed trade events",
			"count", len(events),
			"conflicts", conflicts,
			"duration", time.Since(start),
		)
	}
}

// batchInsert inserts events with ON CONFLICT DO NOTHING on the event ID.
func (w *Writer) batchInsert(ctx context.Context, events []TradeEvent) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(`
			INSERT INTO trade_events (id, run_id, trader, symbol, side, quantity, price, success, at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING
		`, ev.ID, w.cfg.RunID, ev.Trader, ev.Symbol, string(ev.Side), ev.Quantity, ev.Price, ev.Success, ev.At)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range events {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}
	return conflicts, nil
}
