// Package stats holds the process-wide trade outcome counters shared by all
// traders.
package stats

import "sync/atomic"

// TradeCounter counts trade outcomes across every trader in the session.
//
// The success, failure and total counters are atomic and lose no updates
// under arbitrary concurrent callers. The unsafe counter is a deliberately
// unsynchronized read-increment-write kept on its own code path so tests can
// demonstrate lost updates; the production trading path never touches it.
type TradeCounter struct {
	success atomic.Int64
	failure atomic.Int64
	total   atomic.Int64

	// unsafeTotal is intentionally a plain field. Do not "fix" it.
	unsafeTotal int64

	// onMilestone, when set, is invoked every milestoneEvery completed
	// trades with the running total. Set before the session starts; not
	// safe to swap while traders are running.
	onMilestone func(total int64)
}

const milestoneEvery = 10

// NewTradeCounter creates a counter with all values at zero.
func NewTradeCounter() *TradeCounter {
	return &TradeCounter{}
}

// SetMilestoneFunc registers a callback fired every 10 completed trades.
// Must be called before trading starts.
func (c *TradeCounter) SetMilestoneFunc(fn func(total int64)) {
	c.onMilestone = fn
}

// RecordSuccess counts one successful trade.
func (c *TradeCounter) RecordSuccess() {
	c.success.Add(1)
	c.bumpTotal()
}

// RecordFailure counts one failed trade attempt.
func (c *TradeCounter) RecordFailure() {
	c.failure.Add(1)
	c.bumpTotal()
}

func (c *TradeCounter) bumpTotal() {
	total := c.total.Add(1)
	if c.onMilestone != nil && total%milestoneEvery == 0 {
		c.onMilestone(total)
	}
}

// UnsafeIncrement increments the unsafe counter without synchronization.
// Under concurrent callers the final value undercounts: increments race and
// overwrite each other. Diagnostic use only.
func (c *TradeCounter) UnsafeIncrement() {
	c.unsafeTotal++
}

// SuccessCount returns the number of successful trades.
func (c *TradeCounter) SuccessCount() int64 { return c.success.Load() }

// FailureCount returns the number of failed trade attempts.
func (c *TradeCounter) FailureCount() int64 { return c.failure.Load() }

// TotalCount returns the number of trade attempts, successful or not.
func (c *TradeCounter) TotalCount() int64 { return c.total.Load() }

// UnsafeCount returns the unsafe counter's current value.
func (c *TradeCounter) UnsafeCount() int64 { return c.unsafeTotal }

// Summary is a point-in-time view of the counters.
type Summary struct {
	Success     int64   `json:"success"`
	Failure     int64   `json:"failure"`
	Total       int64   `json:"total"`
	SuccessRate float64 `json:"success_rate"` // percent, 0 when no trades recorded
}

// Summary returns a snapshot of the counters. The individual loads are each
// consistent; the summary as a whole is not a single atomic snapshot.
func (c *TradeCounter) Summary() Summary {
	s := Summary{
		Success: c.success.Load(),
		Failure: c.failure.Load(),
		Total:   c.total.Load(),
	}
	if n := s.Success + s.Failure; n > 0 {
		s.SuccessRate = float64(s.Success) / float64(n) * 100
	}
	return s
}
