package stats

import (
	"sync"
	"testing"
)

func TestRecordCounts(t *testing.T) {
	c := NewTradeCounter()

	c.RecordSuccess()
	c.RecordSuccess()
	c.RecordFailure()

	if got := c.SuccessCount(); got != 2 {
		t.Errorf("SuccessCount() = %d, want 2", got)
	}
	if got := c.FailureCount(); got != 1 {
		t.Errorf("FailureCount() = %d, want 1", got)
	}
	if got := c.TotalCount(); got != 3 {
		t.Errorf("TotalCount() = %d, want 3", got)
	}
}

func TestSummary(t *testing.T) {
	c := NewTradeCounter()

	if s := c.Summary(); s.SuccessRate != 0 {
		t.Errorf("SuccessRate = %v with no trades, want 0", s.SuccessRate)
	}

	for i := 0; i < 3; i++ {
		c.RecordSuccess()
	}
	c.RecordFailure()

	s := c.Summary()
	if s.Success != 3 || s.Failure != 1 || s.Total != 4 {
		t.Errorf("Summary = %+v, want 3/1/4", s)
	}
	if s.SuccessRate != 75.0 {
		t.Errorf("SuccessRate = %v, want 75.0", s.SuccessRate)
	}
}

func TestMilestoneCallback(t *testing.T) {
	c := NewTradeCounter()

	var milestones []int64
	c.SetMilestoneFunc(func(total int64) {
		milestones = append(milestones, total)
	})

	for i := 0; i < 25; i++ {
		c.RecordSuccess()
	}

	want := []int64{10, 20}
	if len(milestones) != len(want) {
		t.Fatalf("milestones = %v, want %v", milestones, want)
	}
	for i := range want {
		if milestones[i] != want[i] {
			t.Errorf("milestones[%d] = %d, want %d", i, milestones[i], want[i])
		}
	}
}

// TestAtomicCounters_NoLostUpdates hammers the counters from N goroutines
// doing M increments each; the atomic totals must land exactly on N*M.
func TestAtomicCounters_NoLostUpdates(t *testing.T) {
	const goroutines = 5
	const increments = 1000

	c := NewTradeCounter()

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				c.RecordSuccess()
			}
		}()
	}
	wg.Wait()

	if got := c.SuccessCount(); got != goroutines*increments {
		t.Errorf("SuccessCount() = %d, want %d", got, goroutines*increments)
	}
	if got := c.TotalCount(); got != goroutines*increments {
		t.Errorf("TotalCount() = %d, want %d", got, goroutines*increments)
	}
}

func TestUnsafeCounter_SingleGoroutineIsExact(t *testing.T) {
	c := NewTradeCounter()
	for i := 0; i < 100; i++ {
		c.UnsafeIncrement()
	}
	if got := c.UnsafeCount(); got != 100 {
		t.Errorf("UnsafeCount() = %d, want 100", got)
	}
}
