package journal

import (
	"fmt"
	"sync"
	"testing"
)

func TestEventBuffer_PublishDrainOrder(t *testing.T) {
	b := NewEventBuffer(4)

	for i := 0; i < 3; i++ {
		ok := b.Publish(NewTradeEvent(fmt.Sprintf("trader-%d", i), "AAPL", SideBuy, 1, 100.0, true))
		if !ok {
			t.Fatalf("Publish %d returned false", i)
		}
	}

	events := b.Drain(0)
	if len(events) != 3 {
		t.Fatalf("Drain returned %d events, want 3", len(events))
	}
	for i, ev := range events {
		want := fmt.Sprintf("trader-%d", i)
		if ev.Trader != want {
			t.Errorf("events[%d].Trader = %q, want %q", i, ev.Trader, want)
		}
	}

	if got := b.Drain(0); got != nil {
		t.Errorf("Drain on empty buffer = %v, want nil", got)
	}
}

func TestEventBuffer_DrainMax(t *testing.T) {
	b := NewEventBuffer(8)
	for i := 0; i < 5; i++ {
		b.Publish(NewTradeEvent("alice", "MSFT", SideSell, 1, 300.0, true))
	}

	if got := len(b.Drain(2)); got != 2 {
		t.Errorf("Drain(2) returned %d events, want 2", got)
	}
	if got := b.Len(); got != 3 {
		t.Errorf("Len() = %d after partial drain, want 3", got)
	}
}

func TestEventBuffer_GrowsWhenFull(t *testing.T) {
	b := NewEventBuffer(2)

	const n = 100
	for i := 0; i < n; i++ {
		if !b.Publish(NewTradeEvent("bob", "GOOGL", SideBuy, 1, 2500.0, false)) {
			t.Fatalf("Publish %d returned false", i)
		}
	}

	st := b.Stats()
	if st.Count != n {
		t.Errorf("Count = %d, want %d", st.Count, n)
	}
	if st.Resizes == 0 {
		t.Error("Resizes = 0, want growth from capacity 2")
	}
	if got := len(b.Drain(0)); got != n {
		t.Errorf("Drain returned %d events, want %d", got, n)
	}
}

func TestEventBuffer_GrowPreservesWrappedOrder(t *testing.T) {
	b := NewEventBuffer(4)

	// Wrap the ring: fill, drain some, refill past the old tail.
	for i := 0; i < 4; i++ {
		b.Publish(NewTradeEvent(fmt.Sprintf("t%d", i), "AAPL", SideBuy, 1, 1.0, true))
	}
	b.Drain(2)
	for i := 4; i < 9; i++ {
		b.Publish(NewTradeEvent(fmt.Sprintf("t%d", i), "AAPL", SideBuy, 1, 1.0, true))
	}

	events := b.Drain(0)
	want := []string{"t2", "t3", "t4", "t5", "t6", "t7", "t8"}
	if len(events) != len(want) {
		t.Fatalf("Drain returned %d events, want %d", len(events), len(want))
	}
	for i, ev := range events {
		if ev.Trader != want[i] {
			t.Errorf("events[%d].Trader = %q, want %q", i, ev.Trader, want[i])
		}
	}
}

func TestEventBuffer_ClosedRejectsPublish(t *testing.T) {
	b := NewEventBuffer(4)
	b.Publish(NewTradeEvent("alice", "AAPL", SideBuy, 1, 100.0, true))
	b.Close()

	if b.Publish(NewTradeEvent("bob", "AAPL", SideBuy, 1, 100.0, true)) {
		t.Error("Publish succeeded on closed buffer")
	}
	// Queued events stay drainable after close.
	if got := len(b.Drain(0)); got != 1 {
		t.Errorf("Drain returned %d events after close, want 1", got)
	}
}

func TestEventBuffer_ConcurrentPublishers(t *testing.T) {
	b := NewEventBuffer(1)

	const publishers = 8
	const perPublisher = 250

	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perPublisher; j++ {
				b.Publish(NewTradeEvent("w", "AAPL", SideBuy, 1, 100.0, true))
			}
		}()
	}
	wg.Wait()

	if st := b.Stats(); st.Published != publishers*perPublisher {
		t.Errorf("Published = %d, want %d", st.Published, publishers*perPublisher)
	}
	if got := len(b.Drain(0)); got != publishers*perPublisher {
		t.Errorf("Drain returned %d events, want %d", got, publishers*perPublisher)
	}
}
