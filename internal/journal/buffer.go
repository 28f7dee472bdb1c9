package journal

import "sync"

// EventBuffer is a thread-safe ring queue of trade events. It doubles its
// capacity when full, so publishers never block on a slow consumer; the
// writer drains it in batches on its flush interval.
type EventBuffer struct {
	mu     sync.Mutex
	ring   []TradeEvent
	head   int
	tail   int
	count  int
	closed bool

	published int64
	drained   int64
	resizes   int
}

// BufferStats is a point-in-time view of buffer activity.
type BufferStats struct {
	Count     int
	Capacity  int
	Published int64
	Drained   int64
	Resizes   int
}

// NewEventBuffer creates a buffer with the given initial capacity.
func NewEventBuffer(initialCapacity int) *EventBuffer {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &EventBuffer{ring: make([]TradeEvent, initialCapacity)}
}

// Publish appends an event. Returns false once the buffer is closed.
func (b *EventBuffer) Publish(ev TradeEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}
	if b.count == len(b.ring) {
		b.grow()
	}

	b.ring[b.tail] = ev
	b.tail = (b.tail + 1) % len(b.ring)
	b.count++
	b.published++
	return true
}

// Drain removes up to max queued events (all of them when max <= 0) and
// returns them in publish order. Returns nil when the buffer is empty.
func (b *EventBuffer) Drain(max int) []TradeEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.count
	if max > 0 && max < n {
		n = max
	}
	if n == 0 {
		return nil
	}

	out := make([]TradeEvent, n)
	for i := 0; i < n; i++ {
		out[i] = b.ring[b.head]
		b.ring[b.head] = TradeEvent{}
		b.head = (b.head + 1) % len(b.ring)
	}
	b.count -= n
	b.drained += int64(n)
	return out
}

// Len returns the number of queued events.
func (b *EventBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Close marks the buffer closed. Queued events remain drainable.
func (b *EventBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Stats returns buffer statistics.
func (b *EventBuffer) Stats() BufferStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BufferStats{
		Count:     b.count,
		Capacity:  len(b.ring),
		Published: b.published,
		Drained:   b.drained,
		Resizes:   b.resizes,
	}
}

// grow doubles the ring, unwrapping the queued events to the front.
// Caller holds the lock.
func (b *EventBuffer) grow() {
	next := make([]TradeEvent, len(b.ring)*2)
	for i := 0; i < b.count; i++ {
		next[i] = b.ring[(b.head+i)%len(b.ring)]
	}
	b.ring = next
	b.head = 0
	b.tail = b.count
	b.resizes++
}
