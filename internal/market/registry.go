// Package market implements the Market Registry: the directory of all
// tradeable stocks plus the market's open/closed state.
//
// The registry is a shared singleton reached by every trader and the price
// updater. Registration and lookup are concurrent-safe; the open flag is a
// single atomic boolean so a close becomes visible to every agent without
// unbounded delay.
package market

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/mhabib/tradefloor/internal/stock"
)

var (
	// ErrAlreadyRegistered is returned when a symbol is registered twice.
	ErrAlreadyRegistered = errors.New("stock already registered")

	// ErrNotFound is returned when a symbol is not in the registry.
	ErrNotFound = errors.New("stock not found")

	// ErrNoStocks is returned by RandomPick on an empty registry.
	ErrNoStocks = errors.New("no stocks registered")
)

// Registry is the set of all registered stocks and the open/closed state.
type Registry struct {
	mu     sync.RWMutex
	stocks map[string]*stock.Stock
	listed []*stock.Stock // registration order, for iteration and random picks

	open atomic.Bool
}

// NewRegistry creates an empty, closed registry.
func NewRegistry() *Registry {
	return &Registry{
		stocks: make(map[string]*stock.Stock),
	}
}

// Register adds a stock. Concurrent registration of the same symbol results
// in exactly one success; the rest fail with ErrAlreadyRegistered.
func (r *Registry) Register(s *stock.Stock) error {
	if s == nil {
		return errors.New("stock is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sym := s.Symbol()
	if _, exists := r.stocks[sym]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, sym)
	}
	r.stocks[sym] = s
	r.listed = append(r.listed, s)
	return nil
}

// Lookup returns the stock for symbol.
func (r *Registry) Lookup(symbol string) (*stock.Stock, error) {
	r.mu.RLock()
	s, ok := r.stocks[symbol]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	return s, nil
}

// All returns a point-in-time copy of the registered stocks. The caller may
// mutate the returned slice freely; later registrations do not appear in it.
func (r *Registry) All() []*stock.Stock {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*stock.Stock, len(r.listed))
	copy(out, r.listed)
	return out
}

// Len returns the number of registered stocks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listed)
}

// RandomPick returns a uniformly-selected stock using the caller's random
// source. Each agent passes its own source, so picks never contend on a
// shared generator.
func (r *Registry) RandomPick(rng *rand.Rand) (*stock.Stock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.listed) == 0 {
		return nil, ErrNoStocks
	}
	return r.listed[rng.Intn(len(r.listed))], nil
}

// PriceSnapshot returns symbol -> current price. Each symbol's price is read
// independently: the map is per-symbol consistent, not a single atomic
// snapshot across the whole market.
func (r *Registry) PriceSnapshot() map[string]float64 {
	stocks := r.All()

	prices := make(map[string]float64, len(stocks))
	for _, s := range stocks {
		prices[s.Symbol()] = s.Price()
	}
	return prices
}

// Quotes returns a point-in-time quote for every registered stock.
func (r *Registry) Quotes() []stock.Quote {
	stocks := r.All()

	quotes := make([]stock.Quote, 0, len(stocks))
	for _, s := range stocks {
		quotes = append(quotes, s.Quote())
	}
	return quotes
}

// Open opens the market for trading.
func (r *Registry) Open() { r.open.Store(true) }

// Close closes the market. Agents observe the transition on their next
// check without unbounded delay.
func (r *Registry) Close() { r.open.Store(false) }

// IsOpen reports whether the market is open.
func (r *Registry) IsOpen() bool { return r.open.Load() }
