// Package stock holds the price state for a single tradeable symbol.
//
// A Stock is written by exactly one price updater and read concurrently by
// every trader, so price access follows a many-readers/one-writer discipline
// backed by a sync.RWMutex.
package stock

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidPrice is returned when a price is zero or negative.
var ErrInvalidPrice = errors.New("price must be positive")

// Stock is a tradeable symbol with a mutable current price.
// Symbol, Name and the initial price are fixed at creation.
type Stock struct {
	symbol  string
	name    string
	initial float64

	mu      sync.RWMutex
	current float64
}

// Quote is a point-in-time view of a stock, safe to hand to callers.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	PercentChange float64 `json:"percent_change"`
}

// New creates a Stock priced at initial.
func New(symbol, name string, initial float64) (*Stock, error) {
	if symbol == "" {
		return nil, errors.New("stock symbol is required")
	}
	if initial <= 0 {
		return nil, fmt.Errorf("%w: %s initial price %.2f", ErrInvalidPrice, symbol, initial)
	}
	return &Stock{
		symbol:  symbol,
		name:    name,
		initial: initial,
		current: initial,
	}, nil
}

// Symbol returns the unique ticker symbol.
func (s *Stock) Symbol() string { return s.symbol }

// Name returns the display name.
func (s *Stock) Name() string { return s.name }

// InitialPrice returns the price the stock was listed at.
func (s *Stock) InitialPrice() float64 { return s.initial }

// SetPrice replaces the current price. The write is exclusive: readers
// started after SetPrice returns observe the new value.
func (s *Stock) SetPrice(price float64) error {
	if price <= 0 {
		return fmt.Errorf("%w: %s price %.4f", ErrInvalidPrice, s.symbol, price)
	}

	s.mu.Lock()
	s.current = price
	s.mu.Unlock()
	return nil
}

// Price returns the current price. Readers do not block each other.
func (s *Stock) Price() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// PercentChange returns the change since listing, relative to the
// initial price (not the previous tick).
func (s *Stock) PercentChange() float64 {
	return (s.Price() - s.initial) / s.initial * 100
}

// Quote returns a consistent point-in-time view of the stock.
func (s *Stock) Quote() Quote {
	s.mu.RLock()
	price := s.current
	s.mu.RUnlock()

	return Quote{
		Symbol:        s.symbol,
		Name:          s.name,
		Price:         price,
		PercentChange: (price - s.initial) / s.initial * 100,
	}
}
