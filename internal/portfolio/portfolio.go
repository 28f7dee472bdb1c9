// Package portfolio tracks a single trader's cash balance and stock holdings.
package portfolio

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidQuantity is returned when a trade quantity is zero or negative.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// Portfolio is one trader's cash and holdings.
//
// Buy and Sell are compound check-and-mutate operations: the balance check,
// the cash movement and the holdings update form one indivisible unit under a
// single mutex. Field-level atomics would not compose into that transaction,
// so the whole portfolio is one mutual-exclusion domain.
type Portfolio struct {
	owner string

	mu       sync.Mutex
	cash     float64
	holdings map[string]int // symbol -> share count, entries always > 0
}

// New creates a portfolio holding initialCash and no stock.
func New(owner string, initialCash float64) (*Portfolio, error) {
	if owner == "" {
		return nil, errors.New("portfolio owner is required")
	}
	if initialCash < 0 {
		return nil, fmt.Errorf("initial cash must not be negative, got %.2f", initialCash)
	}
	return &Portfolio{
		owner:    owner,
		cash:     initialCash,
		holdings: make(map[string]int),
	}, nil
}

// Owner returns the owning trader's name.
func (p *Portfolio) Owner() string { return p.owner }

// Buy attempts to purchase quantity shares at pricePerShare.
// Insufficient funds is a normal outcome (false, nil), not an error; the
// portfolio is left unchanged. A non-positive quantity is a validation error.
func (p *Portfolio) Buy(symbol string, quantity int, pricePerShare float64) (bool, error) {
	if quantity <= 0 {
		return false, fmt.Errorf("%w: buy %d", ErrInvalidQuantity, quantity)
	}

	cost := float64(quantity) * pricePerShare

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cash < cost {
		return false, nil
	}

	p.cash -= cost
	p.holdings[symbol] += quantity
	return true, nil
}

// Sell attempts to sell quantity shares at pricePerShare.
// Insufficient shares is a normal outcome (false, nil); the portfolio is left
// unchanged. Selling the full position removes the symbol entirely.
func (p *Portfolio) Sell(symbol string, quantity int, pricePerShare float64) (bool, error) {
	if quantity <= 0 {
		return false, fmt.Errorf("%w: sell %d", ErrInvalidQuantity, quantity)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	held := p.holdings[symbol]
	if held < quantity {
		return false, nil
	}

	p.cash += float64(quantity) * pricePerShare
	if held == quantity {
		delete(p.holdings, symbol)
	} else {
		p.holdings[symbol] = held - quantity
	}
	return true, nil
}

// CashBalance returns the current cash balance.
func (p *Portfolio) CashBalance() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cash
}

// QuantityOf returns the number of shares held for symbol (0 if none).
func (p *Portfolio) QuantityOf(symbol string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.holdings[symbol]
}

// Holdings returns a copy of the holdings map.
func (p *Portfolio) Holdings() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]int, len(p.holdings))
	for sym, qty := range p.holdings {
		out[sym] = qty
	}
	return out
}

// TotalValue returns cash plus the value of all holdings priced from the
// given snapshot. Symbols missing from the snapshot value at zero. The sum is
// computed against a consistent view of the holdings: no concurrent Buy or
// Sell can change the positions mid-sum.
func (p *Portfolio) TotalValue(prices map[string]float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := p.cash
	for sym, qty := range p.holdings {
		total += float64(qty) * prices[sym]
	}
	return total
}
