// Package journal captures the stream of trade attempts for best-effort
// persistence outside the in-memory core.
package journal

import (
	"time"

	"github.com/google/uuid"
)

// Side is the direction of a trade attempt.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TradeEvent is one trade attempt, successful or not.
type TradeEvent struct {
	ID       uuid.UUID
	Trader   string
	Symbol   string
	Side     Side
	Quantity int     // attempted quantity; 0 when no viable quantity existed
	Price    float64 // price the decision was made at
	Success  bool
	At       time.Time
}

// NewTradeEvent builds a TradeEvent with a fresh ID and timestamp.
func NewTradeEvent(trader, symbol string, side Side, quantity int, price float64, success bool) TradeEvent {
	return TradeEvent{
		ID:       uuid.New(),
		Trader:   trader,
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Price:    price,
		Success:  success,
		At:       time.Now(),
	}
}
