package trader

import (
	"math"
	"math/rand"
)

// Action is the outcome of a trading decision.
type Action int

const (
	ActionHold Action = iota
	ActionBuy
	ActionSell
)

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "buy"
	case ActionSell:
		return "sell"
	default:
		return "hold"
	}
}

// decide evaluates the trading rules in fixed priority order; the first
// matching rule wins. The ordering is a policy choice: given the same random
// draw the chosen rule and action are deterministic.
//
//  1. Momentum: price up more than 2% and an aggressive risk profile.
//  2. Dip-buying: price down more than 3% with cash above 10x the price.
//  3. Profit-taking: holding the stock and price up more than 4%.
//  4. Stop-loss: holding the stock and price down more than 5%.
//  5. Noise: a random draw buys (when affordable), sells (when held), or holds.
func decide(rng *rand.Rand, percentChange, price, cash float64, holding int, riskTolerance float64) Action {
	if percentChange > 2.0 && riskTolerance > 0.5 {
		return ActionBuy
	}
	if percentChange < -3.0 && cash > price*10 {
		return ActionBuy
	}
	if holding > 0 && percentChange > 4.0 {
		return ActionSell
	}
	if holding > 0 && percentChange < -5.0 {
		return ActionSell
	}

	r := rng.Float64()
	if r < 0.3 {
		if cash > price*5 {
			return ActionBuy
		}
		return ActionHold
	}
	if r < 0.5 && holding > 0 {
		return ActionSell
	}
	return ActionHold
}

// buyQuantity sizes a buy: at most 5 shares, at most what cash affords,
// scaled by risk tolerance, and halved when buying into a rising price.
// Returns 0 when not even one share is affordable.
func buyQuantity(cash, price, riskTolerance, percentChange float64) int {
	base := int(math.Floor(cash / price))
	if base > 5 {
		base = 5
	}
	if base == 0 {
		return 0
	}

	qty := int(math.Round(float64(base) * riskTolerance))
	if qty < 1 {
		qty = 1
	}
	if percentChange > 0 {
		qty /= 2
		if qty < 1 {
			qty = 1
		}
	}
	return qty
}

// sellQuantity sizes a sell: with equal probability a randomized partial
// amount (1-3 shares, capped at the holding) or the full position.
func sellQuantity(rng *rand.Rand, holding int) int {
	if rng.Intn(2) == 0 {
		qty := 1 + rng.Intn(3)
		if qty > holding {
			qty = holding
		}
		return qty
	}
	return holding
}
