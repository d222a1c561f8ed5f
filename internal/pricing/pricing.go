// Package pricing computes cart totals. It has no side effects.
package pricing

import (
	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// Tier grants Discount when the subtotal is strictly greater than Above.
type Tier struct {
	Above    decimal.Decimal
	Discount decimal.Decimal
}

// Policy is the static pricing rule. Tiers must be ordered from the highest threshold down.
type Policy struct {
	Tiers       []Tier
	DeliveryFee decimal.Decimal
}

// DefaultPolicy returns the storefront's tiered discount and flat delivery fee.
func DefaultPolicy() Policy {
	return Policy{
		Tiers: []Tier{
			{Above: decimal.NewFromInt(50000), Discount: decimal.NewFromInt(2000)},
			{Above: decimal.NewFromInt(20000), Discount: decimal.NewFromInt(1000)},
			{Above: decimal.Zero, Discount: decimal.NewFromInt(500)},
		},
		DeliveryFee: decimal.NewFromInt(50),
	}
}

// Quote is the priced breakdown of a cart.
type Quote struct {
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Delivery  decimal.Decimal
	CoinsUsed int64
	Total     decimal.Decimal
}

// Engine prices carts under a Policy.
type Engine struct {
	policy Policy
}

// NewEngine creates a pricing engine.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Quote prices lines and applies up to coinsApplied coins from coinBalance.
//
// Requests for more coins than the balance holds are rejected with model.ErrInsufficientCoins.
// Coins consumed are capped at the amount payable before coins, rounded up to a whole coin,
// and the total never drops below zero.
func (e *Engine) Quote(lines []model.CartLine, coinsApplied, coinBalance int64) (Quote, error) {
	if coinsApplied < 0 {
		return Quote{}, model.ErrNegativeCoins
	}
	if coinsApplied > coinBalance {
		return Quote{}, model.ErrInsufficientCoins
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}

	q := Quote{
		Subtotal: subtotal,
		Discount: decimal.Zero,
		Delivery: decimal.Zero,
		Total:    decimal.Zero,
	}
	if !subtotal.IsPositive() {
		return q, nil
	}

	q.Discount = e.discount(subtotal)
	q.Delivery = e.policy.DeliveryFee

	payable := subtotal.Sub(q.Discount).Add(q.Delivery)
	if !payable.IsPositive() {
		return q, nil
	}

	maxCoins := payable.Ceil().IntPart()
	q.CoinsUsed = min(coinsApplied, maxCoins)
	q.Total = decimal.Max(decimal.Zero, payable.Sub(decimal.NewFromInt(q.CoinsUsed)))

	return q, nil
}

func (e *Engine) discount(subtotal decimal.Decimal) decimal.Decimal {
	for _, t := range e.policy.Tiers {
		if subtotal.GreaterThan(t.Above) {
			return t.Discount
		}
	}
	return decimal.Zero
}
