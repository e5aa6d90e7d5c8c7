// Package portfolio keeps the cash and position ledger. All mutation goes
// through UpdatePosition, which applies exactly one fill to exactly one
// position together with its cash movement.
package portfolio

import "github.com/rustyeddy/quantsim/order"

type Portfolio struct {
	Cash            float64
	InitialCash     float64
	Positions       map[string]*Position
	TotalCommission float64
}

func New(initialCash float64) *Portfolio {
	return &Portfolio{
		Cash:        initialCash,
		InitialCash: initialCash,
		Positions:   make(map[string]*Position),
	}
}

// UpdatePosition applies one fill: the named position absorbs the quantity
// at the fill price, then cash moves by the notional plus (buy) or minus
// (sell) the commission. The two updates are inseparable; no other cash
// movement exists.
func (p *Portfolio) UpdatePosition(symbol string, side order.Side, qty, price, commission float64) {
	pos, ok := p.Positions[symbol]
	if !ok {
		pos = &Position{Symbol: symbol}
		p.Positions[symbol] = pos
	}
	pos.ApplyFill(side, qty, price)

	if side == order.Buy {
		p.Cash -= qty*price + commission
	} else {
		p.Cash += qty*price - commission
	}
	p.TotalCommission += commission
}

// Position returns the ledger entry for symbol, or nil if nothing has ever
// traded in it.
func (p *Portfolio) Position(symbol string) *Position {
	return p.Positions[symbol]
}

// MarkToMarket values the portfolio at the supplied prices. Symbols absent
// from prices fall back to their average cost, so MarkToMarket(nil) equals
// TotalEquity.
func (p *Portfolio) MarkToMarket(prices map[string]float64) float64 {
	value := 0.0
	for symbol, pos := range p.Positions {
		price, ok := prices[symbol]
		if !ok {
			price = pos.AvgPrice
		}
		value += pos.Quantity * price
	}
	return p.Cash + value
}

// TotalEquity is cash plus positions at book value (average cost), never
// live prices.
func (p *Portfolio) TotalEquity() float64 {
	value := 0.0
	for _, pos := range p.Positions {
		value += pos.BookValue()
	}
	return p.Cash + value
}

// TotalRealizedPnL sums realized PnL across all positions.
func (p *Portfolio) TotalRealizedPnL() float64 {
	total := 0.0
	for _, pos := range p.Positions {
		total += pos.RealizedPnL
	}
	return total
}

// TotalReturn is the book-value return on initial cash.
func (p *Portfolio) TotalReturn() float64 {
	return (p.TotalEquity() - p.InitialCash) / p.InitialCash
}
