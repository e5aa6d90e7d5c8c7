package portfolio

import "github.com/rustyeddy/quantsim/order"

// Position tracks holdings of one symbol. Quantity is signed: positive is
// long, negative is short. Invariants after every applied fill:
// AvgPrice == 0 iff Quantity == 0, and CostBasis == |Quantity| * AvgPrice.
type Position struct {
	Symbol      string
	Quantity    float64
	AvgPrice    float64
	CostBasis   float64
	RealizedPnL float64
}

// ApplyFill folds one fill into the position, realizing PnL on any portion
// that closes existing exposure. Sign flips reset the average price to the
// fill price for the surviving quantity.
func (p *Position) ApplyFill(side order.Side, qty, price float64) {
	if side == order.Buy {
		p.applyBuy(qty, price)
	} else {
		p.applySell(qty, price)
	}
}

func (p *Position) applyBuy(qty, price float64) {
	if p.Quantity >= 0 {
		// Opening or adding to a long.
		p.CostBasis += qty * price
		p.Quantity += qty
		p.AvgPrice = p.CostBasis / p.Quantity
		return
	}

	// Covering a short: gain is entry average minus cover price.
	p.RealizedPnL += qty * (p.AvgPrice - price)
	p.Quantity += qty
	switch {
	case p.Quantity > 0: // flipped long
		p.AvgPrice = price
		p.CostBasis = p.Quantity * price
	case p.Quantity == 0:
		p.AvgPrice = 0
		p.CostBasis = 0
	default: // still short, average unchanged
		p.CostBasis = -p.Quantity * p.AvgPrice
	}
}

func (p *Position) applySell(qty, price float64) {
	if p.Quantity > 0 {
		// Closing a long: gain is sale price minus entry average.
		p.RealizedPnL += qty * (price - p.AvgPrice)
		p.Quantity -= qty
		switch {
		case p.Quantity < 0: // flipped short
			p.AvgPrice = price
			p.CostBasis = -p.Quantity * price
		case p.Quantity == 0:
			p.AvgPrice = 0
			p.CostBasis = 0
		default: // still long, average unchanged
			p.CostBasis = p.Quantity * p.AvgPrice
		}
		return
	}

	// Opening or adding to a short.
	p.CostBasis += qty * price
	p.Quantity -= qty
	p.AvgPrice = p.CostBasis / -p.Quantity
}

// BookValue is the position valued at its average cost.
func (p *Position) BookValue() float64 {
	return p.Quantity * p.AvgPrice
}

func (p *Position) Flat() bool { return p.Quantity == 0 }
