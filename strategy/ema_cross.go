package strategy

import (
	"github.com/rustyeddy/quantsim/broker"
	"github.com/rustyeddy/quantsim/indicators"
	"github.com/rustyeddy/quantsim/market"
	"github.com/rustyeddy/quantsim/order"
	"github.com/rustyeddy/quantsim/portfolio"
)

// EMACross trades a single instrument on a fast/slow EMA crossover. Unlike
// SMACross it reverses: an opposite cross closes the open position first,
// then opens one in the new direction. Entries happen only on a cross, not
// merely while one average sits above the other.
type EMACross struct {
	Base

	Quantity float64

	fast *indicators.ExponentialMA
	slow *indicators.ExponentialMA

	lastDiff     float64
	haveLastDiff bool
	dir          int // 0 flat, +1 long, -1 short
}

var _ Strategy = (*EMACross)(nil)

func NewEMACross(b broker.Broker, p *portfolio.Portfolio, fast, slow int, qty float64) *EMACross {
	s := &EMACross{
		Quantity: qty,
		fast:     indicators.NewEMA(fast),
		slow:     indicators.NewEMA(slow),
	}
	s.Base = Base{Broker: b, Portfolio: p, Tag: s.Name()}
	return s
}

func (s *EMACross) Name() string { return "ema-cross" }

func (s *EMACross) Mode() Mode { return SingleInstrument }

func (s *EMACross) OnBar(bar market.Bar) {
	s.fast.Update(bar)
	s.slow.Update(bar)
	if !s.fast.Ready() || !s.slow.Ready() {
		return
	}

	diff := s.fast.Value() - s.slow.Value()

	// A cross needs a previous diff to compare against.
	if !s.haveLastDiff {
		s.lastDiff = diff
		s.haveLastDiff = true
		return
	}

	bullCross := diff > 0 && s.lastDiff <= 0
	bearCross := diff < 0 && s.lastDiff >= 0
	s.lastDiff = diff

	switch {
	case bullCross && s.dir <= 0:
		if s.dir < 0 {
			s.submit(bar.Symbol, order.Buy, s.Quantity, order.Market, 0)
		}
		s.submit(bar.Symbol, order.Buy, s.Quantity, order.Market, 0)
		s.dir = 1
	case bearCross && s.dir >= 0:
		if s.dir > 0 {
			s.submit(bar.Symbol, order.Sell, s.Quantity, order.Market, 0)
		}
		s.submit(bar.Symbol, order.Sell, s.Quantity, order.Market, 0)
		s.dir = -1
	}
}

func (s *EMACross) OnBars(bars map[string]market.Bar) { FanOut(s, bars) }
