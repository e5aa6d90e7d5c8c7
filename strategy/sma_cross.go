package strategy

import (
	"github.com/rustyeddy/quantsim/broker"
	"github.com/rustyeddy/quantsim/indicators"
	"github.com/rustyeddy/quantsim/market"
	"github.com/rustyeddy/quantsim/order"
	"github.com/rustyeddy/quantsim/portfolio"
)

// SMACross trades a single instrument on a fast/slow SMA crossover: long
// when the fast average crosses above the slow, flat when it crosses back
// under.
type SMACross struct {
	Base

	Quantity float64

	fast       *indicators.SimpleMA
	slow       *indicators.SimpleMA
	inPosition bool
}

var _ Strategy = (*SMACross)(nil)

func NewSMACross(b broker.Broker, p *portfolio.Portfolio, fast, slow int, qty float64) *SMACross {
	s := &SMACross{
		Quantity: qty,
		fast:     indicators.NewMA(fast),
		slow:     indicators.NewMA(slow),
	}
	s.Base = Base{Broker: b, Portfolio: p, Tag: s.Name()}
	return s
}

func (s *SMACross) Name() string { return "sma-cross" }

func (s *SMACross) Mode() Mode { return SingleInstrument }

func (s *SMACross) OnBar(bar market.Bar) {
	s.fast.Update(bar)
	s.slow.Update(bar)
	if !s.slow.Ready() {
		return
	}

	fast, slow := s.fast.Value(), s.slow.Value()

	switch {
	case fast > slow && !s.inPosition:
		s.submit(bar.Symbol, order.Buy, s.Quantity, order.Market, 0)
		s.inPosition = true
	case fast < slow && s.inPosition:
		s.submit(bar.Symbol, order.Sell, s.Quantity, order.Market, 0)
		s.inPosition = false
	}
}

func (s *SMACross) OnBars(bars map[string]market.Bar) { FanOut(s, bars) }
