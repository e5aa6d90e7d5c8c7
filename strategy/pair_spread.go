package strategy

import (
	"math"

	"github.com/rustyeddy/quantsim/broker"
	"github.com/rustyeddy/quantsim/market"
	"github.com/rustyeddy/quantsim/order"
	"github.com/rustyeddy/quantsim/portfolio"
)

// PairSpread trades the z-score of the close-price spread between two
// instruments: long A / short B when the spread is stretched low, the
// reverse when stretched high, flat again once the z-score reverts inside
// the exit band. Needs synchronized bars, so it declares MultiInstrument.
type PairSpread struct {
	Base

	LegA, LegB string
	Lookback   int
	EntryZ     float64
	ExitZ      float64
	Quantity   float64

	spreads []float64
	state   int // 0 flat, +1 long spread, -1 short spread
}

var _ Strategy = (*PairSpread)(nil)

func NewPairSpread(b broker.Broker, p *portfolio.Portfolio, legA, legB string) *PairSpread {
	s := &PairSpread{
		LegA:     legA,
		LegB:     legB,
		Lookback: 30,
		EntryZ:   2.0,
		ExitZ:    0.5,
		Quantity: 100,
	}
	s.Base = Base{Broker: b, Portfolio: p, Tag: s.Name()}
	return s
}

func (s *PairSpread) Name() string { return "pair-spread" }

func (s *PairSpread) Mode() Mode { return MultiInstrument }

// OnBar is unused: this strategy only acts on grouped events.
func (s *PairSpread) OnBar(market.Bar) {}

func (s *PairSpread) OnBars(bars map[string]market.Bar) {
	a, okA := bars[s.LegA]
	b, okB := bars[s.LegB]
	if !okA || !okB {
		// One leg has no bar at this timestamp; can't price the spread.
		return
	}

	spread := a.Close - b.Close
	s.spreads = append(s.spreads, spread)
	if len(s.spreads) > s.Lookback {
		s.spreads = s.spreads[1:]
	}
	if len(s.spreads) < s.Lookback {
		return
	}

	m := mean(s.spreads)
	variance := 0.0
	for _, v := range s.spreads {
		d := v - m
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(s.spreads)))
	if std == 0 {
		return
	}
	z := (spread - m) / std

	switch s.state {
	case 0:
		if z < -s.EntryZ {
			s.submit(s.LegA, order.Buy, s.Quantity, order.Market, 0)
			s.submit(s.LegB, order.Sell, s.Quantity, order.Market, 0)
			s.state = 1
		} else if z > s.EntryZ {
			s.submit(s.LegA, order.Sell, s.Quantity, order.Market, 0)
			s.submit(s.LegB, order.Buy, s.Quantity, order.Market, 0)
			s.state = -1
		}
	case 1:
		if z > -s.ExitZ {
			s.submit(s.LegA, order.Sell, s.Quantity, order.Market, 0)
			s.submit(s.LegB, order.Buy, s.Quantity, order.Market, 0)
			s.state = 0
		}
	case -1:
		if z < s.ExitZ {
			s.submit(s.LegA, order.Buy, s.Quantity, order.Market, 0)
			s.submit(s.LegB, order.Sell, s.Quantity, order.Market, 0)
			s.state = 0
		}
	}
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
