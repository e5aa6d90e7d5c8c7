// Package strategy defines the contract between the engine and trading
// logic, plus a Base with the plumbing every strategy needs.
package strategy

import (
	"github.com/rustyeddy/quantsim/broker"
	"github.com/rustyeddy/quantsim/market"
	"github.com/rustyeddy/quantsim/order"
	"github.com/rustyeddy/quantsim/portfolio"
	"go.uber.org/zap"
)

// Mode declares, at construction, which bar callback a strategy drives on.
// The engine picks its iteration mode from this; nothing is introspected.
type Mode int

const (
	// SingleInstrument strategies receive bars one at a time via OnBar.
	SingleInstrument Mode = iota

	// MultiInstrument strategies receive one grouped event per timestamp
	// via OnBars.
	MultiInstrument
)

type Strategy interface {
	Name() string
	Mode() Mode

	// OnInit runs once before the first bar. Indicator warm-up goes here.
	OnInit()

	// OnBar receives each bar in single-instrument mode.
	OnBar(bar market.Bar)

	// OnBars receives the grouped {symbol: bar} event for one timestamp
	// in multi-instrument mode.
	OnBars(bars map[string]market.Bar)

	// OnFill runs after the portfolio has absorbed the fill, so the
	// strategy always observes post-fill state.
	OnFill(o *order.Order, f order.Fill)
}

// Base carries the broker and portfolio handles and implements the no-op
// defaults. Embed it and override what the strategy needs.
type Base struct {
	Broker    broker.Broker
	Portfolio *portfolio.Portfolio
	Tag       string
	Log       *zap.Logger
}

func (b *Base) OnInit() {}

func (b *Base) OnFill(*order.Order, order.Fill) {}

// OnBars fans the event out to OnBar per bar, which keeps single-bar
// strategies working if they are ever run in synchronized mode. The
// receiver must be the embedding strategy, so Base cannot provide it;
// see FanOut.

// FanOut is the default OnBars body for single-instrument strategies.
func FanOut(s Strategy, bars map[string]market.Bar) {
	for _, bar := range bars {
		s.OnBar(bar)
	}
}

// SubmitOrder is the only strategy-to-broker entry point. It builds the
// order, tags it with the strategy name, submits it, and returns the
// client order id.
func (b *Base) SubmitOrder(symbol string, side order.Side, qty float64, typ order.Type, limitPrice float64) (string, error) {
	o := order.New(symbol, side, qty, typ, limitPrice)
	o.StrategyTag = b.Tag
	if err := b.Broker.SubmitOrder(o); err != nil {
		return "", err
	}
	return o.ClOrdID, nil
}

// submit is SubmitOrder for strategies that have no use for the order id:
// a failed submission is logged and the strategy carries on.
func (b *Base) submit(symbol string, side order.Side, qty float64, typ order.Type, limitPrice float64) {
	if _, err := b.SubmitOrder(symbol, side, qty, typ, limitPrice); err != nil {
		b.logger().Warn("order submit failed",
			zap.String("symbol", symbol),
			zap.String("side", string(side)),
			zap.Error(err),
		)
	}
}

func (b *Base) logger() *zap.Logger {
	if b.Log == nil {
		return zap.NewNop()
	}
	return b.Log
}
