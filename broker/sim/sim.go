// Package sim implements the simulated broker: orders fill immediately and
// fully against the latest bar for their symbol, with modeled slippage and
// commission. There are no partial fills; an order fills 0% or 100%.
package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/quantsim/broker"
	"github.com/rustyeddy/quantsim/market"
	"github.com/rustyeddy/quantsim/order"
	"github.com/rustyeddy/quantsim/pkg/id"
)

type Broker struct {
	broker.Notifier

	commissionRate float64
	slippageBps    float64

	bars   map[string]market.Bar // latest bar per symbol
	queued []*order.Order
}

var _ broker.Broker = (*Broker)(nil)

func New(commissionRate, slippageBps float64) *Broker {
	return &Broker{
		commissionRate: commissionRate,
		slippageBps:    slippageBps,
		bars:           make(map[string]market.Bar),
	}
}

// SubmitOrder accepts the order and assigns a broker id. A market order
// fills immediately when a price context exists for its symbol; everything
// else queues until SetMarketContext touches it.
func (b *Broker) SubmitOrder(o *order.Order) error {
	if o.Quantity <= 0 {
		return fmt.Errorf("submit order %s: quantity must be positive, got %v", o.ClOrdID, o.Quantity)
	}
	if o.Type == order.Limit && o.LimitPrice <= 0 {
		return fmt.Errorf("submit order %s: limit order requires a limit price", o.ClOrdID)
	}
	if err := o.Transition(order.Accepted); err != nil {
		return err
	}
	o.BrokerID = id.New()

	if o.Type == order.Market {
		if bar, ok := b.bars[o.Symbol]; ok {
			b.fill(o, bar.Close, bar.Time)
			return nil
		}
	}
	b.queued = append(b.queued, o)
	return nil
}

// SetMarketContext records bar as the current quotable price for bar.Symbol
// and re-evaluates every queued order for that symbol: queued market orders
// fill at the close, limit buys fill at their limit when the low touches it,
// limit sells when the high does.
func (b *Broker) SetMarketContext(bar market.Bar) {
	b.bars[bar.Symbol] = bar

	// Take ownership of the queue before scanning. Fill notifications run
	// synchronously, and a subscriber may reenter SubmitOrder or
	// CancelOrder; those must act on the live queue, not the slice being
	// scanned.
	pending := b.queued
	b.queued = nil
	for _, o := range pending {
		if o.Status != order.Accepted {
			continue
		}
		if o.Symbol != bar.Symbol {
			b.queued = append(b.queued, o)
			continue
		}
		switch {
		case o.Type == order.Market:
			b.fill(o, bar.Close, bar.Time)
		case o.Side == order.Buy && bar.Low <= o.LimitPrice:
			b.fill(o, o.LimitPrice, bar.Time)
		case o.Side == order.Sell && bar.High >= o.LimitPrice:
			b.fill(o, o.LimitPrice, bar.Time)
		default:
			b.queued = append(b.queued, o)
		}
	}
}

func (b *Broker) OpenOrders() []*order.Order {
	open := make([]*order.Order, 0, len(b.queued))
	for _, o := range b.queued {
		if o.Status == order.Accepted {
			open = append(open, o)
		}
	}
	return open
}

// CancelOrder cancels a still-queued order. Unknown or already terminal
// orders return false; this is an idempotent no-op, not an error.
func (b *Broker) CancelOrder(clOrdID string) bool {
	for i, o := range b.queued {
		if o.ClOrdID != clOrdID || o.Status != order.Accepted {
			continue
		}
		if err := o.Transition(order.Cancelled); err != nil {
			return false
		}
		b.queued = append(b.queued[:i], b.queued[i+1:]...)
		return true
	}
	return false
}

// Poll is a no-op: simulated fills are delivered synchronously.
func (b *Broker) Poll(time.Duration) error { return nil }

func (b *Broker) fill(o *order.Order, price float64, at time.Time) {
	if b.slippageBps != 0 {
		if o.Side == order.Buy {
			price *= 1 + b.slippageBps/10000
		} else {
			price *= 1 - b.slippageBps/10000
		}
	}
	commission := price * o.Quantity * b.commissionRate
	if commission < 0 {
		commission = 0
	}

	// The transition table guards against filling cancelled or rejected
	// orders; callers only reach here with accepted orders.
	if err := o.Transition(order.Filled); err != nil {
		return
	}

	f := order.Fill{
		FillID:     id.New(),
		BrokerID:   o.BrokerID,
		ClOrdID:    o.ClOrdID,
		Price:      price,
		Quantity:   o.Quantity,
		Remaining:  0,
		Commission: commission,
		Time:       at,
	}
	b.Notify(o, f)
}
