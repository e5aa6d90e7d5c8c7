package broker

import (
	"time"

	"github.com/rustyeddy/quantsim/market"
	"github.com/rustyeddy/quantsim/order"
)

// FillHandler receives every fill a broker produces. Handlers run
// synchronously on the engine goroutine.
type FillHandler func(o *order.Order, f order.Fill)

// Broker is the common surface of the simulated and live variants. Poll is
// part of the interface so the engine never has to inspect the concrete
// type: the simulated broker implements it as a no-op, the live adapter
// performs one non-blocking receive attempt.
type Broker interface {
	// SubmitOrder takes ownership of the order until it reaches a
	// terminal status.
	SubmitOrder(o *order.Order) error

	// OpenOrders returns orders that are accepted and not yet terminal.
	OpenOrders() []*order.Order

	// CancelOrder cancels a still-queued order. Unknown or already
	// terminal orders return false; cancellation is never an error.
	CancelOrder(clOrdID string) bool

	// OnFill registers a fill subscriber. Subscribers are notified in
	// registration order, synchronously, before the call that produced
	// the fill returns.
	OnFill(h FillHandler)

	// SetMarketContext records bar as the current quotable price for
	// bar.Symbol. The simulated broker re-evaluates queued orders; the
	// live adapter keeps it as a market-price hint.
	SetMarketContext(bar market.Bar)

	// Poll performs at most one receive attempt against the broker's
	// response channel, waiting up to timeout.
	Poll(timeout time.Duration) error
}

// Notifier implements the fill fan-out shared by broker variants.
// Zero value is ready to use.
type Notifier struct {
	handlers []FillHandler
}

func (n *Notifier) OnFill(h FillHandler) {
	n.handlers = append(n.handlers, h)
}

// Notify delivers the fill to every subscriber in registration order.
func (n *Notifier) Notify(o *order.Order, f order.Fill) {
	for _, h := range n.handlers {
		h(o, f)
	}
}
