// Package live adapts the wire protocol (see package wire) to the Broker
// interface. Orders go out as new-order messages; acknowledgements, fills
// and rejects come back asynchronously and are observed one message at a
// time through Poll. There are no retries: an unacknowledged order is
// never resent, and a missed poll window only delays observation.
package live

import (
	"fmt"
	"time"

	"github.com/rustyeddy/quantsim/broker"
	"github.com/rustyeddy/quantsim/market"
	"github.com/rustyeddy/quantsim/order"
	"github.com/rustyeddy/quantsim/wire"
	"go.uber.org/zap"
)

// Transport is the slice of wire.Client the adapter needs. Tests supply a
// fake; production code passes a dialed *wire.Client.
type Transport interface {
	Send(env *wire.Envelope) (uint64, error)
	Recv(timeout time.Duration) *wire.Envelope
	Close() error
}

type Broker struct {
	broker.Notifier

	transport   Transport
	instruments map[string]market.Instrument
	bars        map[string]market.Bar // market-price hints per symbol

	orders  map[string]*order.Order // cl_ord_id -> order, until terminal
	sent    []string                // cl_ord_ids in submission order
	bySeq   map[uint64]string       // envelope seq -> cl_ord_id
	lastPos *wire.PositionReport

	log *zap.Logger
}

var _ broker.Broker = (*Broker)(nil)

// New wraps a transport. instruments maps symbols to their descriptors for
// outgoing orders; unknown symbols go out as bare equity descriptors.
func New(transport Transport, instruments []market.Instrument, log *zap.Logger) *Broker {
	if log == nil {
		log = zap.NewNop()
	}
	bySym := make(map[string]market.Instrument, len(instruments))
	for _, in := range instruments {
		bySym[in.Symbol] = in
	}
	return &Broker{
		transport:   transport,
		instruments: bySym,
		bars:        make(map[string]market.Bar),
		orders:      make(map[string]*order.Order),
		bySeq:       make(map[uint64]string),
		log:         log,
	}
}

// SubmitOrder serializes the order and sends it. The order stays pending
// until the server's acknowledgement arrives via Poll.
func (b *Broker) SubmitOrder(o *order.Order) error {
	if o.Quantity <= 0 {
		return fmt.Errorf("submit order %s: quantity must be positive, got %v", o.ClOrdID, o.Quantity)
	}

	instr, ok := b.instruments[o.Symbol]
	if !ok {
		instr = market.NewEquity(o.Symbol, "")
	}

	var hint *float64
	if bar, ok := b.bars[o.Symbol]; ok {
		px := bar.Close
		hint = &px
	}

	seq, err := b.transport.Send(wire.NewOrderMessage(o, instr, hint))
	if err != nil {
		return fmt.Errorf("submit order %s: %w", o.ClOrdID, err)
	}
	b.orders[o.ClOrdID] = o
	b.sent = append(b.sent, o.ClOrdID)
	b.bySeq[seq] = o.ClOrdID
	return nil
}

func (b *Broker) OpenOrders() []*order.Order {
	open := make([]*order.Order, 0, len(b.orders))
	for _, clOrdID := range b.sent {
		o, ok := b.orders[clOrdID]
		if !ok {
			continue
		}
		if o.Status == order.Pending || o.Status == order.Accepted {
			open = append(open, o)
		}
	}
	return open
}

// CancelOrder always reports failure.
// TODO: send an order-cancel-request once the server supports one.
func (b *Broker) CancelOrder(string) bool { return false }

// SetMarketContext records the latest bar as a price hint for outgoing
// market orders. The live server does its own matching.
func (b *Broker) SetMarketContext(bar market.Bar) {
	b.bars[bar.Symbol] = bar
}

// Poll performs one receive attempt and dispatches the message if one
// arrived. It never blocks past timeout.
func (b *Broker) Poll(timeout time.Duration) error {
	env := b.transport.Recv(timeout)
	if env == nil {
		return nil
	}
	return b.dispatch(env)
}

// QueryPositions asks the server for the account's open positions. The
// report arrives asynchronously and is retained; see LastPositionReport.
func (b *Broker) QueryPositions(account string) error {
	if _, err := b.transport.Send(wire.PositionQueryMessage(account)); err != nil {
		return fmt.Errorf("position query: %w", err)
	}
	return nil
}

// LastPositionReport returns the most recent position report, or nil if
// none has arrived.
func (b *Broker) LastPositionReport() *wire.PositionReport {
	return b.lastPos
}

func (b *Broker) Close() error { return b.transport.Close() }

func (b *Broker) dispatch(env *wire.Envelope) error {
	switch env.Type {
	case wire.TypeExecutionReport:
		return b.onExecutionReport(env.ExecutionReport)
	case wire.TypeReject:
		b.onReject(env.Reject)
		return nil
	case wire.TypePositionReport:
		b.lastPos = env.PositionReport
		return nil
	case wire.TypeHeartbeat:
		return nil
	default:
		b.log.Debug("ignoring unexpected message", zap.String("type", env.Type))
		return nil
	}
}

func (b *Broker) onExecutionReport(er *wire.ExecutionReport) error {
	if er == nil {
		return fmt.Errorf("execution report envelope without payload")
	}
	o, ok := b.orders[er.ClOrdID]
	if !ok {
		b.log.Warn("execution report for unknown order", zap.String("cl_ord_id", er.ClOrdID))
		return nil
	}

	switch er.ExecType {
	case wire.ExecNew:
		if err := o.Transition(order.Accepted); err != nil {
			return err
		}
		o.BrokerID = er.OrderID

	case wire.ExecFill, wire.ExecPartialFill:
		next := order.Filled
		if er.ExecType == wire.ExecPartialFill {
			next = order.PartiallyFilled
		}
		if err := o.Transition(next); err != nil {
			return err
		}
		o.BrokerID = er.OrderID
		f := order.Fill{
			FillID:     er.ExecID,
			BrokerID:   er.OrderID,
			ClOrdID:    er.ClOrdID,
			Price:      er.LastPx,
			Quantity:   er.LastQty,
			Remaining:  er.LeavesQty,
			Commission: er.Commission,
			Time:       time.Now().UTC(),
		}
		b.Notify(o, f)
		if o.Status == order.Filled {
			delete(b.orders, er.ClOrdID)
		}
	}
	return nil
}

// onReject attributes the reject to an order. When the server correlates
// via RefSeq that wins; otherwise the oldest still-pending order takes the
// reject. The fallback is a documented correctness gap inherited from the
// protocol: an uncorrelated reject cannot name its order, so this guesses.
func (b *Broker) onReject(rej *wire.Reject) {
	if rej == nil {
		return
	}
	if rej.RefSeq != 0 {
		if clOrdID, ok := b.bySeq[rej.RefSeq]; ok {
			b.rejectOrder(clOrdID, rej.Reason)
			return
		}
	}
	for _, clOrdID := range b.sent {
		if o, ok := b.orders[clOrdID]; ok && o.Status == order.Pending {
			b.rejectOrder(clOrdID, rej.Reason)
			return
		}
	}
	b.log.Warn("reject with no pending order to attribute it to", zap.String("reason", rej.Reason))
}

func (b *Broker) rejectOrder(clOrdID, reason string) {
	o, ok := b.orders[clOrdID]
	if !ok {
		return
	}
	if err := o.Transition(order.Rejected); err != nil {
		b.log.Warn("reject for order in terminal state",
			zap.String("cl_ord_id", clOrdID), zap.String("status", string(o.Status)))
		return
	}
	b.log.Info("order rejected", zap.String("cl_ord_id", clOrdID), zap.String("reason", reason))
	delete(b.orders, clOrdID)
}
