// Package wire defines the client side of the live trading protocol: JSON
// envelopes exchanged with an execution server over a websocket. Only the
// message contract and a non-blocking client live here; the server is an
// external system.
package wire

import (
	"time"

	"github.com/rustyeddy/quantsim/market"
	"github.com/rustyeddy/quantsim/order"
)

// Message types carried in Envelope.Type.
const (
	TypeNewOrder        = "new_order"
	TypeExecutionReport = "execution_report"
	TypeReject          = "reject"
	TypePositionQuery   = "position_query"
	TypePositionReport  = "position_report"
	TypeHeartbeat       = "heartbeat"
)

// Execution report exec types.
const (
	ExecNew         = "new"
	ExecFill        = "fill"
	ExecPartialFill = "partial_fill"
)

// Envelope frames every message with addressing and sequencing. Exactly one
// payload field is set, selected by Type; heartbeats carry none.
type Envelope struct {
	Sender string    `json:"sender"`
	Target string    `json:"target"`
	Seq    uint64    `json:"seq"`
	SentAt time.Time `json:"sent_at"`
	Type   string    `json:"type"`

	NewOrder        *NewOrder        `json:"new_order,omitempty"`
	ExecutionReport *ExecutionReport `json:"execution_report,omitempty"`
	Reject          *Reject          `json:"reject,omitempty"`
	PositionQuery   *PositionQuery   `json:"position_query,omitempty"`
	PositionReport  *PositionReport  `json:"position_report,omitempty"`
}

// InstrumentDesc is the wire form of an instrument.
type InstrumentDesc struct {
	Symbol       string `json:"symbol"`
	SecurityType string `json:"security_type"`
	Exchange     string `json:"exchange,omitempty"`
	Currency     string `json:"currency,omitempty"`
}

type NewOrder struct {
	ClOrdID     string         `json:"cl_ord_id"`
	Instrument  InstrumentDesc `json:"instrument"`
	Side        string         `json:"side"`
	Quantity    float64        `json:"quantity"`
	OrderType   string         `json:"order_type"`
	LimitPrice  *float64       `json:"limit_price,omitempty"`
	TimeInForce string         `json:"time_in_force"`
	StrategyTag string         `json:"strategy_tag,omitempty"`

	// MarketPrice is a hint so the server can fill market orders without
	// its own feed for the symbol.
	MarketPrice *float64 `json:"market_price,omitempty"`
}

type ExecutionReport struct {
	ExecType   string  `json:"exec_type"`
	OrdStatus  string  `json:"ord_status"`
	OrderID    string  `json:"order_id"`
	ClOrdID    string  `json:"cl_ord_id"`
	ExecID     string  `json:"exec_id"`
	LastPx     float64 `json:"last_px"`
	LastQty    float64 `json:"last_qty"`
	LeavesQty  float64 `json:"leaves_qty"`
	Commission float64 `json:"commission"`
}

type Reject struct {
	Reason string `json:"reason"`

	// RefSeq references the rejected request's envelope sequence when the
	// server correlates rejects; zero means uncorrelated.
	RefSeq uint64 `json:"ref_seq,omitempty"`
}

type PositionQuery struct {
	Account string `json:"account"`
}

type PositionEntry struct {
	Instrument InstrumentDesc `json:"instrument"`
	LongQty    float64        `json:"long_qty"`
	ShortQty   float64        `json:"short_qty"`
}

type PositionReport struct {
	Account   string          `json:"account"`
	Positions []PositionEntry `json:"positions"`
}

// NewOrderMessage builds the new-order envelope for o. marketPrice may be
// nil when no price context exists for the order's symbol.
func NewOrderMessage(o *order.Order, instr market.Instrument, marketPrice *float64) *Envelope {
	msg := &NewOrder{
		ClOrdID: o.ClOrdID,
		Instrument: InstrumentDesc{
			Symbol:       instr.Symbol,
			SecurityType: string(instr.Class),
			Exchange:     instr.Exchange,
			Currency:     instr.Currency,
		},
		Side:        string(o.Side),
		Quantity:    o.Quantity,
		OrderType:   string(o.Type),
		TimeInForce: string(o.TimeInForce),
		StrategyTag: o.StrategyTag,
		MarketPrice: marketPrice,
	}
	if o.Type == order.Limit {
		px := o.LimitPrice
		msg.LimitPrice = &px
	}
	return &Envelope{Type: TypeNewOrder, NewOrder: msg}
}

func PositionQueryMessage(account string) *Envelope {
	return &Envelope{Type: TypePositionQuery, PositionQuery: &PositionQuery{Account: account}}
}

func HeartbeatMessage() *Envelope {
	return &Envelope{Type: TypeHeartbeat}
}
