package order

import (
	"time"

	"github.com/rustyeddy/quantsim/pkg/id"
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

type Type string

const (
	Market Type = "market"
	Limit  Type = "limit"
)

// TimeInForce is the order lifetime policy.
type TimeInForce string

const (
	Day TimeInForce = "day"
	GTC TimeInForce = "gtc"
	IOC TimeInForce = "ioc"
)

// Order is the unit of intent a strategy hands to a broker. The broker owns
// the order from submission until it reaches a terminal status.
type Order struct {
	ClOrdID     string // caller-generated, unique per order
	Symbol      string
	Side        Side
	Quantity    float64
	Type        Type
	LimitPrice  float64 // required iff Type == Limit
	TimeInForce TimeInForce
	StrategyTag string
	Status      Status
	BrokerID    string // assigned by the broker on acceptance
	CreatedAt   time.Time
}

// New builds a pending order with a fresh client order id.
func New(symbol string, side Side, qty float64, typ Type, limitPrice float64) *Order {
	return &Order{
		ClOrdID:     id.New(),
		Symbol:      symbol,
		Side:        side,
		Quantity:    qty,
		Type:        typ,
		LimitPrice:  limitPrice,
		TimeInForce: Day,
		Status:      Pending,
		CreatedAt:   time.Now().UTC(),
	}
}

// Fill is the execution record produced when an order executes. Immutable.
type Fill struct {
	FillID     string
	BrokerID   string
	ClOrdID    string
	Price      float64
	Quantity   float64
	Remaining  float64
	Commission float64
	Time       time.Time
}
