package journal

import "time"

// FillRecord is one executed fill as written to the journal.
type FillRecord struct {
	FillID      string
	ClOrdID     string
	BrokerID    string
	Symbol      string
	Side        string
	Quantity    float64
	Price       float64
	Commission  float64
	StrategyTag string
	Time        time.Time
}

// EquityRecord is one mark-to-market snapshot as written to the journal.
type EquityRecord struct {
	Time           time.Time
	Equity         float64
	Cash           float64
	PositionsValue float64
	Drawdown       float64
}

type Journal interface {
	RecordFill(FillRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}

// Nop discards everything. Used when a run doesn't need persistence.
type Nop struct{}

func (Nop) RecordFill(FillRecord) error     { return nil }
func (Nop) RecordEquity(EquityRecord) error { return nil }
func (Nop) Close() error                    { return nil }
