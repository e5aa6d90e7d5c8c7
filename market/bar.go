package market

import "time"

// Bar represents one OHLCV sample for a single instrument at a single
// timestamp. Bars are produced by data feeds and are read-only everywhere
// downstream.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Symbol string
}
