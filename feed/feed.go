// Package feed supplies historical bars to the engine: a DataFeed contract
// for fetching OHLCV rows, a lazy per-instrument bar iterator, a CSV file
// feed, and the multi-instrument synchronizer.
package feed

import (
	"time"

	"github.com/rustyeddy/quantsim/market"
)

// Row is one OHLCV sample as returned by a feed, before it is tagged with
// a symbol.
type Row struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// DataFeed fetches historical rows for one instrument. Rows come back in
// ascending time order, clipped to [start, end] inclusive. A feed that
// cannot produce the required columns fails the whole fetch; the engine
// never recovers from feed errors.
type DataFeed interface {
	Fetch(instrument market.Instrument, start, end time.Time) ([]Row, error)
}

// Bars is a lazy, finite, non-restartable sequence of bars for one symbol.
type Bars struct {
	symbol string
	rows   []Row
	i      int
}

// IterBars fetches the instrument's rows and wraps them as a bar sequence.
func IterBars(f DataFeed, instrument market.Instrument, start, end time.Time) (*Bars, error) {
	rows, err := f.Fetch(instrument, start, end)
	if err != nil {
		return nil, err
	}
	return &Bars{symbol: instrument.Symbol, rows: rows}, nil
}

// Next returns the next bar, or false once the sequence is exhausted.
func (b *Bars) Next() (market.Bar, bool) {
	if b.i >= len(b.rows) {
		return market.Bar{}, false
	}
	r := b.rows[b.i]
	b.i++
	return market.Bar{
		Time:   r.Time,
		Open:   r.Open,
		High:   r.High,
		Low:    r.Low,
		Close:  r.Close,
		Volume: r.Volume,
		Symbol: b.symbol,
	}, true
}

// Symbol is the instrument symbol every bar of this sequence carries.
func (b *Bars) Symbol() string { return b.symbol }

// MemoryFeed serves pre-built rows per symbol. Used in tests and examples.
type MemoryFeed struct {
	Rows map[string][]Row
}

func (m *MemoryFeed) Fetch(instrument market.Instrument, start, end time.Time) ([]Row, error) {
	rows := m.Rows[instrument.Symbol]
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Time.Before(start) || r.Time.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
