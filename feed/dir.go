package feed

import (
	"path/filepath"
	"time"

	"github.com/rustyeddy/quantsim/market"
)

// DirFeed serves one CSV file per symbol from a directory, named
// <SYMBOL>.csv.
type DirFeed struct {
	Dir string
}

func (d *DirFeed) Fetch(instrument market.Instrument, start, end time.Time) ([]Row, error) {
	c := &CSVFeed{Path: filepath.Join(d.Dir, instrument.Symbol+".csv")}
	return c.Fetch(instrument, start, end)
}
