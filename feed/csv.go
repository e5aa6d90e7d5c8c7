package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/quantsim/market"
)

// ErrMissingColumn reports a CSV file without the required OHLCV columns.
var ErrMissingColumn = errors.New("csv feed: missing required column")

// CSVFeed reads bars from one CSV file per feed. The first column is the
// timestamp; open/high/low/close/volume are located by header name,
// case-insensitively.
type CSVFeed struct {
	Path string
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (c *CSVFeed) Fetch(instrument market.Instrument, start, end time.Time) ([]Row, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("csv feed: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv feed %s: %w", c.Path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv feed %s: empty file", c.Path)
	}

	cols, err := columnIndex(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		ts, err := parseTime(rec[0])
		if err != nil {
			return nil, fmt.Errorf("csv feed %s row %d: %w", c.Path, i+2, err)
		}
		if ts.Before(start) || ts.After(end) {
			continue
		}
		row := Row{Time: ts}
		for name, idx := range cols {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
			if err != nil {
				return nil, fmt.Errorf("csv feed %s row %d col %s: %w", c.Path, i+2, name, err)
			}
			switch name {
			case "open":
				row.Open = v
			case "high":
				row.High = v
			case "low":
				row.Low = v
			case "close":
				row.Close = v
			case "volume":
				row.Volume = v
			}
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })
	return rows, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	out := make(map[string]int, 5)
	for _, name := range []string{"open", "high", "low", "close", "volume"} {
		idx, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s (found: %v)", ErrMissingColumn, name, header)
		}
		out[name] = idx
	}
	return out, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	// Epoch seconds as a last resort.
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
