package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/quantsim/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestCSVFeedFetch(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `timestamp,Open,High,Low,Close,Volume
2024-01-02,100,105,99,104,10000
2024-01-03,104,106,103,105,12000
2024-01-04,105,107,104,106,9000
`)

	f := &CSVFeed{Path: path}
	rows, err := f.Fetch(market.NewEquity("SPY", ""),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), rows[0].Time)
	assert.InDelta(t, 100.0, rows[0].Open, 1e-9)
	assert.InDelta(t, 105.0, rows[0].High, 1e-9)
	assert.InDelta(t, 99.0, rows[0].Low, 1e-9)
	assert.InDelta(t, 104.0, rows[0].Close, 1e-9)
	assert.InDelta(t, 10000.0, rows[0].Volume, 1e-9)
}

func TestCSVFeedClipsRange(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `timestamp,open,high,low,close,volume
2024-01-02,1,1,1,1,1
2024-01-03,2,2,2,2,2
2024-01-04,3,3,3,3,3
`)

	f := &CSVFeed{Path: path}
	rows, err := f.Fetch(market.NewEquity("SPY", ""),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 2.0, rows[0].Close, 1e-9)
}

func TestCSVFeedSortsAscending(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `timestamp,open,high,low,close,volume
2024-01-04,3,3,3,3,3
2024-01-02,1,1,1,1,1
2024-01-03,2,2,2,2,2
`)

	f := &CSVFeed{Path: path}
	rows, err := f.Fetch(market.NewEquity("SPY", ""),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Time.Before(rows[1].Time))
	assert.True(t, rows[1].Time.Before(rows[2].Time))
}

func TestCSVFeedMissingColumnIsFatal(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `timestamp,open,high,low,volume
2024-01-02,1,1,1,1
`)

	f := &CSVFeed{Path: path}
	_, err := f.Fetch(market.NewEquity("SPY", ""),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "close")
}

func TestCSVFeedEpochSeconds(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `timestamp,open,high,low,close,volume
1704153600,1,2,0.5,1.5,100
`)

	f := &CSVFeed{Path: path}
	rows, err := f.Fetch(market.NewEquity("SPY", ""),
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2024, rows[0].Time.Year())
}
