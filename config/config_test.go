package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(c *Config)
		errHas string
	}{
		{"zero cash", func(c *Config) { c.Account.InitialCash = 0 }, "initial_cash"},
		{"bad mode", func(c *Config) { c.Broker.Mode = "paper" }, "broker.mode"},
		{"negative commission", func(c *Config) { c.Broker.CommissionRate = -1 }, "commission_rate"},
		{"live without address", func(c *Config) { c.Broker.Mode = "live"; c.Broker.Address = "" }, "address"},
		{"no symbols", func(c *Config) { c.Run.Symbols = nil }, "symbols"},
		{"no range", func(c *Config) { c.Run.Start = "" }, "run.start"},
		{"bad date", func(c *Config) { c.Run.Start = "Jan 1 2020" }, "run.start"},
		{"csv journal without files", func(c *Config) { c.Journal = JournalConfig{Type: "csv"} }, "fills_file"},
		{"sqlite journal without path", func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} }, "db_path"},
		{"unknown journal", func(c *Config) { c.Journal.Type = "parquet" }, "journal.type"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errHas)
		})
	}
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
account:
  id: TEST-7
  initial_cash: 250000
broker:
  mode: simulated
  commission_rate: 0.0005
  slippage_bps: 2
run:
  symbols: [SPY, QQQ]
  start: "2023-01-01"
  end: "2023-06-30"
journal:
  type: sqlite
  db_path: run.db
`), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "TEST-7", cfg.Account.ID)
	assert.InDelta(t, 250_000.0, cfg.Account.InitialCash, 1e-9)
	assert.InDelta(t, 2.0, cfg.Broker.SlippageBps, 1e-9)
	assert.Equal(t, []string{"SPY", "QQQ"}, cfg.Run.Symbols)
	assert.Equal(t, "sqlite", cfg.Journal.Type)

	start, end, err := cfg.StartEnd()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC), end)
}

func TestLoadJSONFallback(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "account": {"id": "J-1", "initial_cash": 5000},
  "broker": {"mode": "simulated"},
  "run": {"symbols": ["AAPL"], "start": "2024-01-01", "end": "2024-02-01"},
  "journal": {"type": "none"}
}`), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "J-1", cfg.Account.ID)
	assert.InDelta(t, 5000.0, cfg.Account.InitialCash, 1e-9)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
account:
  initial_cash: -1
`), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Account.ID = "RT-1"

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	back, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
