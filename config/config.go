package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the fully resolved run configuration the CLI hands the engine.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Broker  BrokerConfig  `json:"broker" yaml:"broker"`
	Run     RunConfig     `json:"run" yaml:"run"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

type AccountConfig struct {
	ID          string  `json:"id" yaml:"id"`
	InitialCash float64 `json:"initial_cash" yaml:"initial_cash"`
}

type BrokerConfig struct {
	// Mode selects the broker variant: "simulated" or "live".
	Mode           string  `json:"mode" yaml:"mode"`
	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate"`
	SlippageBps    float64 `json:"slippage_bps" yaml:"slippage_bps"`

	// Live mode only.
	Address  string `json:"address,omitempty" yaml:"address,omitempty"`
	Identity string `json:"identity,omitempty" yaml:"identity,omitempty"`
}

type RunConfig struct {
	Symbols        []string `json:"symbols" yaml:"symbols"`
	Start          string   `json:"start" yaml:"start"`
	End            string   `json:"end" yaml:"end"`
	PeriodsPerYear float64  `json:"periods_per_year,omitempty" yaml:"periods_per_year,omitempty"`
}

type JournalConfig struct {
	// Type is "none", "csv" or "sqlite".
	Type       string `json:"type" yaml:"type"`
	FillsFile  string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file; YAML is tried
// first regardless of extension.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// StartEnd parses the run range. Dates accept RFC3339 or plain yyyy-mm-dd.
func (c *Config) StartEnd() (start, end time.Time, err error) {
	start, err = parseDate(c.Run.Start)
	if err != nil {
		return start, end, fmt.Errorf("run.start: %w", err)
	}
	end, err = parseDate(c.Run.End)
	if err != nil {
		return start, end, fmt.Errorf("run.end: %w", err)
	}
	return start, end, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// Validate checks the configuration, one error per field.
func (c *Config) Validate() error {
	if c.Account.InitialCash <= 0 {
		return fmt.Errorf("account.initial_cash must be positive")
	}
	if c.Broker.Mode != "simulated" && c.Broker.Mode != "live" {
		return fmt.Errorf("broker.mode must be 'simulated' or 'live'")
	}
	if c.Broker.CommissionRate < 0 {
		return fmt.Errorf("broker.commission_rate must not be negative")
	}
	if c.Broker.Mode == "live" && c.Broker.Address == "" {
		return fmt.Errorf("broker.address required for live mode")
	}
	if len(c.Run.Symbols) == 0 {
		return fmt.Errorf("run.symbols must name at least one instrument")
	}
	if c.Run.Start == "" || c.Run.End == "" {
		return fmt.Errorf("run.start and run.end are required")
	}
	if _, _, err := c.StartEnd(); err != nil {
		return err
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal fills_file and equity_file required for csv type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// SaveToFile writes the config as YAML (.yaml/.yml) or indented JSON.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{ID: "SIM-001", InitialCash: 100_000},
		Broker: BrokerConfig{
			Mode:           "simulated",
			CommissionRate: 0.001,
		},
		Run: RunConfig{
			Symbols:        []string{"SPY"},
			Start:          "2020-01-01",
			End:            "2020-12-31",
			PeriodsPerYear: 252,
		},
		Journal: JournalConfig{Type: "none"},
	}
}
